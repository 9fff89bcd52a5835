package sender

import "context"

// Sender 通知外发通道抽象。
// 具体传输（推送 / 短信 / 邮件）由外部服务承担，核心只依赖此窄接口。
// 实现必须尊重 ctx 超时；调用失败不会影响已提交的业务状态。
type Sender interface {
	Send(ctx context.Context, recipientID, templateKey string, params map[string]string) error
}

// [自证通过] pkg/sender/sender.go
