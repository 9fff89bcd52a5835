package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"school-link/internal/repository"
)

// 单次扫描的执行上限
const sweepTimeout = 30 * time.Second

// ExpiryJob 市场需求过期扫描任务。
// 将开课日期已过仍处于 available 的需求批量置为 expired（终态）。
// 过期不触发任何通知
type ExpiryJob struct {
	repo   *repository.Repository
	cron   *cron.Cron
	spec   string
	logger *zap.Logger
}

// NewExpiryJob 创建过期扫描任务
func NewExpiryJob(repo *repository.Repository, spec string, logger *zap.Logger) *ExpiryJob {
	return &ExpiryJob{
		repo:   repo,
		cron:   cron.New(),
		spec:   spec,
		logger: logger,
	}
}

// Start 注册 cron 表达式并启动调度。
// 启动时先执行一次，追平停机期间漏扫的需求
func (j *ExpiryJob) Start() error {
	if _, err := j.cron.AddFunc(j.spec, j.Run); err != nil {
		return err
	}
	j.cron.Start()
	j.logger.Info("市场需求过期扫描已启动", zap.String("cron", j.spec))

	go j.Run()
	return nil
}

// Stop 停止调度，等待正在执行的扫描完成
func (j *ExpiryJob) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.logger.Info("市场需求过期扫描已停止")
}

// Run 执行一次扫描。截止点取今天零点：开课日期在今天之前的视为过期
func (j *ExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	now := time.Now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	affected, err := j.repo.MarketOffer.ExpireBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("市场需求过期扫描失败", zap.Error(err))
		return
	}
	if affected > 0 {
		j.logger.Info("市场需求已过期",
			zap.Int64("count", affected),
			zap.Time("cutoff", cutoff))
	}
}
