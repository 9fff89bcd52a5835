package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"school-link/config"
	"school-link/internal/api/handler"
	"school-link/internal/api/router"
	"school-link/internal/jobs"
	"school-link/internal/repository"
	"school-link/internal/service"
	"school-link/pkg/database"
	"school-link/pkg/jwt"
	applogger "school-link/pkg/logger"
	"school-link/pkg/redis"
	"school-link/pkg/sender"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与通知快速去重将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 初始化 JWT 管理器与通知外发通道
	jwtMgr := jwt.NewManager(&cfg.Auth)

	var snd sender.Sender
	switch cfg.Notify.Channel {
	case "noop":
		snd = sender.Noop{}
	default:
		snd = sender.NewConsole(logger)
	}

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)

	redisDeps := service.RedisDeps{}
	if rdb != nil {
		redisDeps.Claimer = rdb
		redisDeps.Blacklist = rdb
	}

	svc := service.NewService(repo, cfg, jwtMgr, redisDeps, snd, logger)
	h := handler.NewHandler(svc)

	// 7. 启动市场需求过期扫描
	var expiryJob *jobs.ExpiryJob
	if cfg.Jobs.OfferExpiryEnabled {
		expiryJob = jobs.NewExpiryJob(repo, cfg.Jobs.OfferExpiryCron, logger)
		if err := expiryJob.Start(); err != nil {
			logger.Fatal("过期扫描任务启动失败", zap.Error(err))
		}
	}

	// 8. 初始化路由并启动 HTTP 服务器（优雅关闭）
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 停止定时任务
	if expiryJob != nil {
		expiryJob.Stop()
	}

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
