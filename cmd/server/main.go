package main

import (
	"flag"
	"os"
	"strings"
	"syscall"

	"github.com/mallfront/internal/app"
	"github.com/mallfront/internal/config"
	"github.com/mallfront/internal/logger"
	"github.com/mallfront/internal/models"

	"github.com/gin-gonic/gin"
)

func main() {
	var configPath string
	var mode string
	flag.StringVar(&configPath, "config", "", "配置文件路径（默认从 ./config.yaml 或 ./config/config.yaml 读取）")
	flag.StringVar(&mode, "mode", app.ModeAll, "启动模式: all (默认), api, worker")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.StdLogger().Fatalf("配置加载失败: %v", err)
	}
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if cfg.Server.Mode == "release" {
		if isWeakSecret(cfg.UserJWT.Secret) {
			stdLog.Fatalf("用户 JWT secret 过弱或未配置，请在生产环境中配置强随机密钥")
		}
	} else if isWeakSecret(cfg.UserJWT.Secret) {
		stdLog.Printf("警告: 用户 JWT secret 过弱或未配置，建议在生产环境中更换")
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.MaxOpenConns,
		MaxIdleConns:           cfg.Database.MaxIdleConns,
		ConnMaxLifetimeMinutes: cfg.Database.ConnMaxLifetime,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	if err := models.AutoMigrate(models.DB); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("服务运行失败: %v", err)
	}
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	if strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key") {
		return true
	}
	return false
}
