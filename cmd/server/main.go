package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/joho/godotenv"
	"github.com/pinnacleapp/internal/config"
	"github.com/pinnacleapp/internal/db"
	"github.com/pinnacleapp/internal/handler"
	"github.com/pinnacleapp/internal/router"
)

func main() {
	// .env 文件可选，缺失时直接使用环境变量
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 启动时按需引导管理员账号，角色不经由 API 暴露
	if err := db.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to ensure admin user: %v", err)
	}

	api := handler.NewAPI(db.DB, cfg)

	// 在线会话在心跳与计数路径上都会自洁，
	// 后台清扫只是兜底：零流量时也能清掉过期会话
	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(10).Minutes().Do(func() {
		if purged, err := api.Visitors().PurgeStale(time.Now()); err != nil {
			log.Printf("failed to purge stale online sessions: %v", err)
		} else if purged > 0 {
			log.Printf("purged %d stale online sessions", purged)
		}
	}); err != nil {
		log.Fatalf("failed to schedule online session purge: %v", err)
	}
	scheduler.StartAsync()

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(api, cfg.AllowedOrigins)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
