package handler

import (
	"github.com/pinnacleapp/internal/config"
	"github.com/pinnacleapp/internal/service"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	users    *service.UserService
	tokens   *service.TokenService
	reviews  *service.ReviewService
	visitors *service.VisitorService
	videoDir string
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, cfg config.AppConfig) *API {
	return &API{
		db:       gdb,
		users:    service.NewUserService(gdb),
		tokens:   service.NewTokenService(cfg.SecretKey, cfg.TokenTTL),
		reviews:  service.NewReviewService(gdb),
		visitors: service.NewVisitorService(gdb),
		videoDir: cfg.VideoDir,
	}
}

// DB exposes the underlying gorm instance for legacy paths.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Visitors 返回访客统计服务，供后台清扫任务复用同一实例。
func (a *API) Visitors() *service.VisitorService {
	return a.visitors
}
