package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// 令牌有效期下限：部署可以加长，但不允许短于 2 小时。
const minTokenTTL = 2 * time.Hour

// AppConfig 汇总运行服务所需的基础配置，启动时构造一次后只读。
type AppConfig struct {
	ListenAddr     string
	Port           string
	DatabasePath   string
	SecretKey      string
	TokenTTL       time.Duration
	GinMode        string
	VideoDir       string
	AdminUsername  string
	AdminPassword  string
	AllowedOrigins []string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	databasePath := strings.TrimSpace(os.Getenv("DATABASE_PATH"))
	if databasePath == "" {
		databasePath = "pinnacle.db"
	}

	secretKey := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secretKey == "" {
		secretKey = "pinnacle-dev-secret"
	}

	tokenTTL := minTokenTTL
	if raw := strings.TrimSpace(os.Getenv("TOKEN_TTL_HOURS")); raw != "" {
		if hours, err := strconv.Atoi(raw); err == nil {
			if ttl := time.Duration(hours) * time.Hour; ttl > minTokenTTL {
				tokenTTL = ttl
			}
		}
	}

	ginMode := strings.TrimSpace(os.Getenv("GIN_MODE"))
	if ginMode == "" {
		ginMode = "release"
	}

	videoDir := strings.TrimSpace(os.Getenv("VIDEO_DIR"))
	if videoDir == "" {
		videoDir = "static/videos"
	}

	var allowedOrigins []string
	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			allowedOrigins = append(allowedOrigins, trimmed)
		}
	}
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	adminUsername := strings.TrimSpace(os.Getenv("ADMIN_USERNAME"))
	adminPassword := strings.TrimSpace(os.Getenv("ADMIN_PASSWORD"))

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		DatabasePath:   databasePath,
		SecretKey:      secretKey,
		TokenTTL:       tokenTTL,
		GinMode:        ginMode,
		VideoDir:       videoDir,
		AdminUsername:  adminUsername,
		AdminPassword:  adminPassword,
		AllowedOrigins: allowedOrigins,
	}
}
