package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pinnacleapp/internal/handler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	registerMetrics()
	r.Use(prometheusMiddleware())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
		corsConfig.AllowCredentials = true
	}
	r.Use(cors.New(corsConfig))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// 对外 API 路由
	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/signin", api.SignIn)
		apiGroup.POST("/signup", api.SignUp)

		apiGroup.POST("/reviews", api.CreateReview)
		apiGroup.GET("/reviews", api.OptionalAuth(), api.GetReviews)
		apiGroup.PUT("/reviews/:id/status", api.RequireAuth(), api.UpdateReviewStatus)

		apiGroup.GET("/visitor-stats", api.GetVisitorStats)
		apiGroup.POST("/track-visitor", api.TrackVisitor)
		apiGroup.POST("/track-online", api.TrackOnline)
		apiGroup.GET("/online-users", api.GetOnlineUsers)

		apiGroup.GET("/video", api.GetVideo)
	}

	return r
}
