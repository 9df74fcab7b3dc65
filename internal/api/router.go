package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jengzang/cdr-indicators/internal/config"
	"github.com/jengzang/cdr-indicators/internal/handler"
	"github.com/jengzang/cdr-indicators/internal/middleware"
	"github.com/jengzang/cdr-indicators/internal/service"
)

// Deps are the collaborators the router wires into handlers
type Deps struct {
	Service  *service.IndicatorService
	Gatherer prometheus.Gatherer
	Limiter  *middleware.RateLimiter
}

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.Logger())

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "CDR indicators API is running",
		})
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	indicatorHandler := handler.NewIndicatorHandler(deps.Service)
	userHandler := handler.NewUserHandler(deps.Service)

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(deps.Limiter))
	if cfg.AuthEnabled {
		api.Use(middleware.Auth(cfg.JWTSecret))
	}
	{
		api.GET("/indicators", indicatorHandler.ListIndicators)

		users := api.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.POST("/:id/reload", userHandler.ReloadUser)
			users.GET("/:id/indicators", indicatorHandler.GetAllIndicators)
			users.GET("/:id/indicators/:name", indicatorHandler.GetIndicator)
		}
	}

	return r
}
