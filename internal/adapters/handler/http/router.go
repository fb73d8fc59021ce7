package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/kanso-consistency-engine/internal/adapters/handler/http/middleware"
)

const (
	statusConnected   = "connected"
	statusUnreachable = "unreachable"
	statusDisabled    = "disabled"
)

type RouterDependencies struct {
	AnalyticsHandler *AnalyticsHandler
	RecordsHandler   *RecordsHandler
	TokenValidator   middleware.TokenValidator
	// DB and Redis are nil when the process runs on in-memory storage or without a cache.
	DB        *sqlx.DB
	Redis     *redis.Client
	RateLimit int
	StartTime time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		dbStatus := statusDisabled
		if deps.DB != nil {
			dbStatus = statusConnected
			if err := deps.DB.PingContext(c.Request.Context()); err != nil {
				dbStatus = statusUnreachable
			}
		}

		redisStatus := statusDisabled
		if deps.Redis != nil {
			redisStatus = statusConnected
			if err := deps.Redis.Ping(c.Request.Context()).Err(); err != nil {
				redisStatus = statusUnreachable
			}
		}

		code, status := http.StatusOK, "ok"
		if dbStatus == statusUnreachable || redisStatus == statusUnreachable {
			code, status = http.StatusServiceUnavailable, "degraded"
		}

		c.JSON(code, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	})

	apiV1 := router.Group("/api/v1")

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenValidator))
	if deps.Redis != nil && deps.RateLimit > 0 {
		protected.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit, time.Minute))
	}
	{
		deps.AnalyticsHandler.RegisterRoutes(protected)
		deps.RecordsHandler.RegisterRoutes(protected)
	}

	return router
}
