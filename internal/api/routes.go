package api

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/poolsim/internal/api/handlers"
	"github.com/playmatatu/poolsim/internal/config"
	"github.com/playmatatu/poolsim/internal/middleware"
	"github.com/playmatatu/poolsim/internal/table"
	"github.com/playmatatu/poolsim/internal/ws"
	"go.uber.org/zap"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, session *table.Session, hub *ws.Hub, cfg *config.Config, log *zap.Logger) {
	router.Use(middleware.CORSMiddleware(cfg, log))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Next()
		})
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		t := v1.Group("/table")
		{
			t.GET("", handlers.GetTable(session))
			t.GET("/geometry", handlers.GetGeometry(session))
			t.POST("/shot", handlers.TakeShot(session, log))
			t.POST("/rack", handlers.Rack(session))
			t.POST("/cue-ball", handlers.PlaceCueBall(session))
			t.GET("/cue-ball/valid", handlers.CheckPlacement(session))
			t.POST("/sync", middleware.RequireSyncToken(cfg.JWTSecret), handlers.SyncTable(session, log))
			t.GET("/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleTableWebSocket(hub))
		}
	}
}
