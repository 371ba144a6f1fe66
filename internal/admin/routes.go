package admin

import (
	"docgate/internal/auth"
	"docgate/internal/config"
	"docgate/internal/db"

	"github.com/gin-gonic/gin"
)

// SetupRoutes attaches the admin key-management endpoints behind BasicAuth.
func SetupRoutes(router *gin.Engine, dbService db.Service, cfg *config.Config) {
	handler := NewHandler(dbService)

	adminGroup := router.Group("/admin")
	adminGroup.Use(auth.AdminAuthMiddleware(cfg.Admin.Password))
	{
		keysGroup := adminGroup.Group("/keys")
		{
			keysGroup.GET("", handler.ListKeysHandler)
			keysGroup.POST("", handler.CreateKeyHandler)
			keysGroup.GET("/:id", handler.GetKeyHandler)
			keysGroup.PUT("/:id", handler.UpdateKeyHandler)
			keysGroup.DELETE("/:id", handler.DeleteKeyHandler)
			keysGroup.POST("/:id/rotate", handler.RotateKeyHandler)
		}

		adminGroup.POST("/reset-monthly-usage", handler.ResetUsageHandler)
	}
}
