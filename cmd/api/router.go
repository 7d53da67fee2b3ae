package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"backoffice-backend/internal/shared/middleware"
	"backoffice-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
	)
	// multipart bodies above this spill to disk
	router.MaxMultipartMemory = c.Config.Import.MaxFileSize

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		protected := v1.Group("", middleware.AuthMiddleware(c.JWTManager))
		c.ImportHandler.RegisterRoutes(protected)
		c.RiscoHandler.RegisterRoutes(protected)
	}

	return router
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   appCtx.Config.App.Version,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
		} else if err := appCtx.DB.HealthCheck(ctx); err != nil {
			dbStatus = fmt.Sprintf("error: %v", err)
		}

		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else if err := appCtx.Cache.Ping(ctx); err != nil {
			redisStatus = fmt.Sprintf("error: %v", err)
		}

		storageStatus := "disabled"
		if appCtx.Storage != nil {
			storageStatus = "ok"
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
			"storage":  storageStatus,
		}

		// imports cannot run without both the database and the session store
		statusCode := http.StatusOK
		if dbStatus != "ok" || redisStatus != "ok" {
			health["status"] = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}
