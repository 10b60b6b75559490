package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"tributary/app/cfg"
)

// NewServer builds the HTTP router with all routes configured.
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS for the single-page front-end.
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.GetHealth)

	api := r.Group("/api")
	{
		api.GET("/data", handler.GetData)
		api.GET("/articles", handler.ListArticles)

		api.POST("/articles/:id/favorite", handler.ToggleFavorite)
		api.POST("/articles/:id/read-later", handler.ToggleReadLater)
		api.POST("/articles/:id/read", handler.ToggleRead)
		api.POST("/articles/:id/extract", handler.ExtractContent)

		api.POST("/sources", handler.CreateSource)
		api.PUT("/sources/:id", handler.UpdateSource)
		api.DELETE("/sources/:id", handler.DeleteSource)
		api.DELETE("/sources/:id/permanent", handler.PermanentDeleteSource)
		api.POST("/sources/:id/restore", handler.RestoreSource)
		api.POST("/sources/:id/refresh", handler.RefreshSource)
		api.POST("/sources/move", handler.MoveSource)
		api.POST("/sources/reassign", handler.ReassignSources)

		api.POST("/categories", handler.CreateCategory)
		api.PUT("/categories/:id", handler.RenameCategory)
		api.DELETE("/categories/:id", handler.DeleteCategory)

		api.POST("/streams", handler.CreateStream)
		api.DELETE("/streams/:id", handler.DeleteStream)
		api.DELETE("/streams/:id/permanent", handler.PermanentDeleteStream)
		api.POST("/streams/:id/restore", handler.RestoreStream)
		api.POST("/streams/:id/sources", handler.AddStreamSource)
		api.DELETE("/streams/:id/sources/:source_id", handler.RemoveStreamSource)

		api.POST("/refresh", handler.Refresh)
		api.POST("/cleanup", handler.Cleanup)

		api.GET("/opml/export", handler.ExportOPML)
		api.POST("/opml/import", handler.ImportOPML)
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Tributary",
			"version": cfg.Get().Version,
			"endpoints": map[string]string{
				"data":     "/api/data",
				"articles": "/api/articles",
				"refresh":  "/api/refresh (POST)",
				"health":   "/health",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
