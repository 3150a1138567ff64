package api

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the cache API onto a fresh gin engine.
func RegisterRoutes(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(RecoveryLogger(h.logger), RequestLogger(h.logger))

	// KV APIs
	kv := router.Group("/kv")
	{
		kv.PUT("/:key", h.SetKey)
		kv.GET("/:key", h.GetKey)
		kv.DELETE("/:key", h.DeleteKey)
	}

	// Admin APIs
	admin := router.Group("/admin")
	{
		admin.GET("/keys", h.ListKeys)
		admin.POST("/save", h.SaveSnapshot)
		admin.POST("/clear", h.ClearCache)
	}

	// Observability APIs
	router.GET("/metrics", h.GetMetrics)
	router.GET("/health", h.GetHealth)

	// Change feed
	router.GET("/watch", h.Watch)

	return router
}
