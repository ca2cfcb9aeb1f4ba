package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Register mounts the public and internal routes. internalMW guards the
// /internal group (auth, rate limiting).
func (h *Handlers) Register(router *gin.Engine, internalMW ...gin.HandlerFunc) {
	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	internal := router.Group("/internal")
	internal.Use(internalMW...)
	{
		internal.GET("/health", h.HealthCheck)
		internal.GET("/runs", h.ListRuns)

		s := internal.Group("/suppliers")
		{
			s.GET("", h.ListSuppliers)
			s.POST("/:id/build", h.BuildSupplier)
			s.GET("/:id/status", h.SupplierStatus)
		}
	}
}
