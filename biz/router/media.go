package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/gracechapel/backend/biz/handler"
	"github.com/gracechapel/backend/biz/middleware"
)

// RegisterMediaRoutes configures HTTP routes for the media catalog APIs.
// Write routes require an authenticated user and take the distributed
// write lock.
func RegisterMediaRoutes(r *server.Hertz, h *handler.MediaHandler) {
	if h == nil {
		return
	}

	v1 := r.Group("/api/v1")
	media := v1.Group("/media")

	media.GET("", h.List)
	media.GET("/item/:assetID", h.Get)
	media.GET("/blob/*key", h.Blob)
	media.GET("/storage/health", h.StorageHealth)

	write := media.Group("", middleware.RequireAuth())
	write.Use(middleware.WriteLockMw()...)
	write.POST("/upload", h.Upload)
	write.PATCH("/item/:assetID", h.Patch)
	write.DELETE("/item/:assetID", h.Delete)
	write.POST("/bulk/delete", h.BulkDelete)
	write.POST("/bulk/tags", h.BulkTag)

	r.GET("/ping", handler.Ping)
}

// RegisterContactRoutes configures the public contact form endpoint. Only
// POST submits; every other method gets an explicit 405.
func RegisterContactRoutes(r *server.Hertz, h *handler.ContactHandler) {
	if h == nil {
		return
	}

	v1 := r.Group("/api/v1")
	v1.POST("/contact", h.Submit)
	v1.GET("/contact", h.MethodNotAllowed)
	v1.PUT("/contact", h.MethodNotAllowed)
	v1.PATCH("/contact", h.MethodNotAllowed)
	v1.DELETE("/contact", h.MethodNotAllowed)
}
