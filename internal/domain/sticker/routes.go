package sticker

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the authenticated sticker routes.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	r.GET("/sticker/categories", h.GetCategories)
	r.POST("/sticker/categories", h.CreateCategory)
	r.DELETE("/sticker/categories/:categoryId", h.DeleteCategory)
	r.GET("/sticker/categories/:categoryId/stickers", h.GetStickers)
	r.POST("/sticker", h.Upload)
	r.GET("/sticker/:stickerId/image", h.Download)
}

// RegisterDeleteRoute mounts sticker deletion separately: the route
// answers 404/403 rather than 401, so it sits behind optional auth.
func RegisterDeleteRoute(r *gin.RouterGroup, h *Handler) {
	r.DELETE("/sticker/:stickerId", h.Delete)
}
