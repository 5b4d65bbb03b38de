package upload

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	uploads := r.Group("/upload")
	{
		uploads.POST("/image", h.Image)
		uploads.POST("/video", h.Video)
	}
}
