package topic

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	topics := r.Group("/topics")
	{
		topics.GET("", h.List)
		topics.POST("", h.Create)
	}
}
