package content

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mediadrop/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/content?topic=all|<id>
func (h *Handler) List(c *gin.Context) {
	raw := c.Query("topic")
	if raw == "" {
		raw = c.Query("topicId")
	}

	filter, err := ParseFilter(raw)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Filtro de tema inválido")
		return
	}

	feed, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "No se pudo cargar el contenido")
		return
	}
	response.Success(c, http.StatusOK, feed)
}
