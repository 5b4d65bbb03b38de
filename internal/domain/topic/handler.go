package topic

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"mediadrop/internal/pkg/response"
	"mediadrop/internal/pkg/validator"
)

type Handler struct {
	service   *Service
	validator *validator.Validator
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service, validator: validator.New()}
}

// List handles GET /api/topics
func (h *Handler) List(c *gin.Context) {
	topics, err := h.service.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "No se pudieron cargar los temas")
		return
	}
	response.Success(c, http.StatusOK, topics)
}

// Create handles POST /api/topics
func (h *Handler) Create(c *gin.Context) {
	var req CreateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "JSON inválido")
		return
	}

	if errs := h.validator.Validate(&req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "El nombre del tema es obligatorio (máximo 100 caracteres)", errs)
		return
	}

	t, err := h.service.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, ErrTopicNameRequired):
			response.Error(c, http.StatusBadRequest, "El nombre del tema es obligatorio")
		case errors.Is(err, ErrTopicExists):
			response.Error(c, http.StatusConflict, "Ya existe un tema con ese nombre")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "No se pudo crear el tema")
		}
		return
	}

	response.Success(c, http.StatusCreated, t)
}
