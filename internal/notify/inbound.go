package notify

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"mediadrop/internal/pkg/response"
)

const maxInboundBody = 1 << 20

// InboundHandler logs calls made by the automation system back into the
// service and echoes what it received.
type InboundHandler struct {
	log zerolog.Logger
}

func NewInboundHandler(log zerolog.Logger) *InboundHandler {
	return &InboundHandler{log: log.With().Str("component", "inbound_webhook").Logger()}
}

// Receive handles POST /webhook/n8n
func (h *InboundHandler) Receive(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxInboundBody))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "No se pudo leer el cuerpo de la petición")
		return
	}

	var data any = map[string]any{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &data); err != nil {
			response.Error(c, http.StatusBadRequest, "JSON inválido")
			return
		}
	}

	h.log.Info().RawJSON("body", mustJSON(data)).Msg("webhook received from n8n")

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Webhook recibido correctamente",
		"receivedData": data,
	})
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("null")
	}
	return b
}

func RegisterRoutes(r gin.IRoutes, inbound *InboundHandler, hub *Hub) {
	r.POST("/webhook/n8n", inbound.Receive)
	if hub != nil {
		r.GET("/ws/feed", hub.ServeWS)
	}
}
