package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"mediadrop/internal/pkg/response"
)

// ErrorLogger logs request errors and recovers from panics with a JSON 500.
func ErrorLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				logRequestError(log, c, start, "panic", err.Error()).
					Bytes("stack", debug.Stack()).
					Msg("request panicked")

				response.Abort(c, http.StatusInternalServerError, "Error interno del servidor")
				return
			}

			if len(c.Errors) == 0 {
				if c.Writer.Status() >= http.StatusInternalServerError {
					logRequestError(log, c, start, "http_error", fmt.Sprintf("status=%d", c.Writer.Status())).
						Msg("request failed")
				}
				return
			}

			for _, err := range c.Errors {
				ev := logRequestError(log, c, start, fmt.Sprintf("%v", err.Type), err.Error())
				if err.Meta != nil {
					ev = ev.Interface("meta", err.Meta)
				}
				ev.Msg("request error")
			}
		}()

		c.Next()
	}
}

func logRequestError(log zerolog.Logger, c *gin.Context, start time.Time, errType, message string) *zerolog.Event {
	return log.Error().
		Str("type", errType).
		Int("status", c.Writer.Status()).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("query", c.Request.URL.RawQuery).
		Str("client_ip", c.ClientIP()).
		Str("request_id", RequestIDFrom(c)).
		Dur("latency", time.Since(start)).
		Str("error", message)
}

// RequestLogger writes one line per request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		ev := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		}
		ev.Int("status", status).
			Dur("latency", time.Since(start)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("client_ip", c.ClientIP()).
			Str("request_id", RequestIDFrom(c)).
			Int("bytes", c.Writer.Size()).
			Msg("HTTP request")
	}
}
