package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows every origin when none are configured, otherwise only the
// listed ones (with credentials).
func CORS(allowedOrigins []string) gin.HandlerFunc {
	config := cors.DefaultConfig()
	config.AllowHeaders = []string{"Origin", "Content-Type", "Content-Length", "Accept", "X-Requested-With", RequestIDHeader}
	config.ExposeHeaders = []string{RequestIDHeader}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	config.AllowWebSockets = true
	config.MaxAge = 10 * time.Minute

	if len(allowedOrigins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = allowedOrigins
		config.AllowCredentials = true
	}

	return cors.New(config)
}
