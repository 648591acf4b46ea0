package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowHeaders = "Authorization, Content-Type, Accept, Origin, Cache-Control, X-Requested-With, traceparent, tracestate"
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
)

// CORS answers browser origins on the allow list. An entry starting with
// "*." matches any https subdomain of the rest. Preflights end here with 204.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		if origin := c.GetHeader("Origin"); originAllowed(origin, allowedOrigins) {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
			h.Set("Access-Control-Allow-Methods", corsAllowMethods)
			h.Set("Access-Control-Max-Age", "43200")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == origin {
			return true
		}
		if suffix, ok := strings.CutPrefix(a, "*."); ok &&
			strings.HasPrefix(origin, "https://") && strings.HasSuffix(origin, "."+suffix) {
			return true
		}
	}
	return false
}
