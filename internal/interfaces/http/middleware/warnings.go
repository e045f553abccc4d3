package middleware

import (
	appjournal "github.com/erp/warehouse/internal/application/journal"
	"github.com/gin-gonic/gin"
)

// RequestWarnings attaches a warning collector to the request context. Services report
// non-fatal problems to it and handlers copy them into the response envelope.
func RequestWarnings() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, _ := appjournal.ContextWithWarnings(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
