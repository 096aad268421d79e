package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "markonly/internal/core/context"
)

// HeaderActor names the operator issuing the request. It is logged with
// every delete and restore; it is not authenticated.
const HeaderActor = "X-Actor"

// Actor adds the calling operator to the request context.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.GetHeader(HeaderActor)
		if name == "" {
			name = "anonymous"
		}
		ctx := appctx.WithActor(c.Request.Context(), &appctx.Actor{Name: name, Source: "http"})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
