package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// UserIDContextKey is the gin context key holding the authenticated user id.
const UserIDContextKey = "user_id"

// UserIDHeader is set by the edge gateway that owns authentication; this core
// only needs the resolved identity.
const UserIDHeader = "X-User-ID"

// RequireUser extracts the caller's user id from the gateway header and makes
// it available to handlers as an explicit context value.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserIDHeader)
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(UserIDContextKey, id)
		c.Next()
	}
}
