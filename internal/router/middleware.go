package router

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionHeader = "X-Session-ID"

// SessionMiddleware reads the anonymous session id from the request header,
// issuing a fresh uuid when the client arrives without one. The id is always
// echoed back so the client can persist it.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(sessionHeader)
		if sessionID == "" {
			sessionID = uuid.New().String()
		}
		c.Set("sessionID", sessionID)
		c.Header(sessionHeader, sessionID)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString("sessionID")
}
