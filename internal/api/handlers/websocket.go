package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/poolsim/internal/ws"
)

// HandleTableWebSocket attaches a viewer to the frame stream.
func HandleTableWebSocket(hub *ws.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.ServeWS(c.Writer, c.Request)
	}
}
