package api

import (
	"github.com/gin-gonic/gin"

	"github.com/wollyshare/wollyshare/internal/handlers"
	"github.com/wollyshare/wollyshare/internal/realtime"
)

// The WebSocket endpoint authenticates itself from the query string because
// browsers cannot attach headers to handshake requests, so it is registered
// outside the Auth middleware chain.
func registerRealtimeRoutes(r *gin.Engine, deps Deps) {
	if deps.Hub == nil {
		return
	}

	realtimeHandler := handlers.NewRealtimeHandler(deps.Hub, deps.JWT, realtime.AllowedStreams()...)
	r.GET("/api/realtime", realtimeHandler.Stream)
}
