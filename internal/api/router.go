package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wollyshare/wollyshare/internal/app"
	iauth "github.com/wollyshare/wollyshare/internal/auth"
	"github.com/wollyshare/wollyshare/internal/handlers"
	"github.com/wollyshare/wollyshare/internal/middleware"
	"github.com/wollyshare/wollyshare/internal/notify"
	"github.com/wollyshare/wollyshare/internal/realtime"
	"github.com/wollyshare/wollyshare/internal/services"
)

// Deps bundles everything the router needs. Relay may be nil when the chat
// bot is disabled; the batch endpoint then reports the relay as unavailable.
type Deps struct {
	Config    *app.Config
	JWT       *iauth.JWTService
	Hub       *realtime.Hub
	Relay     *notify.Relay
	Auth      *services.AuthService
	Profiles  *services.ProfileService
	Items     *services.ItemService
	Borrows   *services.BorrowService
	Locations *services.LocationService
	Members   *services.MemberService
	Invites   *services.InviteService
}

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if deps.JWT == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())
	// Basic rate limiting: 100 requests/minute per IP+path
	r.Use(middleware.RateLimit(100, time.Minute))

	if deps.Config.Monitoring.Health.Enabled {
		r.GET("/health", handlers.Health())
	}
	if deps.Config.Monitoring.Prometheus.Enabled {
		endpoint := deps.Config.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	requireAuth := middleware.Auth(deps.JWT)
	api := r.Group("/api")
	api.Use(requireAuth)
	members := api.Group("")
	members.Use(middleware.RequireMember())
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin())

	registerAuthRoutes(r, api, deps)
	registerCatalogRoutes(members, deps)
	registerBorrowRoutes(members, deps)
	registerProfileRoutes(members, deps)
	registerAdminRoutes(admin, deps)
	registerRealtimeRoutes(r, deps)

	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
