package api

import (
	"github.com/gin-gonic/gin"

	"github.com/wollyshare/wollyshare/internal/handlers"
)

func registerAuthRoutes(r *gin.Engine, api *gin.RouterGroup, deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Profiles)
	inviteHandler := handlers.NewInviteHandler(deps.Invites)

	public := r.Group("/api/auth")
	{
		public.POST("/signup", authHandler.Signup)
		public.POST("/login", authHandler.Login)
		public.GET("/invite", inviteHandler.Info)
	}

	auth := api.Group("/auth")
	{
		auth.GET("/me", authHandler.Me)
	}
}
