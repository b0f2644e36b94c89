package api

import (
	"github.com/gin-gonic/gin"

	"github.com/wollyshare/wollyshare/internal/handlers"
)

func registerAdminRoutes(admin *gin.RouterGroup, deps Deps) {
	memberHandler := handlers.NewMemberHandler(deps.Members)
	inviteHandler := handlers.NewInviteHandler(deps.Invites)
	locationHandler := handlers.NewLocationHandler(deps.Locations)
	notifyHandler := handlers.NewNotifyHandler(deps.Relay)

	members := admin.Group("/members")
	{
		members.GET("", memberHandler.List)
		members.POST("", memberHandler.Add)
		members.PATCH("/:id/admin", memberHandler.SetAdmin)
		members.DELETE("/:id", memberHandler.Remove)
	}

	invites := admin.Group("/invites")
	{
		invites.GET("", inviteHandler.List)
		invites.POST("", inviteHandler.Create)
		invites.GET("/qr", inviteHandler.QR)
		invites.DELETE("/:id", inviteHandler.Revoke)
	}

	locations := admin.Group("/locations")
	{
		locations.POST("", locationHandler.Create)
		locations.PATCH("/:id", locationHandler.Update)
		locations.DELETE("/:id", locationHandler.Delete)
	}

	admin.POST("/notify/batch", notifyHandler.Batch)
}
