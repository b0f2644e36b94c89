package api

import (
	"github.com/gin-gonic/gin"

	"github.com/wollyshare/wollyshare/internal/handlers"
)

func registerProfileRoutes(members *gin.RouterGroup, deps Deps) {
	profileHandler := handlers.NewProfileHandler(deps.Profiles)

	profile := members.Group("/profile")
	{
		profile.GET("", profileHandler.Get)
		profile.PATCH("", profileHandler.Update)
	}
}
