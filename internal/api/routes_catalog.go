package api

import (
	"github.com/gin-gonic/gin"

	"github.com/wollyshare/wollyshare/internal/handlers"
)

func registerCatalogRoutes(members *gin.RouterGroup, deps Deps) {
	itemHandler := handlers.NewItemHandler(deps.Items)
	locationHandler := handlers.NewLocationHandler(deps.Locations)

	items := members.Group("/items")
	{
		items.GET("", itemHandler.List)
		items.POST("", itemHandler.Create)
		items.GET("/mine", itemHandler.Mine)
		items.GET("/categories", itemHandler.Categories)
		items.GET("/:id", itemHandler.Get)
		items.PATCH("/:id", itemHandler.Update)
		items.DELETE("/:id", itemHandler.Delete)
	}

	members.GET("/stats", itemHandler.Stats)
	members.GET("/locations", locationHandler.List)
}
