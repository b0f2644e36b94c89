package api

import (
	"github.com/gin-gonic/gin"

	"github.com/wollyshare/wollyshare/internal/handlers"
)

func registerBorrowRoutes(members *gin.RouterGroup, deps Deps) {
	borrowHandler := handlers.NewBorrowHandler(deps.Borrows)

	requests := members.Group("/borrow-requests")
	{
		requests.POST("", borrowHandler.Create)
		requests.GET("/incoming", borrowHandler.Incoming)
		requests.GET("/history", borrowHandler.History)
		requests.PATCH("/:id", borrowHandler.Decide)
	}
}
