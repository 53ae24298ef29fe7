package shows

import (
	"github.com/gin-gonic/gin"
)

func SetupShowRoutes(router *gin.RouterGroup, controller Controller, guards ...gin.HandlerFunc) {
	showRoutes := router.Group("/shows")
	showRoutes.Use(guards...)
	{
		showRoutes.GET("", controller.ListShows)   // GET /api/v1/shows?location=Austin&fetchAll=true
		showRoutes.GET("/:id", controller.GetShow) // GET /api/v1/shows/:id
	}
}
