package reservations

import (
	"github.com/gin-gonic/gin"
)

// Router handles reservation routes
type Router struct {
	controller *Controller
}

func NewRouter(controller *Controller) *Router {
	return &Router{controller: controller}
}

// SetupRoutes registers the reservation routes behind the given guards
func (r *Router) SetupRoutes(rg *gin.RouterGroup, guards ...gin.HandlerFunc) {
	reservations := rg.Group("/reservations")
	reservations.Use(guards...)
	{
		reservations.POST("", r.controller.Reserve)
		reservations.POST("/:id/confirm", r.controller.Confirm)
	}
}
