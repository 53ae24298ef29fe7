package checkout

import (
	"github.com/gin-gonic/gin"
)

// SetupWebhookRoutes registers the processor callback. It is authenticated by
// its signature, so it is mounted without the API key guard.
func SetupWebhookRoutes(router *gin.RouterGroup, controller Controller, guards ...gin.HandlerFunc) {
	webhookRoutes := router.Group("/webhooks")
	webhookRoutes.Use(guards...)
	{
		webhookRoutes.POST("/checkout", controller.HandleWebhook) // POST /api/v1/webhooks/checkout
	}
}
