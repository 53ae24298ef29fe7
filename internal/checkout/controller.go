package checkout

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"tixbridge/internal/shared/utils/response"
)

const maxWebhookBytes = 1 << 20

type Controller interface {
	HandleWebhook(c *gin.Context)
}

type controller struct {
	handler *WebhookHandler
}

func NewController(handler *WebhookHandler) Controller {
	return &controller{handler: handler}
}

// HandleWebhook needs the raw body; the signature covers the exact bytes sent.
func (ctrl *controller) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Failed to read webhook body", nil, err.Error())
		return
	}

	result, err := ctrl.handler.Handle(c.Request.Context(), payload, c.GetHeader(SignatureHeader))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Webhook received", result, nil)
}
