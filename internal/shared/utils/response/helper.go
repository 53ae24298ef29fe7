package response

import (
	"errors"

	"github.com/gin-gonic/gin"

	"tixbridge/internal/shared/apperr"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError maps an error's kind onto the status code and error envelope
func RespondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	code := apperr.HTTPStatus(kind)

	message := err.Error()
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}
	if kind == apperr.KindUnknown || kind == apperr.KindConfiguration {
		message = "Internal server error"
	}

	_ = c.Error(err)
	RespondJSON(c, "error", code, message, nil, ErrorDetail{Kind: string(kind)})
}
