package response

import (
	"errors"
	"net/http"

	"checkout-gateway/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// Envelope is the standard JSON body: every response carries a success flag,
// successful ones carry data, failed ones only a human-readable message.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// OK sends a 200 response. data may be nil for bodyless acknowledgements
// (the webhook endpoint answers {"success":true}).
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    data,
	})
}

// Error sends an error response. It checks if err is an *apperror.AppError
// and maps it accordingly, otherwise returns 500. Internal details are never
// exposed to the caller.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, Envelope{
			Success: false,
			Error:   appErr.Message,
		})
		return
	}

	// Unknown error -> 500
	c.JSON(http.StatusInternalServerError, Envelope{
		Success: false,
		Error:   "Internal server error",
	})
}
