package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/coffeeshop/pkg/errors"
)

// ErrorBody is the uniform failure envelope. Error repeats the HTTP status code.
type ErrorBody struct {
	Success bool   `json:"success"`
	Error   int    `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Success writes a JSON success response. The supplied fields are placed at the
// top level of the payload next to "success": true.
func Success(c *gin.Context, statusCode int, fields gin.H) {
	payload := gin.H{"success": true}
	for key, value := range fields {
		if key == "success" {
			continue
		}
		payload[key] = value
	}
	c.JSON(statusCode, payload)
}

// Error writes a JSON error response derived from an AppError.
func Error(c *gin.Context, err error) {
	c.JSON(render(err))
}

// Abort writes the error envelope and stops the handler chain.
func Abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(render(err))
}

func render(err error) (int, ErrorBody) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}

	appErr := appErrors.FromError(err)
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return status, ErrorBody{
		Success: false,
		Error:   status,
		Message: appErr.Message,
		Code:    appErr.Code,
	}
}
