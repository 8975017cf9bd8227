package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/coffeeshop/pkg/errors"
	"github.com/charlesng35/coffeeshop/pkg/response"
	appValidator "github.com/charlesng35/coffeeshop/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When validation fails, an error response is automatically written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := decodeAndValidate(c, dest); err != nil {
		response.Error(c, err)
		return false
	}
	return true
}

// decodeAndValidate is bindAndValidate without writing a response.
func decodeAndValidate[T any](c *gin.Context, dest *T) *appErrors.AppError {
	if err := c.ShouldBindJSON(dest); err != nil {
		return appErrors.NewBadRequest("invalid JSON payload").WithInternal(err)
	}
	if err := appValidator.ValidateStruct(dest); err != nil {
		return appErrors.NewBadRequest(formatValidationError(err))
	}
	return nil
}

func formatValidationError(err error) string {
	var ve appValidator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "invalid request payload"
	}

	messages := make([]string, 0, len(ve))
	for _, failure := range ve {
		field := failure.Path
		if field == "" {
			field = failure.Field
		}
		switch failure.Tag {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		default:
			if failure.Param != "" {
				messages = append(messages, fmt.Sprintf("%s failed validation: %s=%s", field, failure.Tag, failure.Param))
			} else {
				messages = append(messages, fmt.Sprintf("%s failed validation: %s", field, failure.Tag))
			}
		}
	}
	return strings.Join(messages, "; ")
}

// parseDrinkID reads the :id path parameter. Anything that is not a positive
// integer cannot name a drink.
func parseDrinkID(c *gin.Context) (uint, bool) {
	value := strings.TrimSpace(c.Param("id"))
	id, err := strconv.ParseUint(value, 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
