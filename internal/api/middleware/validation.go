package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apierrors "voicenote/internal/api/errors"
)

// ValidateQuery binds and validates query parameters
func ValidateQuery(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindQuery(req); err != nil {
		validationErrors := make(map[string]string)

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			for _, fieldError := range validationErrs {
				field := strings.ToLower(fieldError.Field())

				switch fieldError.Tag() {
				case "required":
					validationErrors[field] = "is required"
				case "min":
					validationErrors[field] = "must be at least " + fieldError.Param()
				case "max":
					validationErrors[field] = "must be at most " + fieldError.Param()
				default:
					validationErrors[field] = "invalid query parameter"
				}
			}
		} else {
			validationErrors["query"] = "invalid query parameters"
		}

		return apierrors.NewBadRequestErrorWithDetails("Invalid query parameters", validationErrors)
	}

	return nil
}
