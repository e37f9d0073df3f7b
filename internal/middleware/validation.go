package middleware

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/tyilmaz/registrar/internal/app/models/dto"
)

// validatedBodyKey is the context key under which ValidateRequest stores the
// bound request body.
const validatedBodyKey = "validatedBody"

// ValidateRequest binds and validates the JSON body against the model's type,
// aborting with a 400 on failure. Binding already runs the validator over the
// binding tags; its field errors are unpacked into per-field messages here.
// A fresh instance is allocated per request; handlers retrieve it with
// ValidatedBody.
func ValidateRequest(model interface{}) gin.HandlerFunc {
	modelType := reflect.TypeOf(model)
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}

	return func(c *gin.Context) {
		obj := reflect.New(modelType).Interface()

		if err := c.ShouldBindJSON(obj); err != nil {
			var fieldErrors validator.ValidationErrors
			if errors.As(err, &fieldErrors) {
				validationErrors := dto.NewValidationErrors()
				for _, fe := range fieldErrors {
					validationErrors.AddError(fe.Field(), formatValidationError(fe))
				}
				errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed")
				if validationErrors.HasErrors() {
					errorDetail = errorDetail.WithDetails(validationErrors.Errors)
				}
				c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
				c.Abort()
				return
			}

			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request format")
			errorDetail = errorDetail.WithDetails(err.Error())
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			c.Abort()
			return
		}

		c.Set(validatedBodyKey, obj)
		c.Next()
	}
}

// ValidatedBody returns the request body bound by ValidateRequest
func ValidatedBody(c *gin.Context) interface{} {
	return c.MustGet(validatedBodyKey)
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "email":
		return e.Field() + " must be a valid email address"
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
