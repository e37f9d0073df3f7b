package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/tyilmaz/registrar/internal/app/models/dto"
	"github.com/tyilmaz/registrar/internal/pkg/apperrors"
	"github.com/tyilmaz/registrar/internal/pkg/logger"
)

// HandleAPIError maps application errors to HTTP responses. Controllers call
// it for every non-nil service error instead of building responses themselves.
func HandleAPIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrValidationFailed),
		errors.Is(err, apperrors.ErrInvalidEmail),
		errors.Is(err, apperrors.ErrBadRequest):
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, messageOf(err, "Validation failed"))
		if field := fieldOf(err); field != "" {
			errorDetail = errorDetail.WithField(field)
		} else if details := detailsOf(err); details != nil {
			errorDetail = errorDetail.WithDetails(details)
		}
		c.JSON(400, dto.APIResponse{Error: errorDetail})

	case errors.Is(err, apperrors.ErrInvalidCreditHours):
		c.JSON(400, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Credit hours must be between 1 and 6"),
		})

	case errors.Is(err, apperrors.ErrAlreadyEnrolled):
		c.JSON(409, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeAlreadyEnrolled, "Already enrolled in this course for the selected semester"),
		})

	case errors.Is(err, apperrors.ErrEmailAlreadyExists):
		c.JSON(409, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Email already registered"),
		})

	case errors.Is(err, apperrors.ErrStudentIDExists):
		c.JSON(409, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Student ID already exists"),
		})

	case errors.Is(err, apperrors.ErrCourseCodeExists):
		c.JSON(409, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, "Course code already exists"),
		})

	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(409, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, messageOf(err, "Conflict")),
		})

	case errors.Is(err, apperrors.ErrStudentNotFound):
		c.JSON(404, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Student not found"),
		})

	case errors.Is(err, apperrors.ErrCourseNotFound):
		c.JSON(404, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Course not found"),
		})

	case errors.Is(err, apperrors.ErrEnrollmentNotFound):
		c.JSON(404, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Enrollment not found"),
		})

	case errors.Is(err, apperrors.ErrResourceNotFound):
		c.JSON(404, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, messageOf(err, "Resource not found")),
		})

	case errors.Is(err, apperrors.ErrStorageUnavailable):
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Storage operation failed")
		c.JSON(503, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeStorageUnavailable, "Storage temporarily unavailable").
				WithSeverity(dto.ErrorSeverityCritical),
		})

	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error")
		c.JSON(500, dto.APIResponse{
			Error: dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error"),
		})
	}
}

// messageOf prefers the message of a CustomError over the generic fallback
func messageOf(err error, fallback string) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	return fallback
}

// fieldOf extracts the failing field name from a CustomError, if one was named
func fieldOf(err error) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Details != nil {
		if field, ok := custom.Details["field"].(string); ok {
			return field
		}
	}
	return ""
}

// detailsOf surfaces CustomError details (e.g. the failing field) when present
func detailsOf(err error) interface{} {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Details != nil {
		return custom.Details
	}
	return nil
}
