package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/tehraja/backend/internal/interfaces/http/dto"
)

// SetupValidator makes binding errors name fields by their JSON (or query
// form) key, so a bad taste axis is reported as "sweet" and not "Sweet".
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
}

// FormatValidationErrors turns binding failures into the error envelope
// with one detail per offending field
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			details = append(details, dto.ValidationDetail{Field: fe.Field(), Message: fieldMessage(fe)})
		}
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError answers 400 for a body or query that failed to
// bind; malformed JSON gets INVALID_JSON instead of field details
func HandleValidationError(c *gin.Context, err error) {
	requestID := c.GetString(RequestIDKey)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(dto.ErrCodeInvalidJSON, "Malformed request body", requestID))
		return
	}
	c.JSON(http.StatusBadRequest, FormatValidationErrors(fieldErrs, requestID))
}

// fieldMessages covers the tags used by the shop's request DTOs
var fieldMessages = map[string]func(fe validator.FieldError) string{
	"required": func(validator.FieldError) string { return "This field is required" },
	"min":      func(fe validator.FieldError) string { return "Must be at least " + fe.Param() + unit(fe) },
	"max":      func(fe validator.FieldError) string { return "Must be at most " + fe.Param() + unit(fe) },
	"oneof":    func(fe validator.FieldError) string { return "Must be one of: " + fe.Param() },
	"gte":      func(fe validator.FieldError) string { return "Must be greater than or equal to " + fe.Param() },
	"lte":      func(fe validator.FieldError) string { return "Must be less than or equal to " + fe.Param() },
	"gt":       func(fe validator.FieldError) string { return "Must be greater than " + fe.Param() },
}

func fieldMessage(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Tag()]; ok {
		return msg(fe)
	}
	return "Invalid value"
}

// unit names what min/max count for strings
func unit(fe validator.FieldError) string {
	if fe.Type().Kind() == reflect.String {
		return " characters"
	}
	return ""
}
