package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"homekeeper/internal/csvcodec"
	"homekeeper/internal/domain"
)

// maxBodyBytes bounds JSON payloads; CSV uploads use their own limit
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterValidation("recurrence", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseRecurrence(fl.Field().String())
		return ok
	})
	v.RegisterValidation("dateformat", func(fl validator.FieldLevel) bool {
		if fl.Field().String() == "" {
			return true
		}
		_, ok := csvcodec.ParseDateFormat(fl.Field().String())
		return ok
	})

	return v
}

// ValidateRequest validates a struct against its validate tags
func ValidateRequest(v any) error {
	return validate.Struct(v)
}

// DecodeAndValidate decodes a JSON body, rejecting unknown fields, then validates it
func DecodeAndValidate(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return ValidateRequest(v)
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors returns nil when err did not come from the validator
func FormatValidationErrors(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	out := make([]ValidationError, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		out = append(out, ValidationError{
			Field:   e.Field(),
			Message: errorMessage(e),
		})
	}
	return out
}

func errorMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gte":
		return "Value must be greater than or equal to " + e.Param()
	case "lte":
		return "Value must be less than or equal to " + e.Param()
	case "recurrence":
		return "Recurrence must be one of daily, weekly, biweekly, monthly or empty"
	case "dateformat":
		return "Unknown date format"
	case "dive", "uuid":
		return "Invalid identifier"
	default:
		return "Invalid value"
	}
}
