package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"jobboard/internal/apperr"
)

// normalizer is implemented by requests that clean up their fields before validation.
type normalizer interface {
	normalize()
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// bindJSON decodes the body into req and validates it.
func (h *Handler) bindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apperr.Validation("invalid request body").Wrap(err)
	}
	if n, ok := req.(normalizer); ok {
		n.normalize()
	}
	if err := h.validate.Struct(req); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("invalid request body").Wrap(err)
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = describe(fe)
	}
	return apperr.Validation("validation failed").WithDetails(details)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}
