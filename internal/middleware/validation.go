package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// SetupValidator registers the custom validation rules used by request DTOs.
// decimal.Decimal fields are validated through their string form.
func SetupValidator() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return RegisterValidations(v)
}

// RegisterValidations adds the custom rules to v.
func RegisterValidations(v *validator.Validate) error {
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

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	return v.RegisterValidation("decimal_gte0", func(fl validator.FieldLevel) bool {
		raw, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return false
		}
		return !d.IsNegative()
	})
}

// ValidationMessage renders a field error for API clients.
func ValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + ": this field is required"
	case "max":
		return e.Field() + ": must be at most " + e.Param()
	case "min":
		return e.Field() + ": must be at least " + e.Param()
	case "decimal_gte0":
		return e.Field() + ": must be a non-negative decimal"
	default:
		return e.Field() + ": invalid value"
	}
}
