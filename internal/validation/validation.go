// Package validation rejects malformed input at the HTTP boundary, before any
// service code runs.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"storefront-be/internal/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const (
	maxBodyBytes    = 1 << 20
	passwordSymbols = "!@#$%^&*"
)

var ErrValidation = apperror.Validation("Validation failed")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	mustRegister(v, "has_upper", containsRune(unicode.IsUpper))
	mustRegister(v, "has_lower", containsRune(unicode.IsLower))
	mustRegister(v, "has_digit", containsRune(unicode.IsDigit))
	mustRegister(v, "has_symbol", func(fl validator.FieldLevel) bool {
		return strings.ContainsAny(fl.Field().String(), passwordSymbols)
	})

	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func containsRune(pred func(rune) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), pred) >= 0
	}
}

// Struct validates v against its `validate` tags.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ErrValidation.WithDetails("Validation failed")
	}

	details := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, message(fe))
	}
	return ErrValidation.WithDetails(details...)
}

// Each validates every element of items and reports all failures together.
func Each[T any](items []T) error {
	var details []string
	for _, item := range items {
		if err := Struct(item); err != nil {
			appErr, _ := apperror.As(err)
			details = append(details, appErr.Details...)
		}
	}
	if len(details) > 0 {
		return ErrValidation.WithDetails(details...)
	}
	return nil
}

// DecodeJSON reads a JSON body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return ErrValidation.WithDetails("Request body is required")
		}
		return ErrValidation.WithDetails("Invalid JSON body")
	}
	return nil
}

// Bind decodes the body and validates the result.
func Bind(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := DecodeJSON(w, r, dst); err != nil {
		return err
	}
	return Struct(dst)
}

func message(fe validator.FieldError) string {
	field := displayName(fe.Field())

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "Invalid email format"
	case "alphanum":
		return field + " must be alphanumeric"
	case "uuid", "uuid4":
		return "Invalid " + strings.ToLower(field) + " ID"
	case "min":
		if fe.Kind() == reflect.String && fe.Param() == "1" {
			return field + " is required"
		}
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		if fe.Param() == "0" {
			return field + " must be non-negative"
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "has_upper":
		return field + " must contain at least one uppercase letter"
	case "has_lower":
		return field + " must contain at least one lowercase letter"
	case "has_digit":
		return field + " must contain at least one number"
	case "has_symbol":
		return field + " must contain at least one special character"
	default:
		return field + " is invalid"
	}
}

// displayName turns a json field name like "productId" into "Product".
func displayName(name string) string {
	name = strings.TrimSuffix(name, "Id")
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
