// Package validate runs struct-tag validation and reports failures as a
// field → message map keyed by the JSON field name.
//
// Rules are go-playground/validator tags, plus:
//
//	phone   digits with optional leading +, spaces, dots, dashes and parentheses
//
// Example:
//
//	type OrderInput struct {
//	    Name  string `json:"customer_name"  validate:"required,max=255"`
//	    Phone string `json:"customer_phone" validate:"required,phone"`
//	    Email string `json:"customer_email" validate:"omitempty,email"`
//	}
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once sync.Once
	v    *validator.Validate
)

var phonePattern = regexp.MustCompile(`^\+?[0-9 ().\-]{6,32}$`)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			s := strings.TrimSpace(fl.Field().String())
			return phonePattern.MatchString(s) && strings.ContainsAny(s, "0123456789")
		})
	})
	return v
}

// ─── Public API ───────────────────────────────────────────────────────────────

// Struct validates s and returns one message per failing field. A nil map
// means s is valid.
func Struct(s interface{}) map[string]string {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fieldPath(fe)
		if _, seen := out[key]; !seen {
			out[key] = message(fe)
		}
	}
	return out
}

// Var validates a single value against tag.
func Var(field interface{}, tag string) error {
	return instance().Var(field, tag)
}

// HasErrors reports whether errs has at least one entry.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// fieldPath drops the root struct name and embedded structs:
// "ProductRequest.ProductInput.name" → "name". Nested fields keep their
// dotted path.
func fieldPath(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) < 2 {
		return fe.Field()
	}
	kept := parts[1:]
	for len(kept) > 1 && isGoName(kept[0]) {
		kept = kept[1:]
	}
	return strings.Join(kept, ".")
}

// isGoName reports whether a namespace segment is an untagged Go field,
// which is how embedded structs appear.
func isGoName(seg string) bool {
	return seg != "" && seg[0] >= 'A' && seg[0] <= 'Z'
}

func message(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", f)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", f)
	case "url", "http_url":
		return fmt.Sprintf("The %s must be a valid URL.", f)
	case "phone":
		return fmt.Sprintf("The %s must be a valid phone number.", f)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", f, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", f, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s may not be greater than %s characters.", f, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s.", f, fe.Param())
	case "gt":
		return fmt.Sprintf("The %s must be greater than %s.", f, fe.Param())
	case "gte":
		return fmt.Sprintf("The %s must be at least %s.", f, fe.Param())
	case "lte":
		return fmt.Sprintf("The %s may not be greater than %s.", f, fe.Param())
	case "oneof":
		return fmt.Sprintf("The %s must be one of: %s.", f, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "dive":
		return fmt.Sprintf("The %s is invalid.", f)
	default:
		return fmt.Sprintf("The %s field is invalid (%s).", f, fe.Tag())
	}
}
