// Package validation turns struct tag rules into a flat field → code map
// suitable for a 400 response body.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their JSON name.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates s against its `validate` tags. It returns nil when s is valid.
func Struct(s any) Violations {
	err := instance().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Violations{"_": err.Error()}
	}
	v := Violations{}
	for _, fe := range verrs {
		v[fe.Field()] = code(fe)
	}
	return v
}

func code(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		return "too_short"
	case "max":
		return "too_long"
	case "oneof":
		return "must_be_one_of:" + strings.ReplaceAll(fe.Param(), " ", ",")
	default:
		return "invalid"
	}
}
