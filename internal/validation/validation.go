// Package validation wraps go-playground/validator for option structs.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator returns the shared validator. Field names in messages use the
// json tag of the field when present.
func Validator() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
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
	return instance
}

// Struct validates v and returns one note per violated rule.
func Struct(v any) []string {
	err := Validator().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	notes := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		notes = append(notes, describe(fe))
	}
	return notes
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%q must be one of [%s], got %v", fe.Field(), fe.Param(), fe.Value())
	case "gte", "min":
		return fmt.Sprintf("%q must be at least %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "lte", "max":
		return fmt.Sprintf("%q must be at most %s, got %v", fe.Field(), fe.Param(), fe.Value())
	case "gt":
		return fmt.Sprintf("%q must be greater than %s, got %v", fe.Field(), fe.Param(), fe.Value())
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%q failed the %q rule (%s)", fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%q failed the %q rule", fe.Field(), fe.Tag())
}
