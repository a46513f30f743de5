// Package validate checks request bodies before anything is sent to the
// backend. Both the gateway handlers and the console client use it.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"cashloan/internal/domain"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate

	phone11Re = regexp.MustCompile(`^[0-9]{11}$`)
)

// Validator returns the shared instance with the custom rules registered.
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})
		if err := v.RegisterValidation("phone11", isPhone11); err != nil {
			panic(err)
		}
		instance = v
	})
	return instance
}

// isPhone11: exactly eleven digits, nothing else.
func isPhone11(fl validator.FieldLevel) bool {
	return phone11Re.MatchString(fl.Field().String())
}

// Struct validates s and returns the first failure as a domain.ValidationError
// carrying a message that can be shown to the user as is.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return domain.ValidationError{Msg: "invalid request", Err: err}
	}
	fe := ves[0]
	return domain.ValidationError{Field: fe.Field(), Msg: message(fe), Err: err}
}

// Fields maps every failing field to its rule, for the "errors" object of a
// 422-style response.
func Fields(err error) map[string]string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return nil
	}
	out := make(map[string]string, len(ves))
	for _, fe := range ves {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Field() {
	case "first_name", "last_name":
		if fe.Tag() == "required" {
			return "First name and last name are required"
		}
	case "phone":
		if fe.Tag() == "phone11" {
			return "Phone number must be exactly 11 digits"
		}
	}
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "gt":
		if fe.Param() == "0" {
			return label + " must be greater than zero"
		}
		return fmt.Sprintf("%s must be greater than %s", label, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "datetime":
		return label + " must be a date (YYYY-MM-DD)"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, fe.Param())
	case "email":
		return label + " must be a valid email address"
	}
	return "Invalid " + strings.ToLower(label)
}
