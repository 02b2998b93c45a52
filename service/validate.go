package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/padraicbc/runcrew/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report JSON names so messages match what the client sent.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the `validate` tags of req and returns a *ValidationError on failure.
func Validate(req any) error {
	return check(req).orNil()
}

func check(req any) *ValidationError {
	verr := &ValidationError{}
	err := validate.Struct(req)
	if err == nil {
		return verr
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		verr.add(err.Error())
		return verr
	}
	for _, fe := range fieldErrs {
		verr.add(describe(fe))
	}
	return verr
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gte":
		return fmt.Sprintf("%s must be >= %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be > %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
}

// checkRange requires both dates and start <= end.
func checkRange(verr *ValidationError, startName string, start models.Date, endName string, end models.Date) {
	if start.IsZero() {
		verr.add(startName + " is required")
	}
	if end.IsZero() {
		verr.add(endName + " is required")
	}
	if !start.IsZero() && !end.IsZero() && start.After(end.Time) {
		verr.add(fmt.Sprintf("%s must not be after %s", startName, endName))
	}
}
