package database

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/xerrors"
)

var (
	validate *validator.Validate

	providerConfigNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,63}$`)
)

// A single validator instance is used, because it caches struct parsing.
func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	err := validate.RegisterValidation("provider_config_name", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		return providerConfigNameRegex.MatchString(str)
	})
	if err != nil {
		panic(err)
	}
}

// ValidationError lists the fields of a params struct that failed
// validation.
type ValidationError struct {
	Fields []FieldError
}

// FieldError is a single failed field. It never includes the field value,
// since params carry credentials.
type FieldError struct {
	Field string
	Tag   string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", f.Field, f.Tag))
	}
	return "invalid " + strings.Join(parts, ", ")
}

// Validate checks the validate struct tags of params.
func Validate(params any) error {
	err := validate.Struct(params)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !xerrors.As(err, &validationErrors) {
		return xerrors.Errorf("validate: %w", err)
	}
	verr := &ValidationError{Fields: make([]FieldError, 0, len(validationErrors))}
	for _, fe := range validationErrors {
		verr.Fields = append(verr.Fields, FieldError{Field: fe.Field(), Tag: fe.Tag()})
	}
	return verr
}
