// Package validation runs go-playground/validator struct tags and reports
// failures as CodeValidation errors keyed by json field name.
package validation

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	pkgerrors "github.com/agentfashion/storefront/pkg/errors"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// Struct validates dest. The returned error's message names the first failing
// field, sorted by name; details map every failing field to its reason.
func Struct(dest any) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}

	details := make(map[string]string, len(errs))
	fields := make([]string, 0, len(errs))
	for _, fieldErr := range errs {
		name := fieldErr.Field()
		if _, seen := details[name]; !seen {
			fields = append(fields, name)
		}
		details[name] = Message(fieldErr)
	}
	sort.Strings(fields)
	first := fields[0]
	return pkgerrors.New(pkgerrors.CodeValidation, first+" "+details[first]).WithDetails(details)
}

// Message renders a field error as a short reason such as "is required".
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return "is invalid"
}
