package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is shared; validator.Validate caches struct metadata and is safe
// for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report JSON names ("eyeColor", "photos[1]") instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkStruct runs the validate tags of s and maps every failure to a
// FieldError. A non-validation error (bad tag, nil input) is returned as is.
func checkStruct(s any) ([]FieldError, error) {
	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Field:   fe.Field(),
			Reason:  reasonFor(fe),
			Message: messageFor(fe),
		})
	}
	return out, nil
}

func reasonFor(fe validator.FieldError) Reason {
	switch fe.Tag() {
	case "oneof":
		return ReasonEnum
	case "url":
		return ReasonURL
	default:
		return ReasonConstraint
	}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters long", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "url":
		return "must be an absolute URL"
	case "email":
		return "must be a valid email address"
	default:
		return fmt.Sprintf("failed on %q rule", fe.Tag())
	}
}

// baseField strips an index suffix: "photos[1]" -> "photos".
func baseField(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}
