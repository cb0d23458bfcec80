package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate returns field -> failed tag, or nil when v is valid.
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	if errs := Fields(err); errs != nil {
		return errs
	}
	return map[string]string{"_": err.Error()}
}

// Fields flattens tag failures, including those gin's binding reports, into
// field -> failed tag. Any other error yields nil.
func Fields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	errs := make(map[string]string, len(verrs))
	for _, e := range verrs {
		errs[e.Field()] = e.Tag()
	}
	return errs
}
