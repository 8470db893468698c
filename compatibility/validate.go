package compatibility

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names so errors read "social", not "Social".
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks that every trait is present and within [1,10].
// It returns a *ValidationError listing each offending trait.
func Validate(p Profile) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{}
	for _, fe := range verrs {
		value, _ := fe.Value().(int)
		reason := ReasonOutOfRange
		if fe.Tag() == "required" {
			reason = ReasonMissing
		}
		out.add("", fe.Field(), value, reason)
	}
	return out
}

// IsIncomplete reports whether p fails validation only because traits are
// absent, as with a stored empty profile.
func IsIncomplete(p Profile) bool {
	var verr *ValidationError
	if !errors.As(Validate(p), &verr) {
		return false
	}
	for _, f := range verr.Fields {
		if f.Reason != ReasonMissing {
			return false
		}
	}
	return true
}
