// Package validator wraps go-playground/validator with JSON/form field names and
// human readable failure messages.
package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var engine = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(wireName)
	return v
})

// ValidationError is one failed rule on one field.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Param string `json:"param,omitempty"`
}

// Message renders the failure for an end user, e.g. "like is required".
func (e ValidationError) Message() string {
	field := strings.ToLower(strings.ReplaceAll(e.Field, "_", " "))
	if field == "" {
		field = "field"
	}
	switch e.Tag {
	case "required":
		return field + " is required"
	case "max":
		return field + " must be at most " + e.Param + " characters"
	}
	if e.Param != "" {
		return field + " failed validation: " + e.Tag + "=" + e.Param
	}
	return field + " failed validation: " + e.Tag
}

// ValidationErrors is returned by ValidateStruct when any rule fails.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "invalid request payload"
	}
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Message()
	}
	return strings.Join(msgs, "; ")
}

// ValidateStruct runs the `validate` tags of s. Rule failures come back as
// ValidationErrors; anything else (a nil or non-struct argument) is returned as is.
func ValidateStruct(s any) error {
	err := engine().Struct(s)

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := make(ValidationErrors, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = ValidationError{Field: fe.Field(), Tag: fe.Tag(), Param: fe.Param()}
	}
	return out
}

// wireName reports the name a client sees: json tag, then form tag, then the Go name.
func wireName(fld reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(fld.Tag.Get(key), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return fld.Name
}
