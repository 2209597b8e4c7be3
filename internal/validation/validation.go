// Package validation checks entity and request shapes before anything is
// persisted. It has no side effects and is safe for concurrent use.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON names so clients can map errors to inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// FieldError describes a single violated constraint
type FieldError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
	Param      string `json:"param,omitempty"`
}

// Error lists every constraint a candidate violated
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Param != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", f.Field, f.Constraint, f.Param))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Constraint))
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether field failed the given constraint
func (e *Error) Has(field, constraint string) bool {
	for _, f := range e.Fields {
		if f.Field == field && f.Constraint == constraint {
			return true
		}
	}
	return false
}

// Struct validates v against its validate tags. It returns nil or *Error.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &Error{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:      fieldPath(fe.Namespace()),
			Constraint: fe.Tag(),
			Param:      fe.Param(),
		})
	}
	return out
}

// Fail builds an *Error for checks that cannot be expressed as tags
func Fail(field, constraint string) *Error {
	return &Error{Fields: []FieldError{{Field: field, Constraint: constraint}}}
}

// fieldPath drops the root type from a namespace: "Pet.name" -> "name",
// "AdoptionUserDetails.address.town" -> "address.town".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
