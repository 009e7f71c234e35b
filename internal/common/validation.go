package common

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ValidationError describes one rejected configuration or input field.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s=%v %s", e.Field, e.Value, e.Message)
}

// ValidationRule checks one value; nil means valid.
type ValidationRule func(field string, value any) *ValidationError

// Validator collects rule failures across fields so all of them are reported at once.
type Validator struct {
	errors []ValidationError
}

func NewValidator() *Validator {
	return &Validator{}
}

// Field applies rules to value and records every failure.
func (v *Validator) Field(field string, value any, rules ...ValidationRule) *Validator {
	for _, rule := range rules {
		if err := rule(field, value); err != nil {
			v.errors = append(v.errors, *err)
		}
	}
	return v
}

func (v *Validator) HasErrors() bool { return len(v.errors) > 0 }

func (v *Validator) Errors() []ValidationError { return v.errors }

// ErrorMessage joins the failures with "; ".
func (v *Validator) ErrorMessage() string {
	msgs := make([]string, len(v.errors))
	for i, err := range v.errors {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func invalid(field string, value any, msg string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: msg}
}

// Required rejects nil, blank strings and empty string slices.
func Required(field string, value any) *ValidationError {
	switch v := value.(type) {
	case nil:
		return invalid(field, value, "is required")
	case string:
		if strings.TrimSpace(v) == "" {
			return invalid(field, value, "is required")
		}
	case []string:
		if len(v) == 0 {
			return invalid(field, value, "is required")
		}
	}
	return nil
}

// Positive requires an int greater than zero.
func Positive(field string, value any) *ValidationError {
	n, ok := value.(int)
	switch {
	case !ok:
		return invalid(field, value, "must be an integer")
	case n <= 0:
		return invalid(field, value, "must be greater than zero")
	}
	return nil
}

// NonNegative requires an int greater than or equal to zero.
func NonNegative(field string, value any) *ValidationError {
	n, ok := value.(int)
	switch {
	case !ok:
		return invalid(field, value, "must be an integer")
	case n < 0:
		return invalid(field, value, "must not be negative")
	}
	return nil
}

// OneOf accepts only the listed strings.
func OneOf(allowed ...string) ValidationRule {
	return func(field string, value any) *ValidationError {
		s, _ := value.(string)
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return invalid(field, value, "must be one of "+strings.Join(allowed, " | "))
	}
}

// UUID requires a string holding a UUID, as used for run ids.
func UUID(field string, value any) *ValidationError {
	s, ok := value.(string)
	if !ok {
		return invalid(field, value, "must be a string")
	}
	if _, err := uuid.Parse(s); err != nil {
		return invalid(field, value, "must be a valid UUID")
	}
	return nil
}
