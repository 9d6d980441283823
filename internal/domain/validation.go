package domain

import "strings"

// FieldError describes one problem with one request field.
type FieldError struct {
	Field    string `json:"field"`
	Message  string `json:"msg"`
	Value    string `json:"value,omitempty"`
	Location string `json:"location,omitempty"`
}

// ValidationError accumulates every field problem of a request so the
// client sees all of them in one response.
type ValidationError struct {
	Problems []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Problems) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Field+": "+p.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Add(field, location, value, msg string) {
	e.Problems = append(e.Problems, FieldError{
		Field:    field,
		Message:  msg,
		Value:    value,
		Location: location,
	})
}

// Merge appends the problems of other, if any.
func (e *ValidationError) Merge(other *ValidationError) {
	if other == nil {
		return
	}
	e.Problems = append(e.Problems, other.Problems...)
}

// OrNil returns nil when nothing was recorded. It keeps callers from
// returning a typed nil inside an error interface.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Problems) == 0 {
		return nil
	}
	return e
}

// NewValidationError builds a single-problem validation error.
func NewValidationError(field, location, value, msg string) *ValidationError {
	v := &ValidationError{}
	v.Add(field, location, value, msg)
	return v
}
