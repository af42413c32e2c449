package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidCredentials indicates that provided login credentials are
// incorrect. It deliberately does not say whether the username or the
// password was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError collects per-field validation messages. It renders into the
// structured 400 body `{"error": {"field": ["msg"]}}`.
type ValidationError map[string][]string

func (e ValidationError) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(e[f], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e ValidationError) add(field, message string) {
	e[field] = append(e[field], message)
}

// AsValidationError unwraps err into a ValidationError if it is one.
func AsValidationError(err error) (ValidationError, bool) {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
