package intake

import (
	"errors"
	"sort"
	"strings"
)

// ErrAlreadyRegistered means a submission with the same normalized email
// already exists.
var ErrAlreadyRegistered = errors.New("email already registered")

// ValidationError lists every invalid field with one or more reasons.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid submission: " + strings.Join(names, ", ")
}

func (e *ValidationError) add(field, reason string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], reason)
}
