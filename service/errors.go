package service

import (
	"errors"
	"sort"
	"strings"
)

// ErrNotFound is returned when the referenced issue does not exist.
var ErrNotFound = errors.New("issue not found")

// Operations reported by StorageError.
const (
	OpList   = "fetch issues"
	OpCreate = "create issue"
	OpUpdate = "update issue"
	OpDelete = "delete issue"
)

// ValidationError lists rejected input fields.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Error joins the field messages in field order.
func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, ", ")
}

// StorageError reports a failed store operation.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "failed to " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
