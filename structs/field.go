package structs

import (
	"encoding/json"
)

// Field is an optional JSON member that tells apart a missing member, an
// explicit null and a value.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns a field holding v.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null returns a field holding an explicit null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// IsZero reports whether the member was absent; used by omitzero.
func (f Field[T]) IsZero() bool {
	return !f.Set
}

// MarshalJSON implements json.Marshaler.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if string(b) == "null" {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}
