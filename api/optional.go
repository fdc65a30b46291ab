package api

import (
	"bytes"
	"encoding/json"
)

// Optional holds a request field that may be unset. Unset fields are dropped
// from the JSON payload when tagged `omitzero`, instead of being sent as null
// or as the type's zero value.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an unset Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is set.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// Or returns the value, or def when unset.
func (o Optional[T]) Or(def T) T {
	if !o.set {
		return def
	}
	return o.value
}

// IsSet reports whether a value is present.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// IsZero reports whether the Optional is unset. encoding/json consults it for `omitzero`.
func (o Optional[T]) IsZero() bool {
	return !o.set
}

// MarshalJSON encodes the held value, or null when unset.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// UnmarshalJSON sets the Optional unless data is null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
