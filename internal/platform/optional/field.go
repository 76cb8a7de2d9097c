package optional

import (
	"bytes"

	"github.com/bytedance/sonic"
)

type State uint8

const (
	StateAbsent State = iota
	StateNull
	StateSet
)

// Field distinguishes a missing value from an explicit null and a present
// value. The zero value is absent.
type Field[T any] struct {
	state State
	value T
}

func Of[T any](v T) Field[T] {
	return Field[T]{state: StateSet, value: v}
}

func Null[T any]() Field[T] {
	return Field[T]{state: StateNull}
}

func (f Field[T]) State() State {
	return f.state
}

func (f Field[T]) IsSet() bool {
	return f.state == StateSet
}

func (f Field[T]) IsNull() bool {
	return f.state == StateNull
}

func (f Field[T]) IsAbsent() bool {
	return f.state == StateAbsent
}

// Get returns the value and whether it is present.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.state == StateSet
}

// Map converts a present value, keeping absent and null as they are.
func Map[T, U any](f Field[T], fn func(T) U) Field[U] {
	if f.state != StateSet {
		return Field[U]{state: f.state}
	}
	return Of(fn(f.value))
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		f.state, f.value = StateNull, zero
		return nil
	}
	var v T
	if err := sonic.ConfigStd.Unmarshal(data, &v); err != nil {
		return err
	}
	f.state, f.value = StateSet, v
	return nil
}

// MarshalJSON writes absent and null values as null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.state != StateSet {
		return []byte("null"), nil
	}
	return sonic.ConfigStd.Marshal(f.value)
}
