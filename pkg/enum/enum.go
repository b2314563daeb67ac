// Package enum registers string-backed enum values so entity fields such as
// platform, action kind and draw status can be parsed from their wire form.
package enum

import (
	"fmt"
	"reflect"
)

var registry = map[reflect.Type]any{}

type values[T comparable] map[string]T

// New registers value under its own type and returns it, so enum variables
// can be declared as `var Instagram = enum.New(Platform("instagram"))`.
func New[T comparable](value T) T {
	v := reflect.ValueOf(value)
	t := v.Type()
	if _, ok := registry[t]; !ok {
		registry[t] = values[T]{}
	}

	registry[t].(values[T])[v.String()] = value
	return value
}

func ToEnum[T comparable](s string) (T, error) {
	var zero T
	vs, ok := registry[reflect.TypeOf(zero)]
	if !ok {
		return zero, fmt.Errorf("not found enum type %T", zero)
	}

	value, ok := vs.(values[T])[s]
	if !ok {
		return zero, fmt.Errorf("not found value %s in enum %T", s, zero)
	}

	return value, nil
}
