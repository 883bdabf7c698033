package utils

import (
	"reflect"
)

func DefaultIfZero[T any](v T, fallback T) T {
	if reflect.ValueOf(v).IsZero() {
		return fallback
	}
	return v
}

func Pointer[T any](v T) *T {
	return &v
}
