package util

// FirstOrDefault returns the first of an optional variadic config argument,
// or the result of defaultValue when none was passed.
func FirstOrDefault[T any](values []T, defaultValue func() T) T {
	if len(values) > 0 {
		return values[0]
	}
	return defaultValue()
}
