package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// ValueOr dereferences an optional pointer field, falling back to a default
// when the field is absent.
//
// Parameters:
//   - p: the optional pointer
//   - fallback: the value to use when p is nil
//
// Returns:
//   - T: *p when p is non-nil, fallback otherwise
func ValueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
