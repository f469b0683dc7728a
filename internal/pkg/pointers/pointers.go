package pointers

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// NilIfEmpty returns nil for "" so optional text columns store NULL.
func NilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to value or the zero value for nil.
func Deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
