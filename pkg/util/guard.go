package util

// SetIfAbsent assigns value to *dst only when *dst is nil. It reports whether
// the assignment happened. All first-write-wins fields go through here.
func SetIfAbsent[T any](dst **T, value T) bool {
	if *dst != nil {
		return false
	}
	v := value
	*dst = &v
	return true
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
