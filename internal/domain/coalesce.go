package domain

// Coalesce returns the first value that is not the zero value of its type.
func Coalesce[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}

// PositiveIntOr treats zero and negative minute counts as unset.
func PositiveIntOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
