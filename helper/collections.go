package helper

// IncludeIf returns m when cond holds and an empty map otherwise. It is meant for conditionally
// merging optional entries into a larger config with maps.Copy.
func IncludeIf[K comparable, V any](cond bool, m map[K]V) map[K]V {
	if !cond {
		return map[K]V{}
	}

	return m
}

// SetDifference returns the elements of a that are not in b. Neither input is modified.
func SetDifference[T comparable](a, b map[T]struct{}) map[T]struct{} {
	diff := make(map[T]struct{}, len(a))
	for k := range a {
		if _, ok := b[k]; !ok {
			diff[k] = struct{}{}
		}
	}

	return diff
}

// SetOf builds a set from the given elements.
func SetOf[T comparable](elems ...T) map[T]struct{} {
	set := make(map[T]struct{}, len(elems))
	for _, e := range elems {
		set[e] = struct{}{}
	}

	return set
}
