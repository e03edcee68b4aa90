package fn

// Map applies the given mapping function to each element of the given slice
// and generates a new slice.
func Map[I, O any, S ~[]I](s S, f func(I) O) []O {
	output := make([]O, len(s))

	for i, x := range s {
		output[i] = f(x)
	}

	return output
}

// Any returns true if the passed predicate returns true for at least one item
// in the slice.
func Any[T any, S ~[]T](xs S, pred func(T) bool) bool {
	for _, x := range xs {
		if pred(x) {
			return true
		}
	}

	return false
}
