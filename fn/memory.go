package fn

// CopySlice returns a shallow copy of the given slice. A nil slice is returned
// as nil.
func CopySlice[T any, S ~[]T](slice S) S {
	if slice == nil {
		return nil
	}

	newSlice := make(S, len(slice))
	copy(newSlice, slice)

	return newSlice
}
