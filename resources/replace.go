package resources

// Replace builds the successor of a live resource and retires the old one
// only once the successor exists. When build fails the old resource is left
// untouched, so everything still referring to it stays valid.
func Replace[T any](build func() (T, error), retire func()) (T, error) {
	next, err := build()
	if err != nil {
		var zero T
		return zero, err
	}

	if retire != nil {
		retire()
	}
	return next, nil
}
