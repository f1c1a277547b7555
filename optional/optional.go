package optional

// Optional is a value which may or may not be set.
type Optional[T any] struct {
	value T
	set   bool
}

// Set stores a value and marks the Optional as having one.
func (o *Optional[T]) Set(value T) {
	o.value = value
	o.set = true
}

// Get returns the stored value. It panics when no value has been set.
func (o *Optional[T]) Get() T {
	if !o.set {
		panic("optional: Get called on empty Optional")
	}
	return o.value
}

// GetOr returns the stored value or `alternative` when none has been set.
func (o *Optional[T]) GetOr(alternative T) T {
	if !o.set {
		return alternative
	}
	return o.value
}

// HasValue returns true when a value has been set.
func (o *Optional[T]) HasValue() bool {
	return o.set
}
