package core

// Bounded is an ordered, duplicate-free collection with an optional maximum
// size. Insertion order is preserved. A max of 0 means unbounded.
type Bounded[T comparable] struct {
	max   int
	items []T
}

// NewBounded creates an empty collection holding at most max items.
// If max == 0, the collection grows without limit.
func NewBounded[T comparable](max int) *Bounded[T] {
	return &Bounded[T]{max: max}
}

// Len returns the number of stored items.
func (b *Bounded[T]) Len() int { return len(b.items) }

// Cap returns the configured maximum (0 for unbounded).
func (b *Bounded[T]) Cap() int { return b.max }

// At returns the i-th item in insertion order. It panics when i is outside
// [0, Len()).
func (b *Bounded[T]) At(i int) T { return b.items[i] }

// Full reports whether another insertion would exceed the maximum.
func (b *Bounded[T]) Full() bool {
	return b.max > 0 && len(b.items) >= b.max
}

// Remaining returns how many insertions are left before hitting the limit.
func (b *Bounded[T]) Remaining() int {
	if b.max == 0 {
		return -1 // unlimited
	}

	return b.max - len(b.items)
}

// Contains reports whether v is already stored.
func (b *Bounded[T]) Contains(v T) bool {
	for _, item := range b.items {
		if item == v {
			return true
		}
	}

	return false
}

// CanAdd checks whether Add(v) would succeed without mutating the collection.
// The duplicate check runs before the capacity check.
func (b *Bounded[T]) CanAdd(v T) error {
	if b.Contains(v) {
		return ErrDuplicate
	}

	if b.Full() {
		return ErrCapacityExceeded
	}

	return nil
}

// Add appends v. It returns ErrDuplicate or ErrCapacityExceeded and leaves
// the collection unchanged when v cannot be inserted.
func (b *Bounded[T]) Add(v T) error {
	if err := b.CanAdd(v); err != nil {
		return err
	}

	b.items = append(b.items, v)

	return nil
}

// Remove deletes v preserving the order of the remaining items. It reports
// whether v was present.
func (b *Bounded[T]) Remove(v T) bool {
	for i, item := range b.items {
		if item == v {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return true
		}
	}

	return false
}

// Items returns a snapshot of the stored items safe for caller mutation.
func (b *Bounded[T]) Items() []T {
	out := make([]T, len(b.items))
	copy(out, b.items)

	return out
}
