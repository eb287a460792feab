// Package delay provides fixed-depth delay lines used by the skew, deskew and
// registered-read paths of the accelerator.
package delay

// Line delays values by a fixed number of cycles. A value shifted in at cycle
// t is returned by Out at cycle t+Depth(). A zero-depth line behaves as a
// wire: Out returns the value that is entering in the same cycle.
type Line[T any] struct {
	slots []T
	head  int
}

// New creates a delay line with the given depth.
func New[T any](depth int) *Line[T] {
	if depth < 0 {
		panic("delay line depth must not be negative")
	}

	return &Line[T]{slots: make([]T, depth)}
}

// Depth returns the number of cycles a value spends in the line.
func (l *Line[T]) Depth() int {
	return len(l.slots)
}

// Out returns the value that leaves the line in the current cycle, given the
// value entering it. The line is not modified.
func (l *Line[T]) Out(in T) T {
	if len(l.slots) == 0 {
		return in
	}

	return l.slots[l.head]
}

// Shift advances the line by one cycle, inserting in.
func (l *Line[T]) Shift(in T) {
	if len(l.slots) == 0 {
		return
	}

	l.slots[l.head] = in
	l.head = (l.head + 1) % len(l.slots)
}

// Any reports whether any value currently held by the line satisfies pred.
func (l *Line[T]) Any(pred func(T) bool) bool {
	for _, v := range l.slots {
		if pred(v) {
			return true
		}
	}

	return false
}

// Values returns the held values, oldest first.
func (l *Line[T]) Values() []T {
	out := make([]T, 0, len(l.slots))
	for i := 0; i < len(l.slots); i++ {
		out = append(out, l.slots[(l.head+i)%len(l.slots)])
	}

	return out
}

// Reset clears the line to zero values.
func (l *Line[T]) Reset() {
	var zero T
	for i := range l.slots {
		l.slots[i] = zero
	}
	l.head = 0
}
