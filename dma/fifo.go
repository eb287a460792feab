package dma

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
)

// FIFO is the elastic word buffer. Its flags are sampled at the start of a
// cycle, and a cycle may pop and push at the same time.
type FIFO struct {
	buf sim.Buffer
}

// NewFIFO creates a FIFO that holds depth words.
func NewFIFO(name string, depth int) *FIFO {
	if depth <= 0 {
		panic(fmt.Sprintf("fifo depth must be positive, got %d", depth))
	}

	return &FIFO{buf: sim.NewBuffer(name, depth)}
}

// Capacity returns the depth of the FIFO.
func (f *FIFO) Capacity() int {
	return f.buf.Capacity()
}

// Size returns the number of words held.
func (f *FIFO) Size() int {
	return f.buf.Size()
}

// Free returns the number of empty slots.
func (f *FIFO) Free() int {
	return f.buf.Capacity() - f.buf.Size()
}

// Empty reports whether the FIFO holds no words.
func (f *FIFO) Empty() bool {
	return f.buf.Size() == 0
}

// Full reports whether the FIFO has no empty slot.
func (f *FIFO) Full() bool {
	return !f.buf.CanPush()
}

// Head returns the oldest word.
func (f *FIFO) Head() (uint32, bool) {
	item := f.buf.Peek()
	if item == nil {
		return 0, false
	}

	return item.(uint32), true
}

// Commit applies one cycle of traffic. The pop happens before the push.
func (f *FIFO) Commit(pop, push bool, data uint32) {
	if pop {
		if f.buf.Pop() == nil {
			panic("fifo underflow")
		}
	}

	if push {
		if !f.buf.CanPush() {
			panic("fifo overflow")
		}

		f.buf.Push(data)
	}
}

// Reset drops every word.
func (f *FIFO) Reset() {
	f.buf.Clear()
}
