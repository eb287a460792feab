package systolic

import (
	"github.com/sarchlab/npusim/delay"
	"github.com/sarchlab/npusim/pe"
)

// Input is the row vector presented to the core in one cycle.
type Input struct {
	X     []int8
	Valid bool
	Load  bool
	Latch bool

	// Seeds are the accumulator values entering row 0. Nil means zero.
	Seeds []int32
}

// Output is the deskewed result row visible in one cycle.
type Output struct {
	Y     []int32
	Valid bool
}

// Core is the array together with its skew and deskew networks. From the
// outside it is a synchronous pipeline that takes one row vector per cycle
// and produces one result row per cycle.
type Core struct {
	n      int
	skew   []*delay.Line[Lane]
	array  *Array
	deskew []*delay.Line[Sum]

	lanes  []Lane
	bottom []Sum
}

// NewCore creates a core with an n×n array of the given datapath.
func NewCore(n int, kind pe.Kind) *Core {
	c := &Core{
		n:      n,
		array:  NewArray(n, kind),
		skew:   make([]*delay.Line[Lane], n),
		deskew: make([]*delay.Line[Sum], n),
		lanes:  make([]Lane, n),
		bottom: make([]Sum, n),
	}

	for i := 0; i < n; i++ {
		c.skew[i] = delay.New[Lane](i)
		c.deskew[i] = delay.New[Sum](n - 1 - i)
	}

	return c
}

// Size returns N.
func (c *Core) Size() int {
	return c.n
}

// Array returns the wrapped array.
func (c *Core) Array() *Array {
	return c.array
}

// Latency is the number of cycles between presenting a row and observing its
// result through Eval. It is 2N-1 rather than (N-1)+N+(N-1): the i cycles
// row i's operand waits in the skew are the same i cycles the partial sum
// needs to reach row i, so skew and traversal together take N cycles. Column
// j leaves the array j cycles after column 0 and its deskew of N-1-j adds
// the remaining N-1.
func (c *Core) Latency() int {
	return 2*c.n - 1
}

// Eval returns the result row leaving the deskew network in this cycle. It
// does not modify the core.
func (c *Core) Eval() Output {
	out := Output{Y: make([]int32, c.n), Valid: true}

	for j := 0; j < c.n; j++ {
		s := c.deskew[j].Out(c.array.Result(j))
		out.Y[j] = s.Y
		out.Valid = out.Valid && s.Valid
	}

	return out
}

// Tick advances the core by one cycle with the given input row.
func (c *Core) Tick(in Input) {
	for j := 0; j < c.n; j++ {
		c.bottom[j] = c.array.Result(j)
	}

	for i := 0; i < c.n; i++ {
		lane := Lane{Valid: in.Valid, Load: in.Load}
		if in.X != nil {
			lane.X = in.X[i]
		}

		c.lanes[i] = c.skew[i].Out(lane)
		c.skew[i].Shift(lane)
	}

	c.array.Tick(c.lanes, in.Seeds, in.Latch)

	for j := 0; j < c.n; j++ {
		c.deskew[j].Shift(c.bottom[j])
	}
}

// Idle reports whether no valid operand, weight shift or result is in flight.
func (c *Core) Idle() bool {
	for _, l := range c.skew {
		if l.Any(func(v Lane) bool { return v.Valid || v.Load }) {
			return false
		}
	}

	if c.array.Busy() {
		return false
	}

	for _, l := range c.deskew {
		if l.Any(func(v Sum) bool { return v.Valid }) {
			return false
		}
	}

	return true
}

// Weights returns the active weight matrix.
func (c *Core) Weights() [][]int8 {
	return c.array.Weights()
}

// Reset clears all delay lines and cells.
func (c *Core) Reset() {
	for _, l := range c.skew {
		l.Reset()
	}

	for _, l := range c.deskew {
		l.Reset()
	}

	c.array.Reset()
}
