// Package systolic wires processing elements into an N×N array and wraps the
// array with the input skew and output deskew delay lines.
package systolic

import (
	"fmt"

	"github.com/sarchlab/npusim/pe"
)

// Lane is the operand entering one array row in one cycle.
type Lane struct {
	X     int8
	Valid bool
	Load  bool
}

// Sum is a partial or finished column result.
type Sum struct {
	Y     int32
	Valid bool
}

// Array is an N×N grid of cells. Operands flow left to right, partial sums
// flow top to bottom.
type Array struct {
	n       int
	kind    pe.Kind
	cells   []pe.Cell
	outs    []pe.Outputs
	chain   []int8
	ins     []pe.Inputs
	accepts []bool
}

// NewArray creates an n×n array of cells of the given kind.
func NewArray(n int, kind pe.Kind) *Array {
	if n <= 0 {
		panic(fmt.Sprintf("array size must be positive, got %d", n))
	}

	a := &Array{
		n:       n,
		kind:    kind,
		cells:   make([]pe.Cell, n*n),
		outs:    make([]pe.Outputs, n*n),
		chain:   make([]int8, n*n),
		ins:     make([]pe.Inputs, n*n),
		accepts: make([]bool, n*n),
	}

	for i := range a.cells {
		a.cells[i] = pe.New(kind)
	}

	return a
}

// Size returns N.
func (a *Array) Size() int {
	return a.n
}

// Kind returns the datapath of the cells.
func (a *Array) Kind() pe.Kind {
	return a.kind
}

// Cell returns the cell at row i, column j.
func (a *Array) Cell(i, j int) pe.Cell {
	return a.cells[i*a.n+j]
}

// Result returns the registered output of the bottom cell of column j.
func (a *Array) Result(j int) Sum {
	o := a.cells[(a.n-1)*a.n+j].Outputs()
	return Sum{Y: o.Y, Valid: o.YValid}
}

// Tick advances every cell by one cycle. rows holds the operand entering each
// row at column 0 and seeds the accumulator entering each column at row 0.
// A nil seeds slice means all-zero seeds.
func (a *Array) Tick(rows []Lane, seeds []int32, latch bool) {
	n := a.n
	if len(rows) != n {
		panic(fmt.Sprintf("expected %d row lanes, got %d", n, len(rows)))
	}

	for k, c := range a.cells {
		a.outs[k] = c.Outputs()
		a.chain[k] = c.Forward()
	}

	// Readiness flows against the data, so cells are visited bottom-right
	// first.
	for i := n - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			k := i*n + j
			in := pe.Inputs{Load: rows[i].Load, Latch: latch}

			// Weights shift along the row only on load cycles, so idle
			// cycles between load beats leave the chain untouched.
			switch {
			case j == 0:
				in.X, in.XValid = rows[i].X, rows[i].Valid
			case rows[i].Load:
				in.X = a.chain[k-1]
			default:
				left := a.outs[k-1]
				in.X, in.XValid = left.X, left.XValid
			}

			if i == 0 {
				in.YValid = true
				if seeds != nil {
					in.Y = seeds[j]
				}
			} else {
				up := a.outs[k-n]
				in.Y, in.YValid = up.Y, up.YValid
			}

			in.XOutReady = j == n-1 || a.accepts[k+1]
			in.YOutReady = i == n-1 || a.accepts[k+n]

			a.ins[k] = in
			a.accepts[k] = a.cells[k].Accepts(in)
		}
	}

	for k, c := range a.cells {
		c.Step(a.ins[k])
	}
}

// Busy reports whether any cell holds a valid output.
func (a *Array) Busy() bool {
	for _, c := range a.cells {
		o := c.Outputs()
		if o.XValid || o.YValid {
			return true
		}
	}

	return false
}

// Weights returns the active weight matrix, indexed [row][column].
func (a *Array) Weights() [][]int8 {
	w := make([][]int8, a.n)
	for i := range w {
		w[i] = make([]int8, a.n)
		for j := range w[i] {
			w[i][j] = a.Cell(i, j).Weight()
		}
	}

	return w
}

// Reset clears every cell.
func (a *Array) Reset() {
	for _, c := range a.cells {
		c.Reset()
	}
}
