// Package pe models the multiply-accumulate processing element of the
// systolic array.
//
// Two datapaths are provided. The registered cell copies its inputs to its
// output registers every cycle and treats valid as metadata. The handshake
// cell only fires when both its operand and accumulator channels present
// valid data and there is room downstream, and it stages shifted-in weights
// until an array-wide latch strobe activates them.
package pe

import "fmt"

// Inputs are the signals a cell samples in one cycle.
type Inputs struct {
	X      int8
	XValid bool
	Y      int32
	YValid bool

	// Load shifts X into the weight chain instead of computing.
	Load bool

	// Latch moves the staged weight into the active weight register.
	Latch bool

	// XOutReady and YOutReady report that the downstream neighbors consume
	// the current output registers in this cycle.
	XOutReady bool
	YOutReady bool
}

// Outputs are the output registers of a cell.
type Outputs struct {
	X      int8
	XValid bool
	Y      int32
	YValid bool
}

// A Cell is one processing element.
type Cell interface {
	// Accepts reports whether the cell takes the given inputs this cycle.
	Accepts(in Inputs) bool

	// Step advances the cell by one cycle and returns the new outputs.
	Step(in Inputs) Outputs

	// Outputs returns the current output registers.
	Outputs() Outputs

	// Weight returns the active weight.
	Weight() int8

	// Forward returns the weight the cell shifts to its right neighbor on
	// the next load cycle. It only changes on load cycles.
	Forward() int8

	Reset()
}

// Kind selects a datapath.
type Kind int

// Datapath kinds.
const (
	Registered Kind = iota
	Handshake
)

func (k Kind) String() string {
	switch k {
	case Registered:
		return "registered"
	case Handshake:
		return "handshake"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind converts a datapath name into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "", "registered":
		return Registered, nil
	case "handshake":
		return Handshake, nil
	}

	return 0, fmt.Errorf("unknown datapath %q", s)
}

// New creates a cell of the given kind.
func New(k Kind) Cell {
	switch k {
	case Registered:
		return &registered{}
	case Handshake:
		return &handshake{}
	default:
		panic(fmt.Sprintf("unknown cell kind %d", int(k)))
	}
}

// MAC returns y + x*w in two's complement arithmetic without saturation.
func MAC(y int32, x, w int8) int32 {
	return y + int32(x)*int32(w)
}

type registered struct {
	weight int8
	out    Outputs
}

func (p *registered) Accepts(Inputs) bool {
	return true
}

func (p *registered) Step(in Inputs) Outputs {
	if in.Load {
		p.weight = in.X
		p.out = Outputs{X: in.X, XValid: in.XValid, Y: in.Y, YValid: in.XValid}

		return p.out
	}

	p.out = Outputs{
		X:      in.X,
		XValid: in.XValid,
		Y:      MAC(in.Y, in.X, p.weight),
		YValid: in.XValid,
	}

	return p.out
}

func (p *registered) Outputs() Outputs {
	return p.out
}

func (p *registered) Weight() int8 {
	return p.weight
}

func (p *registered) Forward() int8 {
	return p.weight
}

func (p *registered) Reset() {
	*p = registered{}
}

type handshake struct {
	weight  int8
	pending int8
	out     Outputs
}

func (p *handshake) space(in Inputs) bool {
	return (!p.out.XValid || in.XOutReady) && (!p.out.YValid || in.YOutReady)
}

func (p *handshake) Accepts(in Inputs) bool {
	if in.Load {
		return true
	}

	return in.XValid && in.YValid && p.space(in)
}

func (p *handshake) Step(in Inputs) Outputs {
	fire := !in.Load && p.Accepts(in)
	sum := MAC(in.Y, in.X, p.weight)

	if in.Latch {
		p.weight = p.pending
	}

	if in.XOutReady {
		p.out.XValid = false
	}

	if in.YOutReady {
		p.out.YValid = false
	}

	switch {
	case in.Load:
		p.pending = in.X
		p.out.X = in.X
	case fire:
		p.out = Outputs{X: in.X, XValid: true, Y: sum, YValid: true}
	}

	return p.out
}

func (p *handshake) Outputs() Outputs {
	return p.out
}

func (p *handshake) Weight() int8 {
	return p.weight
}

func (p *handshake) Forward() int8 {
	return p.pending
}

// Pending returns the staged weight of a handshake cell.
func Pending(c Cell) (int8, bool) {
	h, ok := c.(*handshake)
	if !ok {
		return 0, false
	}

	return h.pending, true
}

func (p *handshake) Reset() {
	*p = handshake{}
}
