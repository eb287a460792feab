// Package sequencer streams matrix rows from the elastic buffer into the
// systolic core and hands the result rows to the write path.
package sequencer

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/npusim/systolic"
)

// Mode selects what the streamed rows mean.
type Mode int

// Sequencer modes.
const (
	LoadWeights Mode = iota
	Execute
)

func (m Mode) String() string {
	if m == Execute {
		return "execute"
	}

	return "load"
}

// Phase is the state of the sequencer FSM.
type Phase int

// Sequencer phases.
const (
	Idle Phase = iota
	LoadWeight
	Executing
	Streaming
	Draining
	Done
)

var phaseNames = [...]string{
	"IDLE", "LOAD_WEIGHT", "EXECUTE", "STREAMING", "DRAINING", "DONE",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}

	return fmt.Sprintf("Phase(%d)", int(p))
}

// RowDescriptor describes the rows of the current run.
type RowDescriptor struct {
	Index    int
	BeatsIn  int
	BeatsOut int
	Mode     Mode
}

// Inputs are the signals the sequencer samples in one cycle.
type Inputs struct {
	Start     bool
	Mode      Mode
	TotalRows int

	// InValid and InData describe the head word of the input stream.
	InValid bool
	InData  uint32

	// Core is the result row leaving the core in this cycle.
	Core     systolic.Output
	CoreIdle bool
}

// Outputs are the decisions the sequencer makes in one cycle.
type Outputs struct {
	// InReady pops the head word of the input stream.
	InReady bool

	// Core is the row driven into the core.
	Core systolic.Input

	// Accepted is set when a complete row enters the core.
	Accepted bool

	// Captured is set when a result row is stored.
	Captured bool

	// OutValid and OutData describe the head word of the result stream.
	OutValid bool
	OutData  uint32

	// OutAvailable is the number of result words ready to be written.
	OutAvailable int

	Busy bool
	Done bool

	// Progress is set when the cycle changes any state.
	Progress bool
}

// Sequencer is the row sequencer FSM.
type Sequencer struct {
	n        int
	beatsIn  int
	capacity int

	phase    Phase
	mode     Mode
	target   int
	rowsIn   int
	rowsOut  int
	inflight int

	row     RowDescriptor
	beats   []uint32
	beatIdx int

	results sim.Buffer
	outBeat int
}

// New creates a sequencer for an n-wide core that can hold outputRows result
// rows waiting for the write path.
func New(name string, n, outputRows int) *Sequencer {
	if n <= 0 || outputRows <= 0 {
		panic("sequencer needs a positive array size and output buffer")
	}

	beatsIn := (n + 3) / 4

	return &Sequencer{
		n:        n,
		beatsIn:  beatsIn,
		capacity: outputRows,
		beats:    make([]uint32, beatsIn),
		results:  sim.NewBuffer(name+".ResultBuf", outputRows),
	}
}

// BeatsIn returns the number of input words per row.
func (s *Sequencer) BeatsIn() int {
	return s.beatsIn
}

// BeatsOut returns the number of output words per row.
func (s *Sequencer) BeatsOut() int {
	return s.n
}

// Phase returns the current phase.
func (s *Sequencer) Phase() Phase {
	return s.phase
}

// Mode returns the mode of the current or last run.
func (s *Sequencer) Mode() Mode {
	return s.mode
}

// Busy reports whether a run is in progress.
func (s *Sequencer) Busy() bool {
	return s.phase != Idle && s.phase != Done
}

// IsDone reports whether the last run has completed.
func (s *Sequencer) IsDone() bool {
	return s.phase == Done
}

// RowsIn returns the number of rows accepted into the core in this run.
func (s *Sequencer) RowsIn() int {
	return s.rowsIn
}

// RowsOut returns the number of result rows fully handed to the write path.
func (s *Sequencer) RowsOut() int {
	return s.rowsOut
}

// InFlight returns the number of rows inside the core.
func (s *Sequencer) InFlight() int {
	return s.inflight
}

// Pending returns the number of result rows waiting to be written.
func (s *Sequencer) Pending() int {
	return s.results.Size()
}

// Row returns the descriptor of the row being assembled.
func (s *Sequencer) Row() RowDescriptor {
	return s.row
}

// Eval computes the outputs for the cycle without changing state.
func (s *Sequencer) Eval(in Inputs) Outputs {
	out := Outputs{
		Busy: s.Busy(),
		Done: s.phase == Done,
	}

	if avail := s.results.Size()*s.n - s.outBeat; avail > 0 {
		out.OutValid = true
		out.OutData = s.headWord()
		out.OutAvailable = avail
	}

	switch s.phase {
	case Idle, Done:
		out.Progress = in.Start
	case LoadWeight, Executing:
		out.Progress = true
	case Streaming:
		s.evalStreaming(in, &out)
	}

	if s.mode == Execute && in.Core.Valid &&
		(s.phase == Streaming || s.phase == Draining) {
		out.Captured = true
		out.Progress = true
	}

	if s.phase == Draining && s.drained(in) {
		out.Progress = true
	}

	return out
}

func (s *Sequencer) evalStreaming(in Inputs, out *Outputs) {
	rowReady := s.beatIdx == s.beatsIn
	credit := s.mode == LoadWeights ||
		s.inflight+s.results.Size() < s.capacity

	rowsIn := s.rowsIn
	beatIdx := s.beatIdx

	if rowReady && credit {
		out.Accepted = true
		out.Core = systolic.Input{
			X:     s.lanes(),
			Valid: s.mode == Execute,
			Load:  s.mode == LoadWeights,
		}
		rowsIn++
		beatIdx = 0
	}

	if in.InValid && beatIdx < s.beatsIn && rowsIn < s.target {
		out.InReady = true
	}

	out.Progress = out.Progress || out.Accepted || out.InReady ||
		rowsIn == s.target
}

func (s *Sequencer) drained(in Inputs) bool {
	if s.mode == LoadWeights {
		return in.CoreIdle
	}

	return s.rowsOut == s.target && s.inflight == 0
}

// Commit advances the sequencer by one cycle. out must come from Eval with
// the same inputs. popped reports that the write path consumed the head
// result word.
func (s *Sequencer) Commit(in Inputs, out Outputs, popped bool) {
	if popped {
		s.popResultWord()
	}

	if out.Captured {
		s.capture(in.Core)
	}

	switch s.phase {
	case Idle, Done:
		if in.Start {
			s.begin(in)
		}
	case LoadWeight, Executing:
		s.phase = Streaming
	case Streaming:
		s.commitStreaming(in, out)
	case Draining:
		if s.drained(in) {
			s.phase = Done
		}
	}
}

func (s *Sequencer) begin(in Inputs) {
	s.mode = in.Mode
	s.rowsIn = 0
	s.rowsOut = 0
	s.inflight = 0
	s.beatIdx = 0
	s.outBeat = 0
	s.results.Clear()

	if s.mode == LoadWeights {
		s.target = s.n
		s.phase = LoadWeight
	} else {
		s.target = in.TotalRows
		s.phase = Executing
	}

	s.row = RowDescriptor{BeatsIn: s.beatsIn, BeatsOut: s.n, Mode: s.mode}
}

func (s *Sequencer) commitStreaming(in Inputs, out Outputs) {
	if out.Accepted {
		s.rowsIn++
		s.beatIdx = 0
		s.row.Index = s.rowsIn
		if s.mode == Execute {
			s.inflight++
		}
	}

	if out.InReady {
		s.beats[s.beatIdx] = in.InData
		s.beatIdx++
	}

	if s.rowsIn == s.target {
		s.phase = Draining
	}
}

func (s *Sequencer) capture(row systolic.Output) {
	if !s.results.CanPush() {
		panic("sequencer result buffer overflow")
	}

	y := make([]int32, len(row.Y))
	copy(y, row.Y)
	s.results.Push(y)
	s.inflight--
}

func (s *Sequencer) headWord() uint32 {
	row := s.results.Peek().([]int32)
	return uint32(row[s.outBeat])
}

func (s *Sequencer) popResultWord() {
	if s.results.Size() == 0 {
		panic("sequencer result buffer underflow")
	}

	s.outBeat++
	if s.outBeat == s.n {
		s.outBeat = 0
		s.results.Pop()
		s.rowsOut++
	}
}

func (s *Sequencer) lanes() []int8 {
	x := make([]int8, s.n)
	for k := range x {
		x[k] = int8(s.beats[k/4] >> (8 * (k % 4)))
	}

	return x
}

// Reset returns the sequencer to IDLE and abandons every row in flight.
func (s *Sequencer) Reset() {
	s.phase = Idle
	s.mode = LoadWeights
	s.target = 0
	s.rowsIn = 0
	s.rowsOut = 0
	s.inflight = 0
	s.beatIdx = 0
	s.outBeat = 0
	s.row = RowDescriptor{}
	s.results.Clear()

	for i := range s.beats {
		s.beats[i] = 0
	}
}
