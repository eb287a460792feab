// Package dma implements the burst read and write masters and the elastic
// FIFO that decouples them from the sequencer.
package dma

// ReadCmd is the request a read master drives toward memory.
type ReadCmd struct {
	Valid      bool
	Address    uint32
	BurstCount int
}

// ReadResp is what the memory drives back to a read master.
type ReadResp struct {
	WaitRequest bool
	DataValid   bool
	Data        uint32
}

// WriteCmd is one write beat. Address and BurstCount are meaningful on the
// first beat of a burst.
type WriteCmd struct {
	Valid      bool
	Address    uint32
	BurstCount int
	Data       uint32
}

// WriteResp is what the memory drives back to a write master.
type WriteResp struct {
	WaitRequest bool
}

// Descriptor describes one transfer direction.
type Descriptor struct {
	Address   uint32
	Length    int
	BurstSize int
}

// State is the state of a burst master.
type State int

// Burst master states.
const (
	StateIdle State = iota
	StateRequest
	StateBurst
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRequest:
		return "REQUEST"
	case StateBurst:
		return "BURST"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}
