package npu

// EventKind identifies a device event.
type EventKind int

// Device events.
const (
	EventRowIn EventKind = iota
	EventRowOut
	EventReadBurstDone
	EventWriteBurstDone
	EventDone
	EventReset
)

func (k EventKind) String() string {
	switch k {
	case EventRowIn:
		return "RowIn"
	case EventRowOut:
		return "RowOut"
	case EventReadBurstDone:
		return "ReadBurstDone"
	case EventWriteBurstDone:
		return "WriteBurstDone"
	case EventDone:
		return "Done"
	case EventReset:
		return "Reset"
	default:
		return "Unknown"
	}
}

// Event is something observable that happened in a cycle.
type Event struct {
	Kind  EventKind
	Cycle uint64
	Row   int
	Data  []int32
}
