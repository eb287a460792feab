package api

import "fmt"

// TimeoutError reports a status poll that did not reach its expected value
// within its cycle budget. Misconfigured transfers surface this way.
type TimeoutError struct {
	Addr   uint32
	Mask   uint32
	Want   uint32
	Last   uint32
	Cycles int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf(
		"register %d did not reach 0x%08x under mask 0x%08x within %d cycles, last read 0x%08x",
		e.Addr, e.Want, e.Mask, e.Cycles, e.Last)
}
