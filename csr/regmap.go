// Package csr implements the control and status register block through which
// the host programs and observes the accelerator.
package csr

// Register addresses, in words.
const (
	Ctrl      uint32 = 0
	GStat     uint32 = 1
	DMARdAddr uint32 = 2
	DMARdLen  uint32 = 3
	DMAWrAddr uint32 = 4
	DMAWrCtrl uint32 = 5
	SeqRows   uint32 = 6
	DMAStat   uint32 = 7
	PECtrl    uint32 = 8
	PEXIn     uint32 = 9
	PEYIn     uint32 = 10
	PEYOut    uint32 = 11

	NumRegisters = 12
)

// CTRL bits.
const (
	CtrlStart    uint32 = 1 << 0
	CtrlMode     uint32 = 1 << 1
	CtrlLoopback uint32 = 1 << 2
)

// G_STAT bits.
const (
	StatBusy   uint32 = 1 << 0
	StatDone   uint32 = 1 << 1
	StatRdDone uint32 = 1 << 16
	StatWrDone uint32 = 1 << 17
)

// DMA_WR_CTRL and DMA_STAT bits.
const (
	WrLenMask   uint32 = 0xffff
	RdStart     uint32 = 1 << 16
	WrStart     uint32 = 1 << 17
	DMABusy     uint32 = 1 << 31
	LatchStrobe uint32 = 1 << 0
)

// PE_CTRL bits.
const (
	PELoad  uint32 = 1 << 0
	PEValid uint32 = 1 << 1
)

// Access describes how a register behaves.
type Access int

// Register access kinds.
const (
	// ReadWrite registers store the written bits selected by Mask.
	ReadWrite Access = iota

	// ReadOnly registers mirror live status and ignore writes.
	ReadOnly
)

// Entry describes one register.
type Entry struct {
	Name   string
	Access Access
	Reset  uint32

	// Mask selects the stored bits. Bits outside it read as zero.
	Mask uint32

	// Strobe selects the write bits that generate a one-cycle pulse.
	Strobe uint32
}

// Map is the register map, indexed by word address.
var Map = [NumRegisters]Entry{
	Ctrl:      {Name: "CTRL", Mask: CtrlMode | CtrlLoopback, Strobe: CtrlStart},
	GStat:     {Name: "G_STAT", Access: ReadOnly},
	DMARdAddr: {Name: "DMA_RD_ADDR", Mask: 0xffffffff},
	DMARdLen:  {Name: "DMA_RD_LEN", Mask: 0xffffffff},
	DMAWrAddr: {Name: "DMA_WR_ADDR", Mask: 0xffffffff},
	DMAWrCtrl: {Name: "DMA_WR_CTRL", Mask: WrLenMask, Strobe: RdStart | WrStart},
	SeqRows:   {Name: "SEQ_ROWS", Mask: 0xffffffff},
	DMAStat:   {Name: "DMA_STAT", Access: ReadOnly, Strobe: LatchStrobe},
	PECtrl:    {Name: "PE_CTRL", Mask: PELoad | PEValid},
	PEXIn:     {Name: "PE_X_IN", Mask: 0xff},
	PEYIn:     {Name: "PE_Y_IN", Mask: 0xffffffff},
	PEYOut:    {Name: "PE_Y_OUT", Access: ReadOnly},
}

// Lookup returns the register at addr.
func Lookup(addr uint32) (Entry, bool) {
	if addr >= NumRegisters {
		return Entry{}, false
	}

	return Map[addr], true
}
