package csr

import (
	"github.com/sarchlab/npusim/delay"
	"github.com/sarchlab/npusim/dma"
	"github.com/sarchlab/npusim/pe"
	"github.com/sarchlab/npusim/sequencer"
)

// StatusSource exposes the live status the register block mirrors.
type StatusSource interface {
	SequencerBusy() bool
	SequencerDone() bool
	ReadDone() bool
	WriteDone() bool
	DMABusy() bool
	DebugOut() int32
}

// Bus is the register bus request presented in one cycle.
type Bus struct {
	Read    bool
	Write   bool
	Address uint32
	Data    uint32
}

// Response is the register bus response in one cycle.
type Response struct {
	ReadDataValid bool
	ReadData      uint32
}

// Controls are the configuration levels and one-cycle strobes the block
// drives into the rest of the device.
type Controls struct {
	Start     bool
	Mode      sequencer.Mode
	Loopback  bool
	TotalRows int

	RdStart bool
	WrStart bool
	Read    dma.Descriptor
	Write   dma.Descriptor

	Latch bool

	Debug pe.Inputs
}

// Eval is the result of evaluating the block for one cycle.
type Eval struct {
	Controls Controls
	Response Response

	// Sampled is the read data captured for a read request in this cycle.
	Sampled uint32
}

// Block is the register block.
type Block struct {
	status    StatusSource
	burstSize int
	regs      [NumRegisters]uint32
	strobes   [NumRegisters]uint32
	readLine  *delay.Line[Response]
	inflight  int
}

// New creates a register block. Reads complete readLatency cycles after the
// request. burstSize is the burst length used by both DMA directions.
func New(status StatusSource, readLatency, burstSize int) *Block {
	if readLatency < 1 {
		panic("register read latency must be at least one cycle")
	}

	b := &Block{
		status:    status,
		burstSize: burstSize,
		readLine:  delay.New[Response](readLatency),
	}
	b.Reset()

	return b
}

// Peek returns the value a read of addr would return now.
func (b *Block) Peek(addr uint32) uint32 {
	e, ok := Lookup(addr)
	if !ok {
		return 0
	}

	if e.Access == ReadOnly {
		return b.live(addr)
	}

	return b.regs[addr] & e.Mask
}

// Reg returns the stored value of a read-write register.
func (b *Block) Reg(addr uint32) uint32 {
	if addr >= NumRegisters {
		return 0
	}

	return b.regs[addr]
}

func (b *Block) live(addr uint32) uint32 {
	s := b.status

	switch addr {
	case GStat:
		return bit(s.SequencerBusy(), StatBusy) |
			bit(s.SequencerDone(), StatDone) |
			bit(s.ReadDone(), StatRdDone) |
			bit(s.WriteDone(), StatWrDone)
	case DMAStat:
		return bit(s.ReadDone(), StatRdDone) |
			bit(s.WriteDone(), StatWrDone) |
			bit(s.DMABusy(), DMABusy)
	case PEYOut:
		return uint32(s.DebugOut())
	}

	return 0
}

func bit(set bool, mask uint32) uint32 {
	if set {
		return mask
	}

	return 0
}

// Eval computes the controls and response for one cycle without changing
// state.
func (b *Block) Eval(bus Bus) Eval {
	ev := Eval{
		Controls: b.controls(),
		Response: b.readLine.Out(Response{}),
	}

	if bus.Read {
		ev.Sampled = b.Peek(bus.Address)
	}

	return ev
}

func (b *Block) controls() Controls {
	ctrl := b.regs[Ctrl]
	wrCtrl := b.strobes[DMAWrCtrl]
	peCtrl := b.regs[PECtrl]

	mode := sequencer.LoadWeights
	if ctrl&CtrlMode != 0 {
		mode = sequencer.Execute
	}

	return Controls{
		Start:     b.strobes[Ctrl]&CtrlStart != 0,
		Mode:      mode,
		Loopback:  ctrl&CtrlLoopback != 0,
		TotalRows: int(b.regs[SeqRows]),
		RdStart:   wrCtrl&RdStart != 0,
		WrStart:   wrCtrl&WrStart != 0,
		Read: dma.Descriptor{
			Address:   b.regs[DMARdAddr],
			Length:    int(b.regs[DMARdLen]),
			BurstSize: b.burstSize,
		},
		Write: dma.Descriptor{
			Address:   b.regs[DMAWrAddr],
			Length:    int(b.regs[DMAWrCtrl] & WrLenMask),
			BurstSize: b.burstSize,
		},
		Latch: b.strobes[DMAStat]&LatchStrobe != 0,
		Debug: pe.Inputs{
			X:      int8(b.regs[PEXIn]),
			XValid: peCtrl&PEValid != 0,
			Y:      int32(b.regs[PEYIn]),
			YValid: peCtrl&PEValid != 0,
			Load:   peCtrl&PELoad != 0,
		},
	}
}

// Commit clocks the block. ev must come from Eval with the same bus.
func (b *Block) Commit(bus Bus, ev Eval) {
	for i := range b.strobes {
		b.strobes[i] = 0
	}

	if ev.Response.ReadDataValid {
		b.inflight--
	}

	rsp := Response{}
	if bus.Read {
		rsp = Response{ReadDataValid: true, ReadData: ev.Sampled}
		b.inflight++
	}
	b.readLine.Shift(rsp)

	if bus.Write {
		b.write(bus.Address, bus.Data)
	}
}

func (b *Block) write(addr, data uint32) {
	e, ok := Lookup(addr)
	if !ok {
		return
	}

	b.strobes[addr] = data & e.Strobe

	if e.Access == ReadWrite {
		b.regs[addr] = data & e.Mask
	}
}

// Strobed reports whether a strobe written to addr is visible in the
// current cycle.
func (b *Block) Strobed(addr, mask uint32) bool {
	if addr >= NumRegisters {
		return false
	}

	return b.strobes[addr]&mask != 0
}

// Pending reports whether a read response or a strobe is still to be
// delivered.
func (b *Block) Pending() bool {
	if b.inflight > 0 {
		return true
	}

	for _, s := range b.strobes {
		if s != 0 {
			return true
		}
	}

	return false
}

// Reset restores every register to its reset value and drops pending reads.
func (b *Block) Reset() {
	for i, e := range Map {
		b.regs[i] = e.Reset
		b.strobes[i] = 0
	}

	b.readLine.Reset()
	b.inflight = 0
}
