// Package npu assembles the accelerator: register block, sequencer, systolic
// core, DMA masters and elastic FIFO, all clocked together.
package npu

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/npusim/csr"
	"github.com/sarchlab/npusim/dma"
	"github.com/sarchlab/npusim/extmem"
	"github.com/sarchlab/npusim/pe"
	"github.com/sarchlab/npusim/sequencer"
	"github.com/sarchlab/npusim/stream"
	"github.com/sarchlab/npusim/systolic"
)

// Config holds the structural parameters of a device.
type Config struct {
	ArraySize    int
	Datapath     pe.Kind
	FIFODepth    int
	BurstSize    int
	OutputRows   int
	ReadLatency  int
	IngressDepth int
	EgressDepth  int
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		ArraySize:    8,
		Datapath:     pe.Registered,
		FIFODepth:    64,
		BurstSize:    16,
		OutputRows:   32,
		ReadLatency:  1,
		IngressDepth: 16,
		EgressDepth:  16,
	}
}

// Validate checks that the parameters describe a buildable device.
func (c Config) Validate() error {
	switch {
	case c.ArraySize <= 0:
		return fmt.Errorf("array size must be positive, got %d", c.ArraySize)
	case c.FIFODepth <= 0:
		return fmt.Errorf("fifo depth must be positive, got %d", c.FIFODepth)
	case c.BurstSize <= 0:
		return fmt.Errorf("burst size must be positive, got %d", c.BurstSize)
	case c.OutputRows <= 0:
		return fmt.Errorf("output rows must be positive, got %d", c.OutputRows)
	case c.ReadLatency < 1:
		return fmt.Errorf("read latency must be at least 1, got %d",
			c.ReadLatency)
	case c.IngressDepth <= 0 || c.EgressDepth <= 0:
		return fmt.Errorf("stream buffers must not be empty")
	case c.Datapath != pe.Registered && c.Datapath != pe.Handshake:
		return fmt.Errorf("unknown datapath %v", c.Datapath)
	}

	return nil
}

// Device is the cycle-stepped accelerator model. Every call to Tick
// evaluates all components from the current state and then commits all of
// them.
type Device struct {
	name   string
	cfg    Config
	cycle  uint64
	memory *extmem.Memory

	regs  *csr.Block
	seq   *sequencer.Sequencer
	core  *systolic.Core
	fifo  *dma.FIFO
	rd    *dma.ReadMaster
	wr    *dma.WriteMaster
	debug pe.Cell

	ingress       sim.Buffer
	egress        sim.Buffer
	deframer      stream.Deframer
	framer        *stream.Framer
	egressEnabled bool

	observer func(Event)
}

// NewDevice creates a device connected to memory.
func NewDevice(name string, cfg Config, memory *extmem.Memory) *Device {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}

	d := &Device{
		name:    name,
		cfg:     cfg,
		memory:  memory,
		seq:     sequencer.New(name+".Sequencer", cfg.ArraySize, cfg.OutputRows),
		core:    systolic.NewCore(cfg.ArraySize, cfg.Datapath),
		fifo:    dma.NewFIFO(name+".FIFO", cfg.FIFODepth),
		rd:      dma.NewReadMaster(),
		wr:      dma.NewWriteMaster(),
		debug:   pe.New(pe.Registered),
		ingress: sim.NewBuffer(name+".Ingress", cfg.IngressDepth),
		egress:  sim.NewBuffer(name+".Egress", cfg.EgressDepth),
		framer:  stream.NewFramer(cfg.ArraySize),
	}
	d.regs = csr.New(d, cfg.ReadLatency, cfg.BurstSize)

	return d
}

// Name returns the name of the device.
func (d *Device) Name() string {
	return d.name
}

// Config returns the structural parameters.
func (d *Device) Config() Config {
	return d.cfg
}

// Cycle returns the number of cycles since the device was created.
func (d *Device) Cycle() uint64 {
	return d.cycle
}

// Memory returns the external memory.
func (d *Device) Memory() *extmem.Memory {
	return d.memory
}

// Core returns the systolic core.
func (d *Device) Core() *systolic.Core {
	return d.core
}

// Sequencer returns the row sequencer.
func (d *Device) Sequencer() *sequencer.Sequencer {
	return d.seq
}

// Registers returns the register block.
func (d *Device) Registers() *csr.Block {
	return d.regs
}

// FIFO returns the elastic buffer.
func (d *Device) FIFO() *dma.FIFO {
	return d.fifo
}

// ReadMaster returns the read DMA master.
func (d *Device) ReadMaster() *dma.ReadMaster {
	return d.rd
}

// WriteMaster returns the write DMA master.
func (d *Device) WriteMaster() *dma.WriteMaster {
	return d.wr
}

// SetObserver registers a function that receives device events.
func (d *Device) SetObserver(f func(Event)) {
	d.observer = f
}

// A start strobe visible in the current cycle counts as busy, so a status
// read issued right after a start never reports the previous completion.

// SequencerBusy reports whether the sequencer runs.
func (d *Device) SequencerBusy() bool {
	return d.seq.Busy() || d.regs.Strobed(csr.Ctrl, csr.CtrlStart)
}

// SequencerDone reports whether the last sequencer run completed.
func (d *Device) SequencerDone() bool {
	return d.seq.IsDone() && !d.regs.Strobed(csr.Ctrl, csr.CtrlStart)
}

// ReadDone reports whether the read master has nothing outstanding.
func (d *Device) ReadDone() bool {
	return d.rd.Done() && !d.regs.Strobed(csr.DMAWrCtrl, csr.RdStart)
}

// WriteDone reports whether the write master has nothing outstanding.
func (d *Device) WriteDone() bool {
	return d.wr.Done() && !d.regs.Strobed(csr.DMAWrCtrl, csr.WrStart)
}

// DMABusy reports whether either master transfers data.
func (d *Device) DMABusy() bool {
	return d.rd.Busy() || d.wr.Busy() ||
		d.regs.Strobed(csr.DMAWrCtrl, csr.RdStart|csr.WrStart)
}

// DebugOut returns the accumulator output of the debug element.
func (d *Device) DebugOut() int32 {
	return d.debug.Outputs().Y
}

// PushIngress offers one stream beat. It returns false when the ingress
// buffer is full.
func (d *Device) PushIngress(b stream.Beat) bool {
	if !d.ingress.CanPush() {
		return false
	}

	d.ingress.Push(b)

	return true
}

// EnableEgress makes the device emit write-path words as framed beats while
// the write master is idle. Frames are one result row long.
func (d *Device) EnableEgress(enabled bool) {
	d.egressEnabled = enabled
	d.framer.Reset()
}

// PopEgress takes one beat from the egress buffer.
func (d *Device) PopEgress() (stream.Beat, bool) {
	item := d.egress.Pop()
	if item == nil {
		return stream.Beat{}, false
	}

	return item.(stream.Beat), true
}

// IngressViolations returns the number of framing errors seen on ingress.
func (d *Device) IngressViolations() int {
	return d.deframer.Violations()
}

// Idle reports whether nothing is running or in flight.
func (d *Device) Idle() bool {
	return !d.seq.Busy() && !d.DMABusy() && d.core.Idle() &&
		!d.regs.Pending() && !d.memory.Busy()
}

// Tick advances the device by one cycle with the register bus request. It
// returns the register read response of this cycle, whether any state
// changed and whether a master was left waiting on memory.
func (d *Device) Tick(bus csr.Bus) (rsp csr.Response, changed, waiting bool) {
	ev := d.regs.Eval(bus)
	ctl := ev.Controls

	coreOut := d.core.Eval()
	head, headValid := d.fifo.Head()

	seqIn := sequencer.Inputs{
		Start:     ctl.Start,
		Mode:      ctl.Mode,
		TotalRows: ctl.TotalRows,
		InValid:   headValid && !ctl.Loopback,
		InData:    head,
		Core:      coreOut,
		CoreIdle:  d.core.Idle(),
	}
	seqOut := d.seq.Eval(seqIn)

	available, srcHead := d.writeSource(ctl.Loopback, seqOut)
	wrRsp := d.memory.EvalWrite(d.wr.Request(available, srcHead))
	wrSig := d.wr.Eval(available, srcHead, wrRsp)

	rdRsp := d.memory.EvalRead(d.rd.Request(d.fifo.Free()))
	rdSig := d.rd.Eval(d.fifo.Free(), rdRsp)

	ingressBeat, ingressPush := d.evalIngress(rdSig)
	egressPop := d.evalEgress(available)
	srcPop := wrSig.Pop || egressPop

	fifoPop := seqOut.InReady || (ctl.Loopback && srcPop)
	fifoPush := rdSig.Push || ingressPush
	fifoData := rdSig.PushData
	if ingressPush {
		fifoData = ingressBeat.Data
	}

	wasDone := d.seq.IsDone()

	d.regs.Commit(bus, ev)
	d.memory.Commit(rdSig.Cmd, wrSig.Cmd)
	d.fifo.Commit(fifoPop, fifoPush, fifoData)
	d.seq.Commit(seqIn, seqOut, !ctl.Loopback && srcPop)

	coreIn := seqOut.Core
	coreIn.Latch = ctl.Latch
	d.core.Tick(coreIn)

	rdBurst := d.rd.Commit(ctl.RdStart, ctl.Read, rdSig)
	wrBurst := d.wr.Commit(ctl.WrStart, ctl.Write, wrSig)
	d.debug.Step(ctl.Debug)

	if ingressPush {
		d.ingress.Pop()
		if err := d.deframer.Accept(ingressBeat); err != nil {
			Trace("Ingress", "Behavior", "FramingError",
				"Device", d.name, "Cycle", d.cycle, "Error", err.Error())
		}
	}

	if egressPop {
		d.egress.Push(d.framer.Next(srcHead))
	}

	d.traceWrite(bus)
	d.emitEvents(seqOut, coreOut, rdBurst, wrBurst, wasDone)

	d.cycle++

	changed = bus.Read || bus.Write || ev.Response.ReadDataValid ||
		d.regs.Pending() || seqOut.Progress || rdSig.Accepted ||
		rdSig.Push || wrSig.Accepted || !d.core.Idle() ||
		d.memory.Busy() || ingressPush || egressPop ||
		ctl.Start || ctl.RdStart || ctl.WrStart || ctl.Latch
	waiting = rdSig.Cmd.Valid || wrSig.Cmd.Valid

	return ev.Response, changed, waiting
}

func (d *Device) writeSource(
	loopback bool,
	seqOut sequencer.Outputs,
) (available int, head uint32) {
	if loopback {
		head, _ = d.fifo.Head()
		return d.fifo.Size(), head
	}

	return seqOut.OutAvailable, seqOut.OutData
}

func (d *Device) evalIngress(rdSig dma.ReadSignals) (stream.Beat, bool) {
	if d.rd.Busy() || rdSig.Push || d.fifo.Full() {
		return stream.Beat{}, false
	}

	item := d.ingress.Peek()
	if item == nil {
		return stream.Beat{}, false
	}

	return item.(stream.Beat), true
}

func (d *Device) evalEgress(available int) bool {
	return d.egressEnabled && !d.wr.Busy() && available > 0 &&
		d.egress.CanPush()
}

func (d *Device) traceWrite(bus csr.Bus) {
	if !bus.Write {
		return
	}

	name := "UNMAPPED"
	if e, ok := csr.Lookup(bus.Address); ok {
		name = e.Name
	}

	Trace("Register",
		"Behavior", "Write",
		"Device", d.name,
		"Cycle", d.cycle,
		"Register", name,
		"Data", bus.Data,
	)
}

func (d *Device) emitEvents(
	seqOut sequencer.Outputs,
	coreOut systolic.Output,
	rdBurst, wrBurst, wasDone bool,
) {
	if seqOut.Accepted {
		d.emit(Event{Kind: EventRowIn, Row: d.seq.RowsIn() - 1})
	}

	if seqOut.Captured {
		y := make([]int32, len(coreOut.Y))
		copy(y, coreOut.Y)
		d.emit(Event{Kind: EventRowOut, Row: d.seq.RowsOut() +
			d.seq.Pending() - 1, Data: y})
	}

	if rdBurst {
		d.emit(Event{Kind: EventReadBurstDone, Row: d.rd.Bursts()})
	}

	if wrBurst {
		d.emit(Event{Kind: EventWriteBurstDone, Row: d.wr.Bursts()})
	}

	if !wasDone && d.seq.IsDone() {
		d.emit(Event{Kind: EventDone, Row: d.seq.RowsIn()})
	}
}

func (d *Device) emit(e Event) {
	e.Cycle = d.cycle

	Trace("Device",
		"Behavior", e.Kind.String(),
		"Device", d.name,
		"Cycle", e.Cycle,
		"Row", e.Row,
	)

	if d.observer != nil {
		d.observer(e)
	}
}

// Reset returns every component to its initial state. In-flight rows and
// bursts are abandoned. Memory contents are kept.
func (d *Device) Reset() {
	d.regs.Reset()
	d.seq.Reset()
	d.core.Reset()
	d.fifo.Reset()
	d.rd.Reset()
	d.wr.Reset()
	d.debug.Reset()
	d.memory.Abort()
	d.ingress.Clear()
	d.egress.Clear()
	d.deframer.Reset()
	d.framer.Reset()

	d.emit(Event{Kind: EventReset})
}
