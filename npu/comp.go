package npu

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/npusim/csr"
	"github.com/sarchlab/npusim/stream"
)

// Hook positions invoked by a Comp.
var (
	HookPosRowIn     = &sim.HookPos{Name: "NPU Row In"}
	HookPosRowOut    = &sim.HookPos{Name: "NPU Row Out"}
	HookPosBurstDone = &sim.HookPos{Name: "NPU Burst Done"}
	HookPosDone      = &sim.HookPos{Name: "NPU Done"}
	HookPosReset     = &sim.HookPos{Name: "NPU Reset"}
)

// DefaultWaitLimit is the number of cycles a Comp keeps ticking while its
// only activity is a request held under memory wait-request.
const DefaultWaitLimit = 1 << 16

type pendingRead struct {
	id  string
	src sim.RemotePort
}

// Comp wraps a Device as a ticking component. Register requests arrive on
// the control port one per cycle and read data returns as RegRsp messages.
type Comp struct {
	*sim.TickingComponent

	device      *Device
	controlPort sim.Port

	reads      []pendingRead
	responses  sim.Buffer
	waitLimit  int
	waitCycles int
}

// NewComp creates a component around device.
func NewComp(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	device *Device,
) *Comp {
	c := &Comp{
		device:    device,
		waitLimit: DefaultWaitLimit,
	}
	c.TickingComponent = sim.NewTickingComponent(name, engine, freq, c)

	c.controlPort = sim.NewPort(c, 4, 4, name+".Control")
	c.AddPort("Control", c.controlPort)
	c.responses = sim.NewBuffer(name+".Responses", 4)

	device.SetObserver(c.observe)

	return c
}

// Device returns the wrapped device.
func (c *Comp) Device() *Device {
	return c.device
}

// ControlPort returns the register bus port.
func (c *Comp) ControlPort() sim.Port {
	return c.controlPort
}

// SetWaitLimit sets how long the component keeps ticking while it only
// waits on memory.
func (c *Comp) SetWaitLimit(cycles int) {
	c.waitLimit = cycles
}

// PushIngress offers a stream beat to the device and wakes it up.
func (c *Comp) PushIngress(b stream.Beat) bool {
	ok := c.device.PushIngress(b)
	if ok {
		c.TickLater()
	}

	return ok
}

// Reset resets the device and drops pending register reads.
func (c *Comp) Reset() {
	c.device.Reset()
	c.reads = nil
	c.responses.Clear()
}

// Tick runs the device for one cycle.
func (c *Comp) Tick() (madeProgress bool) {
	madeProgress = c.sendResponse() || madeProgress

	bus := c.takeRequest()
	if bus.Read || bus.Write {
		madeProgress = true
	}

	rsp, changed, waiting := c.device.Tick(bus)
	if rsp.ReadDataValid {
		c.queueResponse(rsp.ReadData)
		madeProgress = true
	}

	switch {
	case changed:
		c.waitCycles = 0
		madeProgress = true
	case waiting:
		c.waitCycles++
		madeProgress = madeProgress || c.waitCycles < c.waitLimit
	}

	return madeProgress || c.responses.Size() > 0
}

func (c *Comp) takeRequest() csr.Bus {
	item := c.controlPort.PeekIncoming()
	if item == nil {
		return csr.Bus{}
	}

	req, ok := item.(*RegReq)
	if !ok {
		panic("npu control port only accepts register requests")
	}

	if !req.Write && len(c.reads)+c.responses.Size() >= c.responses.Capacity() {
		return csr.Bus{}
	}

	c.controlPort.RetrieveIncoming()

	if req.Write {
		return csr.Bus{Write: true, Address: req.Address, Data: req.Data}
	}

	c.reads = append(c.reads, pendingRead{id: req.ID, src: req.Src})

	return csr.Bus{Read: true, Address: req.Address}
}

func (c *Comp) queueResponse(data uint32) {
	if len(c.reads) == 0 {
		return
	}

	read := c.reads[0]
	c.reads = c.reads[1:]

	rsp := &RegRsp{
		MsgMeta: sim.MsgMeta{
			ID:  sim.GetIDGenerator().Generate(),
			Src: c.controlPort.AsRemote(),
			Dst: read.src,
		},
		RspTo: read.id,
		Data:  data,
	}
	c.responses.Push(rsp)
}

func (c *Comp) sendResponse() bool {
	item := c.responses.Peek()
	if item == nil {
		return false
	}

	if err := c.controlPort.Send(item.(*RegRsp)); err != nil {
		return false
	}

	c.responses.Pop()

	return true
}

func (c *Comp) observe(e Event) {
	var pos *sim.HookPos

	switch e.Kind {
	case EventRowIn:
		pos = HookPosRowIn
	case EventRowOut:
		pos = HookPosRowOut
	case EventReadBurstDone, EventWriteBurstDone:
		pos = HookPosBurstDone
	case EventDone:
		pos = HookPosDone
	case EventReset:
		pos = HookPosReset
	}

	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   e,
	})
}
