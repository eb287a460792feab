// Package api defines the host driver API for the NPU.
package api

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/akita/v4/sim/directconnection"

	"github.com/sarchlab/npusim/csr"
	"github.com/sarchlab/npusim/npu"
)

// Driver programs an NPU through its register interface. Calls only queue
// tasks. Run executes the queued tasks in order.
type Driver interface {
	sim.Component

	// RegisterDevice connects the driver to the control port of a device.
	RegisterDevice(device *npu.Comp)

	// WriteReg writes a register.
	WriteReg(addr, data uint32)

	// ReadReg reads a register into dst.
	ReadReg(addr uint32, dst *uint32)

	// Poll reads a register until the bits selected by mask equal want. Run
	// fails with a *TimeoutError if that takes more than timeout cycles.
	Poll(addr, mask, want uint32, timeout int)

	// Wait idles for a number of cycles.
	Wait(cycles int)

	// LoadWeights loads an N×N weight matrix stored at addr in the format
	// produced by FormatWeights.
	LoadWeights(addr uint32)

	// Execute multiplies rows input rows stored at inAddr by the loaded
	// weights and writes the results to outAddr.
	Execute(inAddr, outAddr uint32, rows int)

	// DMACopy copies words from src to dst through the elastic buffer.
	DMACopy(src, dst uint32, words int)

	// WaitIdle waits until the sequencer is no longer busy.
	WaitIdle()

	// Run executes all queued tasks.
	Run() error
}

type portFactory interface {
	make(c sim.Component, name string) sim.Port
}

type taskKind int

const (
	taskWrite taskKind = iota
	taskRead
	taskPoll
	taskWait
)

type regTask struct {
	kind    taskKind
	addr    uint32
	data    uint32
	mask    uint32
	want    uint32
	dst     *uint32
	timeout int

	reqID   string
	elapsed int
	last    uint32
}

type driverImpl struct {
	*sim.TickingComponent

	device      *npu.Comp
	portFactory portFactory
	port        sim.Port
	remote      sim.RemotePort
	timeout     int

	tasks []*regTask
	err   error
}

// Tick runs the driver for one cycle.
func (d *driverImpl) Tick() (madeProgress bool) {
	madeProgress = d.receive() || madeProgress

	if len(d.tasks) == 0 {
		return madeProgress
	}

	task := d.tasks[0]
	switch task.kind {
	case taskWrite:
		d.doWrite(task)
	case taskRead:
		d.doRead(task)
	case taskPoll:
		d.doPoll(task)
	case taskWait:
		d.doWait(task)
	}

	return true
}

func (d *driverImpl) doWrite(task *regTask) {
	if !d.port.CanSend() {
		return
	}

	msg := npu.RegReqBuilder{}.
		WithSrc(d.port.AsRemote()).
		WithDst(d.remote).
		WithAddress(task.addr).
		WithWriteData(task.data).
		Build()
	if err := d.port.Send(msg); err != nil {
		return
	}

	npu.Trace("Driver",
		"Behavior", "WriteReg",
		"Time", float64(d.Engine.CurrentTime()*1e9),
		"Addr", task.addr,
		"Data", task.data,
	)

	d.finishHead()
}

func (d *driverImpl) sendRead(task *regTask) {
	if task.reqID != "" || !d.port.CanSend() {
		return
	}

	msg := npu.RegReqBuilder{}.
		WithSrc(d.port.AsRemote()).
		WithDst(d.remote).
		WithAddress(task.addr).
		Build()
	if err := d.port.Send(msg); err != nil {
		return
	}

	task.reqID = msg.ID
}

func (d *driverImpl) doRead(task *regTask) {
	d.sendRead(task)
}

func (d *driverImpl) doPoll(task *regTask) {
	task.elapsed++
	if task.elapsed > task.timeout {
		d.err = &TimeoutError{
			Addr:   task.addr,
			Mask:   task.mask,
			Want:   task.want,
			Last:   task.last,
			Cycles: task.timeout,
		}

		npu.Trace("Driver",
			"Behavior", "Timeout",
			"Time", float64(d.Engine.CurrentTime()*1e9),
			"Addr", task.addr,
			"Last", task.last,
		)

		d.tasks = nil

		return
	}

	d.sendRead(task)
}

func (d *driverImpl) doWait(task *regTask) {
	task.elapsed++
	if task.elapsed >= task.timeout {
		d.finishHead()
	}
}

func (d *driverImpl) receive() bool {
	item := d.port.PeekIncoming()
	if item == nil {
		return false
	}

	d.port.RetrieveIncoming()

	rsp, ok := item.(*npu.RegRsp)
	if !ok {
		panic(fmt.Sprintf("driver cannot handle %T", item))
	}

	if len(d.tasks) == 0 || d.tasks[0].reqID != rsp.RspTo {
		return true
	}

	task := d.tasks[0]
	task.last = rsp.Data
	task.reqID = ""

	switch task.kind {
	case taskRead:
		if task.dst != nil {
			*task.dst = rsp.Data
		}
		d.finishHead()
	case taskPoll:
		if rsp.Data&task.mask == task.want {
			d.finishHead()
		}
	}

	return true
}

func (d *driverImpl) finishHead() {
	d.tasks = d.tasks[1:]
}

func (d *driverImpl) enqueue(t *regTask) {
	d.tasks = append(d.tasks, t)
}

// RegisterDevice connects the driver to the control port of a device.
func (d *driverImpl) RegisterDevice(device *npu.Comp) {
	d.device = device

	d.port = d.portFactory.make(d, d.Name()+".Control")
	d.AddPort("Control", d.port)

	conn := directconnection.MakeBuilder().
		WithEngine(d.Engine).
		WithFreq(d.Freq).
		Build(d.Name() + ".Conn")
	conn.PlugIn(d.port)
	conn.PlugIn(device.ControlPort())

	d.remote = device.ControlPort().AsRemote()
}

func (d *driverImpl) WriteReg(addr, data uint32) {
	d.enqueue(&regTask{kind: taskWrite, addr: addr, data: data})
}

func (d *driverImpl) ReadReg(addr uint32, dst *uint32) {
	d.enqueue(&regTask{kind: taskRead, addr: addr, dst: dst})
}

func (d *driverImpl) Poll(addr, mask, want uint32, timeout int) {
	d.enqueue(&regTask{
		kind:    taskPoll,
		addr:    addr,
		mask:    mask,
		want:    want,
		timeout: timeout,
	})
}

func (d *driverImpl) Wait(cycles int) {
	d.enqueue(&regTask{kind: taskWait, timeout: cycles})
}

func (d *driverImpl) geometry() (n, beatsIn int) {
	if d.device == nil {
		panic("no device registered")
	}

	n = d.device.Device().Config().ArraySize

	return n, (n + 3) / 4
}

func (d *driverImpl) LoadWeights(addr uint32) {
	n, beatsIn := d.geometry()
	done := csr.StatDone | csr.StatRdDone

	d.WriteReg(csr.DMARdAddr, addr)
	d.WriteReg(csr.DMARdLen, uint32(n*beatsIn))
	d.WriteReg(csr.Ctrl, csr.CtrlStart)
	d.WriteReg(csr.DMAWrCtrl, csr.RdStart)
	d.Poll(csr.GStat, done, done, d.timeout)
	d.WriteReg(csr.DMAStat, csr.LatchStrobe)
}

func (d *driverImpl) Execute(inAddr, outAddr uint32, rows int) {
	n, beatsIn := d.geometry()
	done := csr.StatDone | csr.StatRdDone | csr.StatWrDone

	d.WriteReg(csr.SeqRows, uint32(rows))
	d.WriteReg(csr.DMARdAddr, inAddr)
	d.WriteReg(csr.DMARdLen, uint32(rows*beatsIn))
	d.WriteReg(csr.DMAWrAddr, outAddr)
	d.WriteReg(csr.Ctrl, csr.CtrlStart|csr.CtrlMode)
	d.WriteReg(csr.DMAWrCtrl,
		csr.RdStart|csr.WrStart|(uint32(rows*n)&csr.WrLenMask))
	d.Poll(csr.GStat, done, done, d.timeout)
}

func (d *driverImpl) DMACopy(src, dst uint32, words int) {
	done := csr.StatRdDone | csr.StatWrDone

	d.WriteReg(csr.Ctrl, csr.CtrlLoopback)
	d.WriteReg(csr.DMARdAddr, src)
	d.WriteReg(csr.DMARdLen, uint32(words))
	d.WriteReg(csr.DMAWrAddr, dst)
	d.WriteReg(csr.DMAWrCtrl,
		csr.RdStart|csr.WrStart|(uint32(words)&csr.WrLenMask))
	d.Poll(csr.DMAStat, done|csr.DMABusy, done, d.timeout)
	d.WriteReg(csr.Ctrl, 0)
}

func (d *driverImpl) WaitIdle() {
	d.Poll(csr.GStat, csr.StatBusy, 0, d.timeout)
}

// Run runs all the tasks in the driver.
func (d *driverImpl) Run() error {
	d.err = nil
	d.TickLater()

	if err := d.Engine.Run(); err != nil {
		return err
	}

	err := d.err
	d.err = nil

	return err
}
