// Package config provides the configuration and builder of NPU devices.
package config

import (
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/npusim/extmem"
	"github.com/sarchlab/npusim/npu"
	"github.com/sarchlab/npusim/pe"
)

// DeviceBuilder can build NPU devices.
type DeviceBuilder struct {
	engine  sim.Engine
	freq    sim.Freq
	monitor *monitoring.Monitor
	spec    Spec

	readStall  extmem.StallFunc
	writeStall extmem.StallFunc
	memory     *extmem.Memory
}

// MakeDeviceBuilder creates a builder for the reference configuration.
func MakeDeviceBuilder() DeviceBuilder {
	return DeviceBuilder{
		freq: 1 * sim.GHz,
		spec: DefaultSpec(),
	}
}

// WithEngine sets the engine that drives the device simulation.
func (d DeviceBuilder) WithEngine(engine sim.Engine) DeviceBuilder {
	d.engine = engine
	return d
}

// WithFreq sets the frequency of the device.
func (d DeviceBuilder) WithFreq(freq sim.Freq) DeviceBuilder {
	d.freq = freq
	return d
}

// WithMonitor sets the monitor the device registers with.
func (d DeviceBuilder) WithMonitor(monitor *monitoring.Monitor) DeviceBuilder {
	d.monitor = monitor
	return d
}

// WithSpec replaces every structural parameter.
func (d DeviceBuilder) WithSpec(spec Spec) DeviceBuilder {
	d.spec = spec
	return d
}

// WithArraySize sets N.
func (d DeviceBuilder) WithArraySize(n int) DeviceBuilder {
	d.spec.ArraySize = n
	return d
}

// WithDatapath selects the processing element variant.
func (d DeviceBuilder) WithDatapath(kind pe.Kind) DeviceBuilder {
	d.spec.Datapath = kind.String()
	return d
}

// WithFIFODepth sets the depth of the elastic buffer in words.
func (d DeviceBuilder) WithFIFODepth(depth int) DeviceBuilder {
	d.spec.FIFODepth = depth
	return d
}

// WithBurstSize sets the DMA burst length in words.
func (d DeviceBuilder) WithBurstSize(words int) DeviceBuilder {
	d.spec.BurstSize = words
	return d
}

// WithOutputRows sets how many result rows can wait for the write path.
func (d DeviceBuilder) WithOutputRows(rows int) DeviceBuilder {
	d.spec.OutputRows = rows
	return d
}

// WithReadLatency sets the register read latency in cycles.
func (d DeviceBuilder) WithReadLatency(cycles int) DeviceBuilder {
	d.spec.ReadLatency = cycles
	return d
}

// WithMemoryReadLatency sets the external memory read latency in cycles.
func (d DeviceBuilder) WithMemoryReadLatency(cycles int) DeviceBuilder {
	d.spec.MemoryReadLatency = cycles
	return d
}

// WithMemoryCapacity sets the external memory size in bytes.
func (d DeviceBuilder) WithMemoryCapacity(bytes uint64) DeviceBuilder {
	d.spec.MemoryBytes = bytes
	return d
}

// WithMemoryStall sets the wait-request patterns of the memory ports.
func (d DeviceBuilder) WithMemoryStall(
	read, write extmem.StallFunc,
) DeviceBuilder {
	d.readStall = read
	d.writeStall = write

	return d
}

// WithMemory attaches an existing memory instead of creating one.
func (d DeviceBuilder) WithMemory(memory *extmem.Memory) DeviceBuilder {
	d.memory = memory
	return d
}

// Build creates an NPU device.
func (d DeviceBuilder) Build(name string) *npu.Comp {
	if err := d.spec.Validate(); err != nil {
		panic(err)
	}

	memory := d.memory
	if memory == nil {
		mb := extmem.MakeBuilder().
			WithCapacity(d.spec.MemoryBytes).
			WithReadLatency(d.spec.MemoryReadLatency)
		if d.readStall != nil {
			mb = mb.WithReadStall(d.readStall)
		}
		if d.writeStall != nil {
			mb = mb.WithWriteStall(d.writeStall)
		}
		memory = mb.Build()
	}

	device := npu.NewDevice(name, d.spec.DeviceConfig(), memory)
	comp := npu.NewComp(name, d.engine, d.freq, device)

	if d.monitor != nil {
		d.monitor.RegisterComponent(comp)
	}

	return comp
}
