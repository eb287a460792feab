package api

import "github.com/sarchlab/akita/v4/sim"

type defaultPortFactory struct {
}

func (f defaultPortFactory) make(c sim.Component, name string) sim.Port {
	return sim.NewPort(c, 4, 4, name)
}

// DefaultTimeout is the cycle budget of the status polls issued by the
// high-level driver calls.
const DefaultTimeout = 100000

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	engine  sim.Engine
	freq    sim.Freq
	timeout int
}

// WithEngine sets the engine.
func (b DriverBuilder) WithEngine(engine sim.Engine) DriverBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the driver.
func (b DriverBuilder) WithFreq(freq sim.Freq) DriverBuilder {
	b.freq = freq
	return b
}

// WithTimeout sets the cycle budget of LoadWeights, Execute, DMACopy and
// WaitIdle.
func (b DriverBuilder) WithTimeout(cycles int) DriverBuilder {
	b.timeout = cycles
	return b
}

// Build create a driver.
func (b DriverBuilder) Build(name string) Driver {
	d := &driverImpl{
		portFactory: defaultPortFactory{},
		timeout:     b.timeout,
	}

	if d.timeout <= 0 {
		d.timeout = DefaultTimeout
	}

	d.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, d)

	return d
}
