package dma

// WriteSignals are the decisions of a write master in one cycle.
type WriteSignals struct {
	Cmd      WriteCmd
	Accepted bool

	// Pop consumes the head word of the source.
	Pop bool
}

// WriteMaster drains a word source into memory in bursts. A burst starts
// only when the source already holds every beat of it.
type WriteMaster struct {
	state     State
	desc      Descriptor
	addr      uint32
	remaining int
	burst     int
	beatsLeft int

	bursts int
	words  int
}

// NewWriteMaster creates an idle write master.
func NewWriteMaster() *WriteMaster {
	return &WriteMaster{}
}

// State returns the FSM state.
func (m *WriteMaster) State() State {
	return m.state
}

// Busy reports whether a descriptor is being transferred.
func (m *WriteMaster) Busy() bool {
	return m.state == StateRequest || m.state == StateBurst
}

// Done reports whether no transfer is outstanding.
func (m *WriteMaster) Done() bool {
	return !m.Busy()
}

// Remaining returns the number of words not yet written.
func (m *WriteMaster) Remaining() int {
	return m.remaining + m.beatsLeft
}

// Bursts returns the number of bursts started since reset.
func (m *WriteMaster) Bursts() int {
	return m.bursts
}

// Words returns the number of words written since reset.
func (m *WriteMaster) Words() int {
	return m.words
}

// Request returns the command the master drives in this cycle. available
// is the number of words the source holds and head is its oldest word.
func (m *WriteMaster) Request(available int, head uint32) WriteCmd {
	switch m.state {
	case StateRequest:
		burst := min(m.desc.BurstSize, m.remaining)
		if available >= burst {
			return WriteCmd{
				Valid:      true,
				Address:    m.addr,
				BurstCount: burst,
				Data:       head,
			}
		}
	case StateBurst:
		if available > 0 {
			return WriteCmd{
				Valid:      true,
				Address:    m.addr,
				BurstCount: m.burst,
				Data:       head,
			}
		}
	}

	return WriteCmd{}
}

// Eval computes the write master signals for one cycle. rsp is the slave's
// answer to Request.
func (m *WriteMaster) Eval(available int, head uint32, rsp WriteResp) WriteSignals {
	sig := WriteSignals{Cmd: m.Request(available, head)}
	sig.Accepted = sig.Cmd.Valid && !rsp.WaitRequest
	sig.Pop = sig.Accepted

	return sig
}

// Commit advances the write master. It reports whether a burst completed.
func (m *WriteMaster) Commit(start bool, desc Descriptor, sig WriteSignals) bool {
	burstDone := false

	if sig.Accepted {
		m.words++

		if m.state == StateRequest {
			m.burst = sig.Cmd.BurstCount
			m.beatsLeft = m.burst
			m.remaining -= m.burst
			m.bursts++
			m.state = StateBurst
		}

		m.beatsLeft--
		if m.beatsLeft == 0 {
			burstDone = true
			m.addr += uint32(4 * m.burst)
			m.state = StateRequest
			if m.remaining == 0 {
				m.state = StateDone
			}
		}
	}

	if start {
		m.begin(desc)
	}

	return burstDone
}

func (m *WriteMaster) begin(desc Descriptor) {
	if desc.BurstSize <= 0 {
		desc.BurstSize = 1
	}

	m.desc = desc
	m.addr = desc.Address
	m.remaining = desc.Length
	m.beatsLeft = 0
	m.state = StateRequest

	if desc.Length <= 0 {
		m.remaining = 0
		m.state = StateDone
	}
}

// Reset abandons any transfer.
func (m *WriteMaster) Reset() {
	*m = WriteMaster{}
}
