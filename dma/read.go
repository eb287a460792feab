package dma

// ReadSignals are the decisions of a read master in one cycle.
type ReadSignals struct {
	Cmd      ReadCmd
	Accepted bool
	Push     bool
	PushData uint32
}

// ReadMaster fetches a descriptor from memory in bursts and pushes the words
// into the FIFO. A burst is requested only when the FIFO has room for every
// beat of it and of the bursts still in flight.
type ReadMaster struct {
	state     State
	desc      Descriptor
	addr      uint32
	remaining int
	pending   int
	inflight  []int

	bursts int
	words  int
}

// NewReadMaster creates an idle read master.
func NewReadMaster() *ReadMaster {
	return &ReadMaster{}
}

// State returns the FSM state.
func (m *ReadMaster) State() State {
	return m.state
}

// Busy reports whether a descriptor is being transferred.
func (m *ReadMaster) Busy() bool {
	return m.state == StateRequest || m.state == StateBurst
}

// Done reports whether no transfer is outstanding. A master that was never
// started counts as done.
func (m *ReadMaster) Done() bool {
	return !m.Busy()
}

// Pending returns the number of requested beats not yet returned.
func (m *ReadMaster) Pending() int {
	return m.pending
}

// Bursts returns the number of bursts issued since reset.
func (m *ReadMaster) Bursts() int {
	return m.bursts
}

// Words returns the number of words pushed since reset.
func (m *ReadMaster) Words() int {
	return m.words
}

func (m *ReadMaster) nextBurst() int {
	return min(m.desc.BurstSize, m.remaining)
}

// Request returns the command the master drives in this cycle.
func (m *ReadMaster) Request(fifoFree int) ReadCmd {
	if m.state != StateRequest {
		return ReadCmd{}
	}

	burst := m.nextBurst()
	if fifoFree-m.pending < burst {
		return ReadCmd{}
	}

	return ReadCmd{Valid: true, Address: m.addr, BurstCount: burst}
}

// Eval computes the read master signals for one cycle. rsp is the slave's
// answer to Request.
func (m *ReadMaster) Eval(fifoFree int, rsp ReadResp) ReadSignals {
	sig := ReadSignals{Cmd: m.Request(fifoFree)}
	sig.Accepted = sig.Cmd.Valid && !rsp.WaitRequest

	if rsp.DataValid && m.pending > 0 {
		sig.Push = true
		sig.PushData = rsp.Data
	}

	return sig
}

// Commit advances the read master. A start strobe loads desc. It reports
// whether the last beat of a burst arrived.
func (m *ReadMaster) Commit(start bool, desc Descriptor, sig ReadSignals) bool {
	burstDone := false

	if sig.Push {
		m.pending--
		m.words++
		m.inflight[0]--
		if m.inflight[0] == 0 {
			m.inflight = m.inflight[1:]
			burstDone = true
		}
	}

	if sig.Accepted {
		burst := m.nextBurst()
		m.pending += burst
		m.inflight = append(m.inflight, burst)
		m.remaining -= burst
		m.addr += uint32(4 * burst)
		m.bursts++
		if m.remaining == 0 {
			m.state = StateBurst
		}
	}

	if m.state == StateBurst && m.pending == 0 {
		m.state = StateDone
	}

	if start {
		m.begin(desc)
	}

	return burstDone
}

func (m *ReadMaster) begin(desc Descriptor) {
	if desc.BurstSize <= 0 {
		desc.BurstSize = 1
	}

	m.desc = desc
	m.addr = desc.Address
	m.remaining = desc.Length
	m.pending = 0
	m.inflight = nil
	m.state = StateRequest

	if desc.Length <= 0 {
		m.remaining = 0
		m.state = StateDone
	}
}

// Reset abandons any transfer.
func (m *ReadMaster) Reset() {
	*m = ReadMaster{}
}
