// Package extmem models the external memory the DMA masters talk to. It is a
// burst slave with separate read and write ports, a fixed read latency and a
// configurable wait-request pattern.
package extmem

import (
	"encoding/binary"
	"fmt"

	"github.com/sarchlab/akita/v4/mem/mem"

	"github.com/sarchlab/npusim/dma"
)

type readBurst struct {
	addr  uint32
	count int
	sent  int
	wait  int
}

// Memory is the external memory slave.
type Memory struct {
	storage      *mem.Storage
	capacity     uint64
	readLatency  int
	maxReads     int
	readStall    StallFunc
	writeStall   StallFunc
	cycle        uint64
	reads        []*readBurst
	writeAddr    uint32
	writeLeft    int
	readBeats    int
	writeBeats   int
	stalledReads int
}

// Builder creates Memory instances.
type Builder struct {
	capacity    uint64
	readLatency int
	maxReads    int
	readStall   StallFunc
	writeStall  StallFunc
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		capacity:    1 * mem.MB,
		readLatency: 4,
		maxReads:    4,
		readStall:   NoStall,
		writeStall:  NoStall,
	}
}

// WithCapacity sets the size of the memory in bytes. Bursts that reach past
// the end are held under wait-request forever. The host-side WriteWords and
// ReadWords helpers panic outside the range.
func (b Builder) WithCapacity(capacity uint64) Builder {
	b.capacity = capacity
	return b
}

// WithReadLatency sets the cycles between accepting a read burst and
// returning its first beat.
func (b Builder) WithReadLatency(cycles int) Builder {
	b.readLatency = cycles
	return b
}

// WithMaxOutstandingReads sets how many read bursts can be queued.
func (b Builder) WithMaxOutstandingReads(n int) Builder {
	b.maxReads = n
	return b
}

// WithReadStall sets the wait-request pattern of the read port.
func (b Builder) WithReadStall(f StallFunc) Builder {
	b.readStall = f
	return b
}

// WithWriteStall sets the wait-request pattern of the write port.
func (b Builder) WithWriteStall(f StallFunc) Builder {
	b.writeStall = f
	return b
}

// Build creates the memory.
func (b Builder) Build() *Memory {
	if b.readLatency < 1 {
		panic("memory read latency must be at least one cycle")
	}

	if b.maxReads < 1 {
		panic("memory must accept at least one read burst")
	}

	return &Memory{
		storage:     mem.NewStorage(b.capacity),
		capacity:    b.capacity,
		readLatency: b.readLatency,
		maxReads:    b.maxReads,
		readStall:   b.readStall,
		writeStall:  b.writeStall,
	}
}

// Storage returns the backing storage.
func (m *Memory) Storage() *mem.Storage {
	return m.storage
}

// Cycle returns the number of cycles the memory has been clocked.
func (m *Memory) Cycle() uint64 {
	return m.cycle
}

// EvalRead returns the read port outputs for the current cycle, given the
// command the master drives.
func (m *Memory) EvalRead(cmd dma.ReadCmd) dma.ReadResp {
	rsp := dma.ReadResp{
		WaitRequest: len(m.reads) >= m.maxReads || m.readStall(m.cycle) ||
			(cmd.Valid && !m.decodes(cmd.Address, cmd.BurstCount)),
	}

	if len(m.reads) > 0 && m.reads[0].wait == 0 {
		head := m.reads[0]
		rsp.DataValid = true
		rsp.Data = m.word(head.addr + uint32(4*head.sent))
	}

	return rsp
}

// EvalWrite returns the write port outputs for the current cycle, given the
// command the master drives. The range is checked on the first beat only.
func (m *Memory) EvalWrite(cmd dma.WriteCmd) dma.WriteResp {
	outside := cmd.Valid && m.writeLeft == 0 &&
		!m.decodes(cmd.Address, cmd.BurstCount)

	return dma.WriteResp{WaitRequest: m.writeStall(m.cycle) || outside}
}

func (m *Memory) decodes(addr uint32, words int) bool {
	return uint64(addr)+4*uint64(words) <= m.capacity
}

// Busy reports whether read bursts are outstanding.
func (m *Memory) Busy() bool {
	return len(m.reads) > 0
}

// Commit clocks the memory with the commands the masters drove in this
// cycle.
func (m *Memory) Commit(rd dma.ReadCmd, wr dma.WriteCmd) {
	rdRsp := m.EvalRead(rd)
	wrRsp := m.EvalWrite(wr)

	if rdRsp.DataValid {
		head := m.reads[0]
		head.sent++
		m.readBeats++
		if head.sent == head.count {
			m.reads = m.reads[1:]
		}
	}

	for _, r := range m.reads {
		if r.wait > 0 {
			r.wait--
		}
	}

	if rd.Valid {
		if rdRsp.WaitRequest {
			m.stalledReads++
		} else {
			m.reads = append(m.reads, &readBurst{
				addr:  rd.Address,
				count: rd.BurstCount,
				wait:  m.readLatency - 1,
			})
		}
	}

	if wr.Valid && !wrRsp.WaitRequest {
		if m.writeLeft == 0 {
			m.writeAddr = wr.Address
			m.writeLeft = wr.BurstCount
		}

		m.setWord(m.writeAddr, wr.Data)
		m.writeAddr += 4
		m.writeLeft--
		m.writeBeats++
	}

	m.cycle++
}

// Abort drops every outstanding burst. The contents are kept.
func (m *Memory) Abort() {
	m.reads = nil
	m.writeLeft = 0
}

// ReadBeats returns the number of read beats returned.
func (m *Memory) ReadBeats() int {
	return m.readBeats
}

// WriteBeats returns the number of write beats accepted.
func (m *Memory) WriteBeats() int {
	return m.writeBeats
}

// WriteWords stores words starting at a byte address.
func (m *Memory) WriteWords(addr uint32, words []uint32) {
	for i, w := range words {
		m.setWord(addr+uint32(4*i), w)
	}
}

// ReadWords loads n words starting at a byte address.
func (m *Memory) ReadWords(addr uint32, n int) []uint32 {
	words := make([]uint32, n)
	for i := range words {
		words[i] = m.word(addr + uint32(4*i))
	}

	return words
}

func (m *Memory) word(addr uint32) uint32 {
	data, err := m.storage.Read(uint64(addr), 4)
	if err != nil {
		panic(fmt.Sprintf("memory read at 0x%x: %v", addr, err))
	}

	return binary.LittleEndian.Uint32(data)
}

func (m *Memory) setWord(addr, value uint32) {
	data := make([]byte, 4)
	binary.LittleEndian.PutUint32(data, value)

	if err := m.storage.Write(uint64(addr), data); err != nil {
		panic(fmt.Sprintf("memory write at 0x%x: %v", addr, err))
	}
}
