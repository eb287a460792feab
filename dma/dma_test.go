package dma_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/npusim/dma"
	"github.com/sarchlab/npusim/extmem"
)

// loop clocks a read master, a FIFO and a write master that drains the FIFO
// back into the same memory.
type loop struct {
	memory *extmem.Memory
	fifo   *dma.FIFO
	rd     *dma.ReadMaster
	wr     *dma.WriteMaster
	cycles int

	rdBursts, wrBursts int
}

func newLoop(memory *extmem.Memory, depth int) *loop {
	return &loop{
		memory: memory,
		fifo:   dma.NewFIFO("FIFO", depth),
		rd:     dma.NewReadMaster(),
		wr:     dma.NewWriteMaster(),
	}
}

func (l *loop) tick(rdStart, wrStart bool, rdDesc, wrDesc dma.Descriptor) {
	head, _ := l.fifo.Head()
	rdRsp := l.memory.EvalRead(l.rd.Request(l.fifo.Free()))
	wrRsp := l.memory.EvalWrite(l.wr.Request(l.fifo.Size(), head))

	rdSig := l.rd.Eval(l.fifo.Free(), rdRsp)
	wrSig := l.wr.Eval(l.fifo.Size(), head, wrRsp)

	l.memory.Commit(rdSig.Cmd, wrSig.Cmd)
	l.fifo.Commit(wrSig.Pop, rdSig.Push, rdSig.PushData)

	if l.rd.Commit(rdStart, rdDesc, rdSig) {
		l.rdBursts++
	}

	if l.wr.Commit(wrStart, wrDesc, wrSig) {
		l.wrBursts++
	}

	l.cycles++
}

func (l *loop) copy(src, dst uint32, words, burst, limit int) bool {
	rdDesc := dma.Descriptor{Address: src, Length: words, BurstSize: burst}
	wrDesc := dma.Descriptor{Address: dst, Length: words, BurstSize: burst}

	l.tick(true, true, rdDesc, wrDesc)
	for l.rd.Busy() || l.wr.Busy() {
		if l.cycles > limit {
			return false
		}
		l.tick(false, false, rdDesc, wrDesc)
	}

	return true
}

func randomWords(r *rand.Rand, n int) []uint32 {
	words := make([]uint32, n)
	for i := range words {
		words[i] = r.Uint32()
	}

	return words
}

var _ = Describe("FIFO", func() {
	It("should keep words in order", func() {
		f := dma.NewFIFO("FIFO", 2)

		f.Commit(false, true, 1)
		f.Commit(false, true, 2)
		Expect(f.Full()).To(BeTrue())

		f.Commit(true, true, 3)
		head, ok := f.Head()
		Expect(ok).To(BeTrue())
		Expect(head).To(Equal(uint32(2)))
		Expect(f.Size()).To(Equal(2))
		Expect(f.Free()).To(BeZero())
	})

	It("should panic on overflow and underflow", func() {
		f := dma.NewFIFO("FIFO", 1)

		Expect(func() { f.Commit(true, false, 0) }).To(Panic())
		f.Commit(false, true, 1)
		Expect(func() { f.Commit(false, true, 2) }).To(Panic())
	})

	It("should report empty after reset", func() {
		f := dma.NewFIFO("FIFO", 4)
		f.Commit(false, true, 1)

		f.Reset()

		Expect(f.Empty()).To(BeTrue())
		_, ok := f.Head()
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("Burst masters", func() {
	var r *rand.Rand

	BeforeEach(func() {
		r = rand.New(rand.NewSource(7))
	})

	It("should copy a region that is not a multiple of the burst", func() {
		memory := extmem.MakeBuilder().Build()
		src := randomWords(r, 103)
		memory.WriteWords(0x1000, src)

		l := newLoop(memory, 64)
		Expect(l.copy(0x1000, 0x8000, 103, 16, 10000)).To(BeTrue())

		Expect(memory.ReadWords(0x8000, 103)).To(Equal(src))
		Expect(l.rd.Bursts()).To(Equal(7))
		Expect(l.wr.Bursts()).To(Equal(7))
		Expect(l.rdBursts).To(Equal(7))
		Expect(l.wrBursts).To(Equal(7))
		Expect(l.rd.State()).To(Equal(dma.StateDone))
		Expect(l.wr.State()).To(Equal(dma.StateDone))
	})

	It("should copy correctly under random wait-requests", func() {
		memory := extmem.MakeBuilder().
			WithReadLatency(3).
			WithReadStall(extmem.Random(1, 0.4)).
			WithWriteStall(extmem.Random(2, 0.3)).
			Build()
		src := randomWords(r, 77)
		memory.WriteWords(0x400, src)

		l := newLoop(memory, 20)
		Expect(l.copy(0x400, 0x2000, 77, 8, 20000)).To(BeTrue())

		Expect(memory.ReadWords(0x2000, 77)).To(Equal(src))
		Expect(memory.ReadBeats()).To(Equal(77))
		Expect(memory.WriteBeats()).To(Equal(77))
	})

	It("should finish immediately with a zero length", func() {
		memory := extmem.MakeBuilder().Build()
		l := newLoop(memory, 8)

		Expect(l.copy(0, 0x100, 0, 4, 10)).To(BeTrue())
		Expect(l.cycles).To(Equal(1))
	})

	It("should never finish when the burst exceeds the fifo", func() {
		memory := extmem.MakeBuilder().Build()
		l := newLoop(memory, 8)

		Expect(l.copy(0, 0x100, 32, 16, 500)).To(BeFalse())
		Expect(l.rd.State()).To(Equal(dma.StateRequest))
		Expect(l.rd.Bursts()).To(BeZero())
	})

	It("should hold the write request until the source has a full burst", func() {
		wr := dma.NewWriteMaster()
		desc := dma.Descriptor{Address: 0x40, Length: 8, BurstSize: 4}
		wr.Commit(true, desc, dma.WriteSignals{})

		sig := wr.Eval(3, 0xaa, dma.WriteResp{})
		Expect(sig.Cmd.Valid).To(BeFalse())

		sig = wr.Eval(4, 0xaa, dma.WriteResp{WaitRequest: true})
		Expect(sig.Cmd).To(Equal(dma.WriteCmd{
			Valid: true, Address: 0x40, BurstCount: 4, Data: 0xaa}))
		Expect(sig.Pop).To(BeFalse())
	})

	It("should report done when never started", func() {
		Expect(dma.NewReadMaster().Done()).To(BeTrue())
		Expect(dma.NewWriteMaster().Done()).To(BeTrue())
	})
})
