package sequencer_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/npusim/pe"
	"github.com/sarchlab/npusim/sequencer"
	"github.com/sarchlab/npusim/systolic"
)

// bench couples a sequencer with a core, an input word queue and a result
// sink whose availability can be stalled.
type bench struct {
	seq    *sequencer.Sequencer
	core   *systolic.Core
	words  []uint32
	out    []uint32
	cycles int

	inStall  func() bool
	outStall func() bool
}

func newBench(n int) *bench {
	return &bench{
		seq:      sequencer.New("Seq", n, 4),
		core:     systolic.NewCore(n, pe.Registered),
		inStall:  func() bool { return false },
		outStall: func() bool { return false },
	}
}

func (b *bench) tick(start bool, mode sequencer.Mode, rows int) {
	in := sequencer.Inputs{
		Start:     start,
		Mode:      mode,
		TotalRows: rows,
		Core:      b.core.Eval(),
		CoreIdle:  b.core.Idle(),
	}

	if len(b.words) > 0 && !b.inStall() {
		in.InValid = true
		in.InData = b.words[0]
	}

	out := b.seq.Eval(in)

	popped := out.OutValid && !b.outStall()
	if popped {
		b.out = append(b.out, out.OutData)
	}

	if out.InReady {
		b.words = b.words[1:]
	}

	b.seq.Commit(in, out, popped)
	b.core.Tick(out.Core)
	b.cycles++
}

func (b *bench) run(mode sequencer.Mode, rows int) {
	b.tick(true, mode, rows)
	for !b.seq.IsDone() {
		b.tick(false, mode, rows)
		Expect(b.cycles).To(BeNumerically("<", 5000))
	}
}

func pack(row []int8) []uint32 {
	words := make([]uint32, (len(row)+3)/4)
	for k, v := range row {
		words[k/4] |= uint32(uint8(v)) << (8 * (k % 4))
	}

	return words
}

func weightWords(w [][]int8) []uint32 {
	n := len(w)
	words := []uint32{}
	for t := 0; t < n; t++ {
		col := make([]int8, n)
		for r := 0; r < n; r++ {
			col[r] = w[r][n-1-t]
		}
		words = append(words, pack(col)...)
	}

	return words
}

func randomMatrix(r *rand.Rand, rows, cols int) [][]int8 {
	m := make([][]int8, rows)
	for i := range m {
		m[i] = make([]int8, cols)
		for j := range m[i] {
			m[i][j] = int8(r.Intn(256) - 128)
		}
	}

	return m
}

func expected(x, w [][]int8) []uint32 {
	words := []uint32{}
	for _, row := range x {
		for j := range w[0] {
			var sum int32
			for k := range w {
				sum += int32(row[k]) * int32(w[k][j])
			}
			words = append(words, uint32(sum))
		}
	}

	return words
}

var _ = Describe("Sequencer", func() {
	var (
		b *bench
		r *rand.Rand
	)

	BeforeEach(func() {
		b = newBench(8)
		r = rand.New(rand.NewSource(11))
	})

	It("should start idle", func() {
		Expect(b.seq.Phase()).To(Equal(sequencer.Idle))
		Expect(b.seq.Busy()).To(BeFalse())
		Expect(b.seq.BeatsIn()).To(Equal(2))
		Expect(b.seq.BeatsOut()).To(Equal(8))
	})

	It("should walk through the phases of a load", func() {
		b.words = weightWords(randomMatrix(r, 8, 8))

		b.tick(true, sequencer.LoadWeights, 0)
		Expect(b.seq.Phase()).To(Equal(sequencer.LoadWeight))
		b.tick(false, sequencer.LoadWeights, 0)
		Expect(b.seq.Phase()).To(Equal(sequencer.Streaming))

		for b.seq.Phase() == sequencer.Streaming {
			b.tick(false, sequencer.LoadWeights, 0)
		}
		Expect(b.seq.Phase()).To(Equal(sequencer.Draining))
		Expect(b.seq.RowsIn()).To(Equal(8))

		for b.seq.Phase() == sequencer.Draining {
			b.tick(false, sequencer.LoadWeights, 0)
		}
		Expect(b.seq.Phase()).To(Equal(sequencer.Done))
		Expect(b.core.Idle()).To(BeTrue())
	})

	It("should load weights and execute rows", func() {
		w := randomMatrix(r, 8, 8)
		x := randomMatrix(r, 25, 8)

		b.words = weightWords(w)
		b.run(sequencer.LoadWeights, 0)
		Expect(b.core.Weights()).To(Equal(w))

		for _, row := range x {
			b.words = append(b.words, pack(row)...)
		}
		b.run(sequencer.Execute, len(x))

		Expect(b.seq.RowsIn()).To(Equal(25))
		Expect(b.seq.RowsOut()).To(Equal(25))
		Expect(b.seq.InFlight()).To(BeZero())
		Expect(b.out).To(Equal(expected(x, w)))
	})

	It("should keep the row order under random stalls", func() {
		w := randomMatrix(r, 8, 8)
		x := randomMatrix(r, 30, 8)

		b.words = weightWords(w)
		b.run(sequencer.LoadWeights, 0)

		b.inStall = func() bool { return r.Intn(3) == 0 }
		b.outStall = func() bool { return r.Intn(2) == 0 }
		for _, row := range x {
			b.words = append(b.words, pack(row)...)
		}
		b.run(sequencer.Execute, len(x))

		Expect(b.out).To(Equal(expected(x, w)))
	})

	It("should never exceed the result buffer", func() {
		w := randomMatrix(r, 8, 8)
		x := randomMatrix(r, 12, 8)
		b.words = weightWords(w)
		b.run(sequencer.LoadWeights, 0)

		for _, row := range x {
			b.words = append(b.words, pack(row)...)
		}

		blocked := true
		b.outStall = func() bool { return blocked }
		b.tick(true, sequencer.Execute, len(x))
		for i := 0; i < 100; i++ {
			b.tick(false, sequencer.Execute, len(x))
			Expect(b.seq.InFlight() + b.seq.Pending()).To(BeNumerically("<=", 4))
		}
		Expect(b.seq.IsDone()).To(BeFalse())

		blocked = false
		for !b.seq.IsDone() {
			b.tick(false, sequencer.Execute, len(x))
		}
		Expect(b.out).To(Equal(expected(x, w)))
	})

	It("should finish immediately with zero rows", func() {
		b.run(sequencer.Execute, 0)

		Expect(b.seq.RowsIn()).To(BeZero())
		Expect(b.out).To(BeEmpty())
	})

	It("should never finish when input rows are missing", func() {
		b.words = pack(make([]int8, 8))
		b.tick(true, sequencer.Execute, 2)
		for i := 0; i < 200; i++ {
			b.tick(false, sequencer.Execute, 2)
		}

		Expect(b.seq.Phase()).To(Equal(sequencer.Streaming))
		Expect(b.seq.RowsIn()).To(Equal(1))
	})

	It("should return to idle on reset", func() {
		b.words = pack(make([]int8, 8))
		b.tick(true, sequencer.Execute, 3)
		b.tick(false, sequencer.Execute, 3)

		b.seq.Reset()

		Expect(b.seq.Phase()).To(Equal(sequencer.Idle))
		Expect(b.seq.Pending()).To(BeZero())
	})
})
