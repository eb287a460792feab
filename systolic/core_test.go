package systolic_test

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/npusim/pe"
	"github.com/sarchlab/npusim/systolic"
)

func loadWeights(c *systolic.Core, w [][]int8) {
	n := c.Size()
	for t := 0; t < n; t++ {
		col := make([]int8, n)
		for r := 0; r < n; r++ {
			col[r] = w[r][n-1-t]
		}
		c.Tick(systolic.Input{X: col, Load: true})
	}

	for !c.Idle() {
		c.Tick(systolic.Input{})
	}

	c.Tick(systolic.Input{Latch: true})
}

// loadWeightsSpaced loads w like loadWeights but leaves idle cycles after
// every load beat, as the sequencer does when a row spans several words.
func loadWeightsSpaced(c *systolic.Core, w [][]int8, idle int) {
	n := c.Size()
	for t := 0; t < n; t++ {
		col := make([]int8, n)
		for r := 0; r < n; r++ {
			col[r] = w[r][n-1-t]
		}
		c.Tick(systolic.Input{X: col, Load: true})

		for k := 0; k < idle; k++ {
			c.Tick(systolic.Input{X: make([]int8, n)})
		}
	}

	for !c.Idle() {
		c.Tick(systolic.Input{})
	}

	c.Tick(systolic.Input{Latch: true})
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

func reference(x, w [][]int8) [][]int32 {
	out := make([][]int32, len(x))
	for r := range x {
		out[r] = make([]int32, len(w[0]))
		for j := range w[0] {
			for k := range w {
				out[r][j] += int32(x[r][k]) * int32(w[k][j])
			}
		}
	}

	return out
}

// stream feeds rows into the core, inserting a bubble whenever gap returns
// true, and collects every valid output row.
func stream(c *systolic.Core, x [][]int8, gap func() bool) [][]int32 {
	results := [][]int32{}
	next := 0

	for cycle := 0; cycle < 10000; cycle++ {
		if out := c.Eval(); out.Valid {
			results = append(results, out.Y)
		}

		if next >= len(x) && c.Idle() {
			break
		}

		in := systolic.Input{}
		if next < len(x) && !gap() {
			in.X = x[next]
			in.Valid = true
			next++
		}

		c.Tick(in)
	}

	return results
}

var _ = Describe("Core", func() {
	for _, kind := range []pe.Kind{pe.Registered, pe.Handshake} {
		kind := kind

		Context(kind.String(), func() {
			var c *systolic.Core

			BeforeEach(func() {
				c = systolic.NewCore(8, kind)
			})

			It("should load weights column by column", func() {
				r := rand.New(rand.NewSource(1))
				w := randomMatrix(r, 8, 8)

				loadWeights(c, w)

				Expect(c.Weights()).To(Equal(w))
				Expect(c.Idle()).To(BeTrue())
			})

			It("should multiply by a scaled identity", func() {
				w := make([][]int8, 8)
				for i := range w {
					w[i] = make([]int8, 8)
					w[i][i] = 5
				}
				loadWeights(c, w)

				x := [][]int8{{10, 10, 10, 10, 10, 10, 10, 10}}
				out := stream(c, x, func() bool { return false })

				Expect(out).To(HaveLen(1))
				Expect(out[0]).To(Equal(
					[]int32{50, 50, 50, 50, 50, 50, 50, 50}))
			})

			It("should load weights with idle cycles between beats", func() {
				w := make([][]int8, 8)
				for i := range w {
					w[i] = make([]int8, 8)
					w[i][i] = 5
				}
				loadWeightsSpaced(c, w, 1)

				Expect(c.Weights()).To(Equal(w))

				x := [][]int8{{10, 10, 10, 10, 10, 10, 10, 10}}
				out := stream(c, x, func() bool { return false })

				Expect(out).To(Equal([][]int32{
					{50, 50, 50, 50, 50, 50, 50, 50},
				}))
			})

			It("should load random weights with uneven gaps", func() {
				r := rand.New(rand.NewSource(6))
				w := randomMatrix(r, 8, 8)
				x := randomMatrix(r, 10, 8)

				loadWeightsSpaced(c, w, 3)
				out := stream(c, x, func() bool { return false })

				Expect(c.Weights()).To(Equal(w))
				Expect(out).To(Equal(reference(x, w)))
			})

			It("should produce the first result after the pipeline latency", func() {
				r := rand.New(rand.NewSource(2))
				loadWeights(c, randomMatrix(r, 8, 8))

				c.Tick(systolic.Input{X: make([]int8, 8), Valid: true})
				cycles := 1
				for !c.Eval().Valid {
					c.Tick(systolic.Input{})
					cycles++
					Expect(cycles).To(BeNumerically("<", 100))
				}

				Expect(cycles).To(Equal(c.Latency()))
				Expect(c.Latency()).To(Equal(15))
			})

			It("should compute X·W for random matrices", func() {
				r := rand.New(rand.NewSource(3))
				w := randomMatrix(r, 8, 8)
				x := randomMatrix(r, 37, 8)
				loadWeights(c, w)

				out := stream(c, x, func() bool { return false })

				Expect(out).To(Equal(reference(x, w)))
			})

			It("should be unaffected by input bubbles", func() {
				r := rand.New(rand.NewSource(4))
				w := randomMatrix(r, 8, 8)
				x := randomMatrix(r, 20, 8)
				loadWeights(c, w)

				out := stream(c, x, func() bool { return r.Intn(3) == 0 })

				Expect(out).To(Equal(reference(x, w)))
			})

			It("should add the accumulator seeds", func() {
				w := make([][]int8, 8)
				for i := range w {
					w[i] = make([]int8, 8)
				}
				loadWeights(c, w)

				seeds := []int32{1, 2, 3, 4, 5, 6, 7, 8}
				c.Tick(systolic.Input{X: make([]int8, 8), Valid: true, Seeds: seeds})
				for !c.Eval().Valid {
					c.Tick(systolic.Input{Seeds: seeds})
				}

				Expect(c.Eval().Y).To(Equal(seeds))
			})

			It("should become idle after reset", func() {
				c.Tick(systolic.Input{X: make([]int8, 8), Valid: true})
				Expect(c.Idle()).To(BeFalse())

				c.Reset()

				Expect(c.Idle()).To(BeTrue())
			})
		})
	}

	It("should keep registered weights active while shifting", func() {
		c := systolic.NewCore(2, pe.Registered)
		c.Tick(systolic.Input{X: []int8{1, 3}, Load: true})
		c.Tick(systolic.Input{X: []int8{2, 4}, Load: true})
		c.Tick(systolic.Input{})

		Expect(c.Weights()).To(Equal([][]int8{{2, 1}, {4, 3}}))
	})

	It("should not activate handshake weights before the latch", func() {
		c := systolic.NewCore(2, pe.Handshake)
		c.Tick(systolic.Input{X: []int8{1, 3}, Load: true})
		c.Tick(systolic.Input{X: []int8{2, 4}, Load: true})
		c.Tick(systolic.Input{})

		Expect(c.Weights()).To(Equal([][]int8{{0, 0}, {0, 0}}))

		c.Tick(systolic.Input{Latch: true})
		Expect(c.Weights()).To(Equal([][]int8{{2, 1}, {4, 3}}))
	})

	It("should panic on a non-positive size", func() {
		Expect(func() { systolic.NewArray(0, pe.Registered) }).To(Panic())
	})
})
