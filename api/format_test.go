package api

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Format", func() {
	It("should pack lanes little end first", func() {
		words := PackRow([]int8{1, 2, 3, 4, -1})

		Expect(words).To(Equal([]uint32{0x04030201, 0x000000ff}))
	})

	It("should emit the last column first", func() {
		w := [][]int8{
			{1, 2},
			{3, 4},
		}

		Expect(FormatWeights(w)).To(Equal([]uint32{0x0402, 0x0301}))
	})

	It("should lay input rows back to back", func() {
		x := [][]int8{{1, 2, 3, 4, 5, 6, 7, 8}, {-1, 0, 0, 0, 0, 0, 0, 0}}

		Expect(FormatInputs(x)).To(Equal([]uint32{
			0x04030201, 0x08070605, 0x000000ff, 0,
		}))
	})

	It("should parse signed outputs", func() {
		rows := ParseOutputs([]uint32{1, 0xffffffff, 0x80000000, 7}, 2)

		Expect(rows).To(Equal([][]int32{{1, -1}, {-2147483648, 7}}))
	})
})
