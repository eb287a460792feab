package api

// PackRow packs int8 lanes four per word, lane k in byte k%4 of word k/4.
func PackRow(row []int8) []uint32 {
	words := make([]uint32, (len(row)+3)/4)
	for k, v := range row {
		words[k/4] |= uint32(uint8(v)) << (8 * (k % 4))
	}

	return words
}

// FormatWeights lays out an N×N weight matrix as the N load beats the
// sequencer expects. Beat t carries column N-1-t, lane r holding w[r][N-1-t].
func FormatWeights(w [][]int8) []uint32 {
	n := len(w)
	words := make([]uint32, 0, n*((n+3)/4))

	col := make([]int8, n)
	for t := 0; t < n; t++ {
		for r := 0; r < n; r++ {
			col[r] = w[r][n-1-t]
		}
		words = append(words, PackRow(col)...)
	}

	return words
}

// FormatInputs lays out input rows back to back.
func FormatInputs(x [][]int8) []uint32 {
	words := []uint32{}
	for _, row := range x {
		words = append(words, PackRow(row)...)
	}

	return words
}

// ParseOutputs splits result words into rows of n signed values.
func ParseOutputs(words []uint32, n int) [][]int32 {
	rows := make([][]int32, len(words)/n)
	for r := range rows {
		rows[r] = make([]int32, n)
		for j := range rows[r] {
			rows[r][j] = int32(words[r*n+j])
		}
	}

	return rows
}
