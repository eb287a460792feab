// Package verify checks device results against a golden integer reference
// and reports the differences.
package verify

import "math/rand"

// MatMul returns x·w in 32-bit two's complement arithmetic.
func MatMul(x, w [][]int8) [][]int32 {
	out := make([][]int32, len(x))
	for r, row := range x {
		out[r] = make([]int32, len(w[0]))
		for j := range out[r] {
			var sum int32
			for k, v := range row {
				sum += int32(v) * int32(w[k][j])
			}
			out[r][j] = sum
		}
	}

	return out
}

// RandomMatrix returns a rows×cols matrix of signed 8-bit values.
func RandomMatrix(r *rand.Rand, rows, cols int) [][]int8 {
	m := make([][]int8, rows)
	for i := range m {
		m[i] = make([]int8, cols)
		for j := range m[i] {
			m[i][j] = int8(r.Intn(256) - 128)
		}
	}

	return m
}

// ScaledIdentity returns an n×n matrix with s on the diagonal.
func ScaledIdentity(n int, s int8) [][]int8 {
	m := make([][]int8, n)
	for i := range m {
		m[i] = make([]int8, n)
		m[i][i] = s
	}

	return m
}

// Mismatch is one differing element.
type Mismatch struct {
	Row, Col  int
	Got, Want int64
}

// Compare checks a result matrix against the reference.
func Compare(name string, got, want [][]int32) *Report {
	r := &Report{Name: name, Rows: len(want)}
	if len(want) > 0 {
		r.Cols = len(want[0])
	}

	for i, row := range want {
		if i >= len(got) {
			r.MissingRows++
			continue
		}

		for j, v := range row {
			if j >= len(got[i]) || got[i][j] != v {
				g := int64(0)
				if j < len(got[i]) {
					g = int64(got[i][j])
				}
				r.Mismatches = append(r.Mismatches,
					Mismatch{Row: i, Col: j, Got: g, Want: int64(v)})
			}
		}
	}

	r.ExtraRows = max(0, len(got)-len(want))

	return r
}

// CompareWords checks a memory image against the reference.
func CompareWords(name string, got, want []uint32) *Report {
	r := &Report{Name: name, Rows: len(want), Cols: 1}

	for i, v := range want {
		if i >= len(got) {
			r.MissingRows++
			continue
		}

		if got[i] != v {
			r.Mismatches = append(r.Mismatches,
				Mismatch{Row: i, Got: int64(got[i]), Want: int64(v)})
		}
	}

	r.ExtraRows = max(0, len(got)-len(want))

	return r
}
