package extmem

// StallFunc decides whether a port asserts wait-request in a cycle. It must
// be a pure function of the cycle so that evaluation can be repeated.
type StallFunc func(cycle uint64) bool

// NoStall never asserts wait-request.
func NoStall(uint64) bool {
	return false
}

// EveryNth asserts wait-request on every n-th cycle.
func EveryNth(n uint64) StallFunc {
	if n == 0 {
		return NoStall
	}

	return func(cycle uint64) bool {
		return cycle%n == n-1
	}
}

// Always asserts wait-request forever.
func Always(uint64) bool {
	return true
}

// Random asserts wait-request with the given probability, derived from a
// seeded hash of the cycle.
func Random(seed uint64, probability float64) StallFunc {
	return func(cycle uint64) bool {
		h := splitmix64(seed ^ (cycle * 0x9e3779b97f4a7c15))
		return float64(h>>11)/(1<<53) < probability
	}
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb

	return x ^ (x >> 31)
}
