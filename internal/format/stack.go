package format

// indentStack holds the open indentation debts, most recent last.
// Every entry is strictly positive.
type indentStack struct {
	parts []int
}

func (s *indentStack) push(n int) {
	if n > 0 {
		s.parts = append(s.parts, n)
	}
}

// decrease peels k units off the most recent batches. A batch larger than
// what is left keeps the remainder; anything beyond an empty stack is dropped
// and returned.
func (s *indentStack) decrease(k int) (dropped int) {
	for k > 0 && len(s.parts) > 0 {
		top := len(s.parts) - 1
		if s.parts[top] > k {
			s.parts[top] -= k
			return 0
		}
		k -= s.parts[top]
		s.parts = s.parts[:top]
	}
	return k
}

// level is the batch count in progressive mode, the summed size otherwise.
func (s *indentStack) level(progressive bool) int {
	if progressive {
		return len(s.parts)
	}
	return s.total()
}

func (s *indentStack) total() int {
	sum := 0
	for _, p := range s.parts {
		sum += p
	}
	return sum
}

func (s *indentStack) depth() int {
	return len(s.parts)
}
