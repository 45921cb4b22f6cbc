package format

import "strings"

// CharSet is a set of bytes.
type CharSet [256]bool

// NewCharSet returns the set of bytes in chars.
func NewCharSet(chars string) CharSet {
	var s CharSet
	for i := range len(chars) {
		s[chars[i]] = true
	}
	return s
}

// Contains reports whether b is in the set.
func (s *CharSet) Contains(b byte) bool {
	return s[b]
}

// String returns the members in byte order.
func (s *CharSet) String() string {
	var sb strings.Builder
	for i, ok := range s {
		if ok {
			sb.WriteByte(byte(i))
		}
	}
	return sb.String()
}
