package memhost

// Stack holds open pages, most recent last.
type Stack struct {
	entries []Page
}

// NewStack creates a new empty page stack.
func NewStack() *Stack {
	return &Stack{
		entries: make([]Page, 0),
	}
}

// Push adds a page on top.
func (s *Stack) Push(p Page) {
	s.entries = append(s.entries, p)
}

// Replace swaps the top page for p, or pushes p onto an empty stack.
func (s *Stack) Replace(p Page) {
	if len(s.entries) == 0 {
		s.Push(p)
		return
	}
	s.entries[len(s.entries)-1] = p
}

// Truncate keeps the first n pages.
func (s *Stack) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(s.entries) {
		s.entries = s.entries[:n]
	}
}

// Len returns the number of pages in the stack.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Clear removes all pages from the stack.
func (s *Stack) Clear() {
	s.entries = s.entries[:0]
}

// Pages returns a copy of the stack, bottom first.
func (s *Stack) Pages() []Page {
	out := make([]Page, len(s.entries))
	copy(out, s.entries)
	return out
}
