package rex

import (
	"github.com/coregx/rex/automata"
)

// Match is the result of a successful search. Group 0 always covers the
// whole match; further groups correspond to Group/GroupNamed constructors
// in declaration order.
//
// A Match keeps a reference to the searched input and is otherwise
// immutable.
type Match struct {
	s      []byte
	marks  []int // 2 per group: slots into gpos, -1 when unmatched
	pmarks automata.PmarkSet
	gpos   []int
	gcount int
}

// NumGroups returns the number of groups, including group 0.
func (m *Match) NumGroups() int {
	return m.gcount
}

// Offset returns the start and stop offsets of group i in the input.
// Returns ErrNoMatch when the group did not participate in the match or i
// is out of range.
func (m *Match) Offset(i int) (start, stop int, err error) {
	if i < 0 || 2*i+1 >= len(m.marks) {
		return 0, 0, ErrNoMatch
	}
	m1 := m.marks[2*i]
	if m1 == -1 {
		return 0, 0, ErrNoMatch
	}
	return m.gpos[m1], m.gpos[m.marks[2*i+1]], nil
}

// Start returns the start offset of group i.
func (m *Match) Start(i int) (int, error) {
	start, _, err := m.Offset(i)
	return start, err
}

// Stop returns the stop offset of group i.
func (m *Match) Stop(i int) (int, error) {
	_, stop, err := m.Offset(i)
	return stop, err
}

// Get returns the text of group i. Returns ErrNoMatch when the group did
// not participate in the match.
func (m *Match) Get(i int) ([]byte, error) {
	start, stop, err := m.Offset(i)
	if err != nil {
		return nil, err
	}
	return m.s[start:stop], nil
}

// GetOpt returns the text of group i and whether the group participated in
// the match.
func (m *Match) GetOpt(i int) ([]byte, bool) {
	b, err := m.Get(i)
	return b, err == nil
}

// GetString is Get as a string; an unmatched group yields "".
func (m *Match) GetString(i int) string {
	b, err := m.Get(i)
	if err != nil {
		return ""
	}
	return string(b)
}

// Test reports whether group i participated in the match.
func (m *Match) Test(i int) bool {
	return i >= 0 && 2*i < len(m.marks) && m.marks[2*i] != -1
}

// All returns the text of every group; unmatched groups yield empty
// slices.
func (m *Match) All() [][]byte {
	out := make([][]byte, m.gcount)
	for i := range out {
		if b, err := m.Get(i); err == nil {
			out[i] = b
		} else {
			out[i] = []byte{}
		}
	}
	return out
}

// AllOffset returns the offsets of every group; unmatched groups yield
// (-1, -1).
func (m *Match) AllOffset() [][2]int {
	out := make([][2]int, m.gcount)
	for i := range out {
		if start, stop, err := m.Offset(i); err == nil {
			out[i] = [2]int{start, stop}
		} else {
			out[i] = [2]int{-1, -1}
		}
	}
	return out
}

// HasMark reports whether the priority mark id fired on the matched path.
func (m *Match) HasMark(id MarkID) bool {
	return m.pmarks.Has(id)
}

// Marks returns the priority marks that fired, in ascending order.
func (m *Match) Marks() []MarkID {
	return m.pmarks.Slice()
}
