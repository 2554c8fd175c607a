package automata

import (
	"sort"

	"golang.org/x/exp/maps"
)

// Ids allocates unique identifiers for expression nodes. Node equality and
// hashing are by id, never by structural traversal (the expression graph is
// a DAG and may share subtrees).
type Ids struct {
	next uint32
}

// NewIds returns a fresh id allocator.
func NewIds() *Ids {
	return &Ids{}
}

// Next returns a new unique id.
func (g *Ids) Next() uint32 {
	id := g.next
	g.next++
	return id
}

// Pmark identifies a priority mark: a user-supplied tag threaded through the
// automaton that surfaces in the match result as a set naming which
// alternatives fired.
type Pmark int

// PmarkGen allocates priority-mark identities.
type PmarkGen struct {
	next Pmark
}

// NewPmarkGen returns a fresh pmark allocator.
func NewPmarkGen() *PmarkGen {
	return &PmarkGen{}
}

// Next returns a new unique pmark.
func (g *PmarkGen) Next() Pmark {
	p := g.next
	g.next++
	return p
}

// PmarkSet is a set of priority marks.
type PmarkSet map[Pmark]struct{}

// Has returns true if p is in the set.
func (s PmarkSet) Has(p Pmark) bool {
	_, ok := s[p]
	return ok
}

// Add returns a set extended with p. The receiver is never mutated: thread
// mark records are shared between threads, so updates copy.
func (s PmarkSet) Add(p Pmark) PmarkSet {
	if s.Has(p) {
		return s
	}
	out := make(PmarkSet, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	out[p] = struct{}{}
	return out
}

// Slice returns the marks in ascending order.
func (s PmarkSet) Slice() []Pmark {
	out := maps.Keys(s)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Equal returns true if both sets hold the same marks.
func (s PmarkSet) Equal(t PmarkSet) bool {
	if len(s) != len(t) {
		return false
	}
	for k := range s {
		if !t.Has(k) {
			return false
		}
	}
	return true
}
