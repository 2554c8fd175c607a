// Package literal provides a multi-literal fast path.
//
// When a whole pattern reduces to an alternation of plain byte strings, an
// Aho-Corasick automaton answers leftmost searches directly, bypassing the
// lazy DFA. The compiler decides eligibility (no user groups, no priority
// marks, no anchors, non-empty literals); this package only owns the
// automaton.
package literal

import (
	"github.com/coregx/ahocorasick"
)

// Set is a compiled multi-literal searcher.
type Set struct {
	auto *ahocorasick.Automaton
	lits [][]byte
}

// NewSet builds a searcher over the given literals, in priority order.
// Returns nil (and the build error) when the automaton cannot be built;
// callers fall back to the general engine.
func NewSet(lits [][]byte) (*Set, error) {
	builder := ahocorasick.NewBuilder()
	for _, l := range lits {
		builder.AddPattern(l)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, err
	}
	return &Set{auto: auto, lits: lits}, nil
}

// Find returns the leftmost occurrence of any literal in s at or after
// position at. ok is false when there is none.
func (ls *Set) Find(s []byte, at int) (start, end int, ok bool) {
	if at >= len(s) {
		return 0, 0, false
	}
	m := ls.auto.Find(s, at)
	if m == nil {
		return 0, 0, false
	}
	return m.Start, m.End, true
}

// IsMatch returns true if any literal occurs in s at or after position at.
func (ls *Set) IsMatch(s []byte, at int) bool {
	_, _, ok := ls.Find(s, at)
	return ok
}

// Len returns the number of literals.
func (ls *Set) Len() int {
	return len(ls.lits)
}
