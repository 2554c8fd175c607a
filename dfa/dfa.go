// Package dfa drives a compiled pattern over input bytes.
//
// The driver determinizes the marked NFA lazily: DFA states are created the
// first time a (state, color) transition is taken and interned by the
// structural key of their NFA descriptor, so repeated searches reuse the
// same transition tables. Each state fuses its bookkeeping with an inline
// transition table indexed by color, keeping the hot loop to one indexed
// load and one comparison.
//
// Two sentinels keep that loop branch-light:
//
//   - unknown (idx == -2): a shared singleton filling every untaken slot;
//     hitting it triggers on-demand state construction.
//   - break (idx == -3): a state whose NFA descriptor already matched or
//     failed; scanning must stop on entry.
//
// A Prog is not safe for concurrent use: matching mutates the interner, the
// per-category initial-state memo and the transition tables. Callers that
// need parallel matching over one pattern must serialize externally.
package dfa

import (
	"github.com/coregx/rex/automata"
)

// Sentinel values for state.idx.
const (
	idxUnknown = -2
	idxBreak   = -3
)

// state is a lazily-built DFA state. idx is the position slot of the
// underlying NFA descriptor, or one of the sentinels; realIdx keeps the slot
// for break states so the final position can still be recorded.
type state struct {
	idx     int
	realIdx int
	next    []*state
	final   []finalEntry
	desc    *automata.State
}

// finalEntry memoizes the zero-width end-of-scan transition for one end
// category.
type finalEntry struct {
	cat    automata.Category
	idx    int
	status *automata.Status
}

// unknownState is the shared sentinel filling untaken transition slots.
var unknownState = &state{idx: idxUnknown}

// Prog is a compiled pattern ready for execution: the initial NFA
// expression, the frozen color tables, and the lazily grown DFA.
type Prog struct {
	initial  *automata.Expr
	eps      *automata.Expr
	colors   *automata.Colors
	w        *automata.WorkingArea
	states   map[automata.Key]*state
	starting map[automata.Category]*state
}

// NewProg wraps a translated expression for execution. eps must be the
// shared empty expression allocated alongside expr.
func NewProg(expr, eps *automata.Expr, colors *automata.Colors) *Prog {
	return &Prog{
		initial:  expr,
		eps:      eps,
		colors:   colors,
		w:        automata.NewWorkingArea(),
		states:   make(map[automata.Key]*state),
		starting: make(map[automata.Category]*state),
	}
}

// Colors exposes the frozen color tables.
func (p *Prog) Colors() *automata.Colors {
	return p.colors
}

// mkState builds the DFA view of an NFA descriptor. Descriptors that already
// matched or failed become break states with no transition table.
func (p *Prog) mkState(desc *automata.State) *state {
	if desc.Status().Kind != automata.Running {
		return &state{idx: idxBreak, realIdx: desc.Idx(), desc: desc}
	}
	next := make([]*state, p.colors.Ncolor+1)
	for i := range next {
		next[i] = unknownState
	}
	return &state{idx: desc.Idx(), realIdx: desc.Idx(), next: next, desc: desc}
}

// findState interns desc.
func (p *Prog) findState(desc *automata.State) *state {
	if st, ok := p.states[desc.Key()]; ok {
		return st
	}
	st := p.mkState(desc)
	p.states[desc.Key()] = st
	return st
}

// initialState returns the memoized start state for a search whose left
// context has the given category.
func (p *Prog) initialState(cat automata.Category) *state {
	if st, ok := p.starting[cat]; ok {
		return st
	}
	st := p.findState(automata.Create(cat, p.initial))
	p.starting[cat] = st
	return st
}

// StateCount returns the number of interned DFA states. Useful in tests and
// for sizing diagnostics.
func (p *Prog) StateCount() int {
	return len(p.states)
}

// Result is the outcome of one search.
type Result struct {
	// Status is the authoritative outcome: match (with marks), failure, or
	// still running (partial searches only).
	Status *automata.Status

	// Positions holds the recorded scan positions, indexed by mark slots.
	// Nil when the search ran without group tracking.
	Positions []int

	// NoMatchStartsBefore is meaningful for running partial searches with
	// groups: no match can start before this offset.
	NoMatchStartsBefore int
}

// search carries the per-invocation mutable state of one scan.
type search struct {
	p         *Prog
	s         []byte
	pos, last int
	positions []int
	groups    bool
}

// Exec runs the pattern over s[pos:last]. groups selects mark recording;
// partial makes "still running at end of input" an observable outcome
// instead of forcing the final zero-width transition.
func (p *Prog) Exec(s []byte, pos, last int, groups, partial bool) Result {
	x := &search{p: p, s: s, pos: pos, last: last, groups: groups}
	if groups {
		n := p.w.IndexCount()
		if n < 10 {
			n = 10
		}
		x.positions = make([]int, n)
	}

	initCat := automata.SearchBoundary
	if pos == 0 {
		initCat |= automata.Inexistant
	} else {
		initCat |= automata.FromByte(s[pos-1])
	}

	st := x.scan(p.initialState(initCat), pos)

	var status *automata.Status
	if st.idx == idxBreak || partial {
		status = st.desc.Status()
	} else {
		finalCat := automata.SearchBoundary
		if last == len(s) {
			finalCat |= automata.Inexistant
		} else {
			finalCat |= automata.FromByte(s[last])
		}
		var idx int
		idx, status = x.final(st, finalCat)
		if groups {
			x.positions[idx] = last
		}
	}

	res := Result{Status: status, Positions: x.positions}
	if groups {
		res.NoMatchStartsBefore = x.positions[0]
	}
	return res
}

// scan runs the main loop, peeling off a trailing newline when the pattern
// reserved the synthetic last-newline color. The peeled '\n' is consumed by
// a single transition on that color so end-of-line anchors can tell a final
// newline from an interior one.
func (x *search) scan(st *state, pos int) *state {
	c := x.p.colors
	if c.Lnl >= 0 && x.last == len(x.s) && x.last > pos && x.s[x.last-1] == '\n' {
		last := x.last
		x.last = last - 1
		if x.groups {
			st = x.loopMarked(st, pos)
		} else {
			st = x.loopPlain(st, pos)
		}
		x.last = last
		if st.idx == idxBreak {
			return st
		}
		st1 := st.next[c.Lnl]
		if st1 == unknownState {
			desc := automata.Delta(x.p.w, automata.LastNewlineCat, c.Lnl, st.desc, x.p.eps)
			x.growPositions(desc)
			st1 = x.p.findState(desc)
			st.next[c.Lnl] = st1
		}
		if x.groups {
			if st1.idx >= 0 {
				x.positions[st1.idx] = last - 1
			} else if st1.idx == idxBreak {
				x.positions[st1.realIdx] = last - 1
			}
		}
		return st1
	}
	if x.groups {
		return x.loopMarked(st, pos)
	}
	return x.loopPlain(st, pos)
}

// loopMarked is the scan loop with mark recording: every state entry stores
// the current position into the state's slot, so marks resolved to that slot
// read the position at which they fired.
func (x *search) loopMarked(st *state, pos int) *state {
	colors := &x.p.colors.Table
	s := x.s
	for pos < x.last {
		st1 := st.next[colors[s[pos]]]
		if st1.idx >= 0 {
			x.positions[st1.idx] = pos
			st = st1
			pos++
		} else if st1.idx == idxBreak {
			x.positions[st1.realIdx] = pos
			return st1
		} else {
			// Untaken transition: materialize it and retry the same byte.
			x.validate(st, pos)
		}
	}
	return st
}

// loopPlain is the scan loop without mark recording.
func (x *search) loopPlain(st *state, pos int) *state {
	colors := &x.p.colors.Table
	s := x.s
	for pos < x.last {
		st1 := st.next[colors[s[pos]]]
		if st1.idx >= 0 {
			st = st1
			pos++
		} else if st1.idx == idxBreak {
			return st1
		} else {
			x.validate(st, pos)
		}
	}
	return st
}

// validate computes the transition of st on the byte at pos and stores it
// into the transition table.
func (x *search) validate(st *state, pos int) {
	c := x.p.colors.Of(x.s[pos])
	cat := x.p.colors.Category(c)
	desc := automata.Delta(x.p.w, cat, c, st.desc, x.p.eps)
	x.growPositions(desc)
	st.next[c] = x.p.findState(desc)
}

// final computes (and memoizes per end category) the zero-width transition
// taken when the scan reaches the end of the window.
func (x *search) final(st *state, cat automata.Category) (int, *automata.Status) {
	for _, f := range st.final {
		if f.cat == cat {
			return f.idx, f.status
		}
	}
	desc := automata.Delta(x.p.w, cat, automata.ColorNone, st.desc, x.p.eps)
	x.growPositions(desc)
	e := finalEntry{cat: cat, idx: desc.Idx(), status: desc.Status()}
	st.final = append(st.final, e)
	return e.idx, e.status
}

// growPositions doubles the positions buffer when slot demand reaches its
// length. Slot allocation hands out the smallest free index, so demand grows
// one slot at a time and a single doubling always suffices.
func (x *search) growPositions(desc *automata.State) {
	if !x.groups {
		return
	}
	if l := len(x.positions); desc.Idx() == l && l > 0 {
		np := make([]int, 2*l)
		copy(np, x.positions)
		x.positions = np
	}
}
