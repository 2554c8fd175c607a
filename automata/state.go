package automata

import (
	"github.com/dchest/siphash"

	"github.com/coregx/rex/internal/conv"
	"github.com/coregx/rex/internal/sparse"
)

// MarkSlot binds a mark id to the position slot holding its recorded offset.
type MarkSlot struct {
	ID   int
	Slot int
}

// Marks is the per-thread capture record: an association from mark ids to
// position slots, plus the set of priority marks crossed so far.
//
// Marks values are shared freely between threads and states; every update
// returns a new value. A slot of -1 denotes a mark crossed during the
// current transition whose slot has not been assigned yet; state creation
// resolves all -1 entries to the state's slot.
type Marks struct {
	marks  []MarkSlot
	pmarks PmarkSet
}

// NoMarks is the empty capture record.
var NoMarks = Marks{}

// WithMark returns marks extended with a fresh (unassigned) record for id,
// replacing any previous record for the same id.
func (m Marks) WithMark(id int) Marks {
	out := make([]MarkSlot, 0, len(m.marks)+1)
	out = append(out, MarkSlot{ID: id, Slot: -1})
	for _, e := range m.marks {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return Marks{marks: out, pmarks: m.pmarks}
}

// WithPmark returns marks with p added to the pmark set.
func (m Marks) WithPmark(p Pmark) Marks {
	return Marks{marks: m.marks, pmarks: m.pmarks.Add(p)}
}

// EraseRange returns marks with every record for ids b..e removed. The
// erased groups read as unmatched afterwards.
func (m Marks) EraseRange(b, e int) Marks {
	out := make([]MarkSlot, 0, len(m.marks))
	for _, ms := range m.marks {
		if ms.ID < b || ms.ID > e {
			out = append(out, ms)
		}
	}
	return Marks{marks: out, pmarks: m.pmarks}
}

// assignSlots replaces unassigned (-1) slots with idx, in place. Fresh -1
// records are created during the current transition only, so the backing
// arrays are never shared with an interned state.
func (m Marks) assignSlots(idx int) {
	for i := range m.marks {
		if m.marks[i].Slot == -1 {
			m.marks[i].Slot = idx
		}
	}
}

// Slots returns the mark association.
func (m Marks) Slots() []MarkSlot {
	return m.marks
}

// Pmarks returns the priority-mark set.
func (m Marks) Pmarks() PmarkSet {
	return m.pmarks
}

// threadKind discriminates the three thread forms.
type threadKind uint8

const (
	// tExp is a thread whose remaining obligation is a single expression.
	tExp threadKind = iota

	// tSeq is a bundle of threads all continued by the same expression.
	tSeq

	// tMatch is a completed thread carrying its capture record.
	tMatch
)

// Thread is one element of a state descriptor: a simulated NFA thread with
// its pending work and captures. Threads are ordered by priority; the head
// of a descriptor is the preferred outcome.
type Thread struct {
	kind  threadKind
	marks Marks    // tExp, tMatch
	expr  *Expr    // tExp: remaining expression; tSeq: shared continuation
	sub   []Thread // tSeq: bundled threads
	sem   Sem      // tSeq
}

// StatusKind classifies a state.
type StatusKind uint8

const (
	// Running means more input may still produce a match.
	Running StatusKind = iota

	// Failed means no continuation can match.
	Failed

	// StatusMatch means the highest-priority thread has matched.
	StatusMatch
)

// Status is the classification of a state, with the winning captures for
// matches.
type Status struct {
	Kind   StatusKind
	Marks  []MarkSlot
	Pmarks PmarkSet
}

// State is a descriptor of the NFA after some number of transitions: an
// ordered list of threads, the category of the input byte that produced it,
// and the position slot assigned to it.
//
// States are interned by the DFA driver; Key is a structural 128-bit hash
// covering slot, category, threads, marks and pmarks.
type State struct {
	idx    int
	cat    Category
	desc   []Thread
	key    Key
	status *Status
}

// Key is the interning key of a state.
type Key struct {
	Lo, Hi uint64
}

const (
	stateK0 = 0x7265782d7374617 // arbitrary fixed keys, stable per process
	stateK1 = 0x74652d6b657931
)

// Create returns the initial state for a search whose left context has the
// given category.
func Create(cat Category, e *Expr) *State {
	return newState(0, cat, []Thread{{kind: tExp, marks: NoMarks, expr: e}})
}

func newState(idx int, cat Category, desc []Thread) *State {
	st := &State{idx: idx, cat: cat, desc: desc}
	buf := make([]byte, 0, 128)
	buf = appendUint32(buf, uint32(idx))
	buf = append(buf, byte(cat))
	buf = appendThreads(buf, desc)
	lo, hi := siphash.Hash128(stateK0, stateK1, buf)
	st.key = Key{Lo: lo, Hi: hi}
	return st
}

func appendUint32(buf []byte, v uint32) []byte {
	return append(buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

func appendMarks(buf []byte, m Marks) []byte {
	buf = appendUint32(buf, uint32(len(m.marks)))
	for _, e := range m.marks {
		buf = appendUint32(buf, uint32(e.ID))
		buf = appendUint32(buf, uint32(e.Slot))
	}
	ps := m.pmarks.Slice()
	buf = appendUint32(buf, uint32(len(ps)))
	for _, p := range ps {
		buf = appendUint32(buf, uint32(p))
	}
	return buf
}

func appendThreads(buf []byte, l []Thread) []byte {
	for _, t := range l {
		buf = append(buf, byte(t.kind))
		switch t.kind {
		case tExp:
			buf = appendUint32(buf, t.expr.id)
			buf = appendMarks(buf, t.marks)
		case tSeq:
			buf = append(buf, byte(t.sem))
			buf = appendUint32(buf, t.expr.id)
			buf = appendThreads(buf, t.sub)
			buf = append(buf, 0xFE)
		case tMatch:
			buf = appendMarks(buf, t.marks)
		}
	}
	return append(buf, 0xFF)
}

// Idx returns the position slot assigned to the state.
func (s *State) Idx() int {
	return s.idx
}

// Category returns the category of the byte that produced the state.
func (s *State) Category() Category {
	return s.cat
}

// Key returns the interning key.
func (s *State) Key() Key {
	return s.key
}

// Status classifies the state. The result is computed once and cached.
func (s *State) Status() *Status {
	if s.status != nil {
		return s.status
	}
	var st Status
	switch {
	case len(s.desc) == 0:
		st.Kind = Failed
	case s.desc[0].kind == tMatch:
		m := s.desc[0].marks
		st.Kind = StatusMatch
		st.Marks = m.marks
		st.Pmarks = m.pmarks
	default:
		st.Kind = Running
	}
	s.status = &st
	return s.status
}

// WorkingArea allocates position slots for states. A state's slot must not
// collide with any slot already referenced by the marks in its descriptor,
// since those slots hold positions recorded at earlier transitions.
type WorkingArea struct {
	used *sparse.Set
	n    int
}

// NewWorkingArea returns a working area sized for the initial positions
// buffer.
func NewWorkingArea() *WorkingArea {
	const initial = 10
	return &WorkingArea{used: sparse.New(initial), n: initial}
}

// IndexCount returns the current size of the slot index space. Position
// buffers sized to it can hold any slot handed out so far.
func (w *WorkingArea) IndexCount() int {
	return w.n
}

// FreeIndex returns the smallest slot not referenced by desc, growing the
// index space when every slot is taken.
func (w *WorkingArea) FreeIndex(desc []Thread) int {
	w.used.Clear()
	w.markUsed(desc)
	for i := 0; i < w.n; i++ {
		if !w.used.Contains(uint32(i)) {
			return i
		}
	}
	idx := w.n
	w.n *= 2
	w.used = sparse.New(conv.IntToUint32(w.n))
	return idx
}

func (w *WorkingArea) markUsed(l []Thread) {
	for i := range l {
		t := &l[i]
		if t.kind == tSeq {
			w.markUsed(t.sub)
			continue
		}
		for _, e := range t.marks.marks {
			if e.Slot >= 0 {
				w.used.Insert(uint32(e.Slot))
			}
		}
	}
}
