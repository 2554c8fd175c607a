package automata

import (
	"fmt"
	"strings"

	"github.com/coregx/rex/charset"
)

// Sem selects how ambiguous alternation and sequencing are resolved.
type Sem uint8

const (
	// First keeps the leftmost viable alternative (backtracking order).
	First Sem = iota

	// Longest keeps the longest match.
	Longest

	// Shortest keeps the shortest match.
	Shortest
)

// String returns the semantics name.
func (s Sem) String() string {
	switch s {
	case First:
		return "first"
	case Longest:
		return "longest"
	case Shortest:
		return "shortest"
	default:
		return fmt.Sprintf("sem(%d)", s)
	}
}

// RepKind selects how a repetition balances repeating against exiting.
type RepKind uint8

const (
	// Greedy repetitions prefer another iteration.
	Greedy RepKind = iota

	// NonGreedy repetitions prefer to exit.
	NonGreedy
)

// String returns the greediness name.
func (k RepKind) String() string {
	if k == NonGreedy {
		return "non-greedy"
	}
	return "greedy"
}

// op enumerates the expression node forms.
type op uint8

const (
	opCst op = iota
	opEps
	opAlt
	opSeq
	opRep
	opMark
	opErase
	opPmark
	opBefore
	opAfter
)

// Expr is a node of the marked NFA expression DAG. Nodes carry a unique id
// assigned at allocation; equality and hashing during matching use only ids,
// so shared subtrees are cheap and cycles through Rep continuations are
// safe.
type Expr struct {
	id  uint32
	def op

	cset charset.Cset // opCst: a set of colors
	sub  []*Expr      // opAlt alternatives; opSeq [left, right]; opRep [body]
	sem  Sem          // opSeq, opRep
	rep  RepKind      // opRep
	m1   int          // opMark id; opErase low
	m2   int          // opErase high
	pm   Pmark        // opPmark
	cat  Category     // opBefore, opAfter
}

// ID returns the node's unique identifier.
func (e *Expr) ID() uint32 {
	return e.id
}

// IsEps returns true for the empty expression.
func (e *Expr) IsEps() bool {
	return e.def == opEps
}

// Cst returns an expression matching one input color from s.
func Cst(g *Ids, s charset.Cset) *Expr {
	return &Expr{id: g.Next(), def: opCst, cset: s}
}

// Eps returns the empty expression.
func Eps(g *Ids) *Expr {
	return &Expr{id: g.Next(), def: opEps}
}

// Alt returns an alternation. Empty lists produce a never-matching
// expression; singleton lists are inlined.
func Alt(g *Ids, l []*Expr) *Expr {
	if len(l) == 1 {
		return l[0]
	}
	return &Expr{id: g.Next(), def: opAlt, sub: l}
}

// Seq returns the sequence of x then y under the given semantics. Eps
// operands are absorbed (on the right only under First semantics, where the
// disagreement point cannot be observed).
func Seq(g *Ids, kind Sem, x, y *Expr) *Expr {
	switch {
	case x.def == opEps:
		return y
	case y.def == opEps && kind == First:
		return x
	default:
		return &Expr{id: g.Next(), def: opSeq, sem: kind, sub: []*Expr{x, y}}
	}
}

// Rep returns an unbounded repetition of x.
func Rep(g *Ids, rep RepKind, kind Sem, x *Expr) *Expr {
	return &Expr{id: g.Next(), def: opRep, rep: rep, sem: kind, sub: []*Expr{x}}
}

// Mark returns a capture mark. Crossing it records the current position in
// the slot bound to mark id i.
func Mark(g *Ids, i int) *Expr {
	return &Expr{id: g.Next(), def: opMark, m1: i}
}

// Erase returns a node that clears the recorded positions of mark ids
// b..e when crossed. Nesting uses it to forget a previous iteration's
// captures.
func Erase(g *Ids, b, e int) *Expr {
	return &Expr{id: g.Next(), def: opErase, m1: b, m2: e}
}

// PmarkExpr returns a priority-mark node; crossing it adds p to the thread's
// pmark set.
func PmarkExpr(g *Ids, p Pmark) *Expr {
	return &Expr{id: g.Next(), def: opPmark, pm: p}
}

// Before returns a zero-width assertion on the category of the next input
// position.
func Before(g *Ids, c Category) *Expr {
	return &Expr{id: g.Next(), def: opBefore, cat: c}
}

// After returns a zero-width assertion on the category of the previous input
// position.
func After(g *Ids, c Category) *Expr {
	return &Expr{id: g.Next(), def: opAfter, cat: c}
}

// Rename returns a copy of x with fresh node ids throughout. Mark ids are
// preserved: a renamed copy captures into the same group slots, but its
// states never collide with the original's during deduplication. Repeat
// expansion uses it so each unrolled iteration is distinct.
func Rename(g *Ids, x *Expr) *Expr {
	switch x.def {
	case opCst, opEps, opMark, opErase, opPmark, opBefore, opAfter:
		c := *x
		c.id = g.Next()
		return &c
	default:
		c := *x
		c.id = g.Next()
		c.sub = make([]*Expr, len(x.sub))
		for i, s := range x.sub {
			c.sub[i] = Rename(g, s)
		}
		return &c
	}
}

// String renders the expression for debugging.
func (e *Expr) String() string {
	var b strings.Builder
	e.render(&b)
	return b.String()
}

func (e *Expr) render(b *strings.Builder) {
	switch e.def {
	case opCst:
		b.WriteString("cst")
		b.WriteString(e.cset.String())
	case opEps:
		b.WriteString("eps")
	case opAlt:
		b.WriteString("alt(")
		for i, s := range e.sub {
			if i > 0 {
				b.WriteByte('|')
			}
			s.render(b)
		}
		b.WriteByte(')')
	case opSeq:
		b.WriteString("seq<")
		b.WriteString(e.sem.String())
		b.WriteString(">(")
		e.sub[0].render(b)
		b.WriteByte(',')
		e.sub[1].render(b)
		b.WriteByte(')')
	case opRep:
		fmt.Fprintf(b, "rep<%s,%s>(", e.rep, e.sem)
		e.sub[0].render(b)
		b.WriteByte(')')
	case opMark:
		fmt.Fprintf(b, "mark(%d)", e.m1)
	case opErase:
		fmt.Fprintf(b, "erase(%d,%d)", e.m1, e.m2)
	case opPmark:
		fmt.Fprintf(b, "pmark(%d)", e.pm)
	case opBefore:
		fmt.Fprintf(b, "before(%02x)", uint8(e.cat))
	case opAfter:
		fmt.Fprintf(b, "after(%02x)", uint8(e.cat))
	}
}
