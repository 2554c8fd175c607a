package rex

import (
	"github.com/coregx/rex/automata"
	"github.com/coregx/rex/charset"
)

// colorize feeds every character set occurring in r to the color map.
// Anchors contribute their fixed splits. Returns true if the pattern needs
// the synthetic last-newline color.
func colorize(cm *automata.ColorMap, r *Ast) bool {
	needLnl := false
	var walk func(r *Ast)
	walk = func(r *Ast) {
		switch r.op {
		case opSet:
			cm.Split(r.cs)
		case opSequence, opAlternative:
			for _, s := range r.sub {
				walk(s)
			}
		case opRepeat, opSem, opSemGreedy, opGroup, opNoGroup, opNest, opPmark:
			walk(r.sub[0])
		case opBegLine, opEndLine:
			cm.Split(charset.CNewline)
		case opBegWord, opEndWord, opNotBound:
			cm.Split(charset.CWord)
		case opLastEndLine:
			needLnl = true
		}
		// Bos, Eos, Start, Stop: no splits; they only test categories that
		// exist independently of the alphabet partition.
	}
	walk(r)
	return needLnl
}

// GroupName records a named group and its index.
type GroupName struct {
	Name  string
	Index int
}

// translator lowers a normalized AST to the marked NFA. The semantic kind,
// group suppression and greediness flow down as inherited attributes; mark
// allocation and name collection are shared mutable state.
type translator struct {
	ids    *automata.Ids
	pos    int // next free mark id
	names  []GroupName
	cache  map[string]charset.Cset // byte set -> color set
	colors *automata.Colors
}

func (t *translator) colorSet(s charset.Cset) charset.Cset {
	k := make([]byte, 0, 2*len(s))
	for _, r := range s {
		k = append(k, r.Lo, r.Hi)
	}
	key := string(k)
	if cs, ok := t.cache[key]; ok {
		return cs
	}
	cs := t.colors.ColorSet(s)
	t.cache[key] = cs
	return cs
}

// translate returns the lowered expression along with the semantic kind it
// actually carries; the caller reconciles disagreements with enforceKind.
func (t *translator) translate(kind automata.Sem, ignGroup bool, greedy automata.RepKind, r *Ast) (*automata.Expr, automata.Sem) {
	switch r.op {
	case opSet:
		return automata.Cst(t.ids, t.colorSet(r.cs)), kind

	case opSequence:
		return t.transSeq(kind, ignGroup, greedy, r.sub), kind

	case opAlternative:
		merged := mergeSequences(r.sub)
		if len(merged) == 1 {
			return t.translate(kind, ignGroup, greedy, merged[0])
		}
		l := make([]*automata.Expr, len(merged))
		for i, s := range merged {
			cr, _ := t.translate(kind, ignGroup, greedy, s)
			l[i] = cr
		}
		return automata.Alt(t.ids, l), kind

	case opRepeat:
		cr, kind1 := t.translate(kind, ignGroup, greedy, r.sub[0])
		var rem *automata.Expr
		if r.max < 0 {
			rem = automata.Rep(t.ids, greedy, kind1, cr)
		} else {
			rem = automata.Eps(t.ids)
			for n := r.max - r.min; n > 0; n-- {
				iter := automata.Seq(t.ids, kind1, automata.Rename(t.ids, cr), rem)
				if greedy == automata.Greedy {
					rem = automata.Alt(t.ids, []*automata.Expr{iter, automata.Eps(t.ids)})
				} else {
					rem = automata.Alt(t.ids, []*automata.Expr{automata.Eps(t.ids), iter})
				}
			}
		}
		for n := r.min; n > 0; n-- {
			rem = automata.Seq(t.ids, kind1, automata.Rename(t.ids, cr), rem)
		}
		return rem, kind

	case opBegLine:
		return automata.After(t.ids, automata.Inexistant|automata.Newline), kind
	case opEndLine:
		return automata.Before(t.ids, automata.Inexistant|automata.Newline), kind
	case opBegWord:
		return automata.Seq(t.ids, automata.First,
			automata.After(t.ids, automata.Inexistant|automata.NotLetter),
			automata.Before(t.ids, automata.Letter)), kind
	case opEndWord:
		return automata.Seq(t.ids, automata.First,
			automata.After(t.ids, automata.Letter),
			automata.Before(t.ids, automata.Inexistant|automata.NotLetter)), kind
	case opNotBound:
		return automata.Alt(t.ids, []*automata.Expr{
			automata.Seq(t.ids, automata.First,
				automata.After(t.ids, automata.Letter),
				automata.Before(t.ids, automata.Letter)),
			automata.Seq(t.ids, automata.First,
				automata.After(t.ids, automata.Inexistant|automata.NotLetter),
				automata.Before(t.ids, automata.Inexistant|automata.NotLetter)),
		}), kind
	case opBegStr:
		return automata.After(t.ids, automata.Inexistant), kind
	case opEndStr:
		return automata.Before(t.ids, automata.Inexistant), kind
	case opLastEndLine:
		return automata.Before(t.ids, automata.Inexistant|automata.LastNewline), kind
	case opStart:
		return automata.After(t.ids, automata.SearchBoundary), kind
	case opStop:
		return automata.Before(t.ids, automata.SearchBoundary), kind

	case opSem:
		cr, kind1 := t.translate(r.sem, ignGroup, greedy, r.sub[0])
		return t.enforceKind(r.sem, kind1, cr), r.sem

	case opSemGreedy:
		return t.translate(kind, ignGroup, r.rk, r.sub[0])

	case opGroup:
		if ignGroup {
			return t.translate(kind, ignGroup, greedy, r.sub[0])
		}
		p := t.pos
		t.pos += 2
		if r.name != "" {
			t.names = append(t.names, GroupName{Name: r.name, Index: p / 2})
		}
		cr, kind1 := t.translate(kind, ignGroup, greedy, r.sub[0])
		return automata.Seq(t.ids, automata.First,
			automata.Mark(t.ids, p),
			automata.Seq(t.ids, automata.First, cr, automata.Mark(t.ids, p+1))), kind1

	case opNoGroup:
		return t.translate(kind, true, greedy, r.sub[0])

	case opNest:
		b := t.pos
		cr, kind1 := t.translate(kind, ignGroup, greedy, r.sub[0])
		e := t.pos - 1
		if e < b {
			return cr, kind1
		}
		return automata.Seq(t.ids, automata.First, automata.Erase(t.ids, b, e), cr), kind1

	case opPmark:
		cr, kind1 := t.translate(kind, ignGroup, greedy, r.sub[0])
		return automata.Seq(t.ids, automata.First, automata.PmarkExpr(t.ids, r.pm), cr), kind1

	default:
		// opCase, opNoCase, opInter, opCompl, opDiff are folded away by
		// handleCase before translation.
		panic("rex: translate: non-normalized node")
	}
}

// transSeq lowers a sequence right-associatively, absorbing empty elements.
func (t *translator) transSeq(kind automata.Sem, ignGroup bool, greedy automata.RepKind, l []*Ast) *automata.Expr {
	switch len(l) {
	case 0:
		return automata.Eps(t.ids)
	case 1:
		cr, kind1 := t.translate(kind, ignGroup, greedy, l[0])
		return t.enforceKind(kind, kind1, cr)
	default:
		cr, kind1 := t.translate(kind, ignGroup, greedy, l[0])
		rest := t.transSeq(kind, ignGroup, greedy, l[1:])
		switch {
		case rest.IsEps():
			return cr
		case cr.IsEps():
			return rest
		default:
			return automata.Seq(t.ids, kind1, cr, rest)
		}
	}
}

// enforceKind reconciles the kind requested by the context with the kind a
// subexpression was translated under. A First context observing a different
// inner kind wraps the expression so the disagreement point is preserved.
func (t *translator) enforceKind(outer, inner automata.Sem, cr *automata.Expr) *automata.Expr {
	if outer == automata.First && inner != automata.First {
		return automata.Seq(t.ids, inner, cr, automata.Eps(t.ids))
	}
	return cr
}

// mergeSequences factors a common leading element out of adjacent
// alternatives: Seq(x, y1) | Seq(x, y2) becomes Seq(x, y1|y2). Nested
// alternations are flattened into the scan first. The factoring applies
// once, at the top level of each alternative.
func mergeSequences(l []*Ast) []*Ast {
	if len(l) == 0 {
		return nil
	}
	head, rest := l[0], l[1:]
	if head.op == opAlternative {
		flat := make([]*Ast, 0, len(head.sub)+len(rest))
		flat = append(flat, head.sub...)
		flat = append(flat, rest...)
		return mergeSequences(flat)
	}
	merged := mergeSequences(rest)
	if head.op == opSequence && len(head.sub) > 0 && len(merged) > 0 {
		next := merged[0]
		if next.op == opSequence && len(next.sub) > 0 && astEqual(head.sub[0], next.sub[0]) {
			combined := Seq(head.sub[0], Alt(Seq(head.sub[1:]...), Seq(next.sub[1:]...)))
			return append([]*Ast{combined}, merged[1:]...)
		}
	}
	return append([]*Ast{head}, merged...)
}
