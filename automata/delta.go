package automata

// Delta computes the successor of st when the engine consumes color c whose
// category is cat. c is ColorNone for the zero-width transition performed at
// the end of a scan.
//
// The computation is a marked partial-derivative step: every thread in the
// descriptor advances over the consumed color, crossing any zero-width nodes
// (marks, pmarks, erasures, assertions) reachable before the next
// color-consuming node. After assertions test the category of the byte that
// produced st; Before assertions test cat.
//
// The resulting thread list is deduplicated by remaining expression
// (priority order keeps the first occurrence) and truncated after the first
// completed thread, then assigned a fresh position slot from w.
func Delta(w *WorkingArea, cat Category, c int, st *State, eps *Expr) *State {
	d := &dctx{c: c, prevCat: st.cat, cat: cat, eps: eps}
	desc := d.threads(nil, st.desc)
	desc = dedup(desc, eps, make(map[uint32]bool))
	idx := w.FreeIndex(desc)
	for i := range desc {
		assignThreadSlots(&desc[i], idx)
	}
	return newState(idx, cat, desc)
}

// ColorNone is the pseudo-color of the final zero-width transition.
const ColorNone = -1

type dctx struct {
	c       int
	prevCat Category
	cat     Category
	eps     *Expr
}

// threads appends the successors of every thread in l to acc, in priority
// order.
func (d *dctx) threads(acc []Thread, l []Thread) []Thread {
	for i := range l {
		acc = d.thread(acc, &l[i])
	}
	return acc
}

func (d *dctx) thread(acc []Thread, t *Thread) []Thread {
	switch t.kind {
	case tSeq:
		y := d.threads(nil, t.sub)
		return d.seq(acc, t.sem, y, t.expr)
	case tExp:
		return d.expr(acc, t.marks, t.expr)
	default: // tMatch: a completed thread stays completed
		return append(acc, *t)
	}
}

// expr appends the successors of a single expression thread to acc.
func (d *dctx) expr(acc []Thread, marks Marks, x *Expr) []Thread {
	switch x.def {
	case opCst:
		if d.c >= 0 && d.c < 256 && x.cset.Contains(byte(d.c)) {
			acc = append(acc, Thread{kind: tExp, marks: marks, expr: d.eps})
		}
		return acc
	case opEps:
		return append(acc, Thread{kind: tMatch, marks: marks})
	case opAlt:
		for _, s := range x.sub {
			acc = d.expr(acc, marks, s)
		}
		return acc
	case opSeq:
		y := d.expr(nil, marks, x.sub[0])
		return d.seq(acc, x.sem, y, x.sub[1])
	case opRep:
		y := d.expr(nil, marks, x.sub[0])
		exitMarks := marks
		if m, ok := firstMatch(y); ok {
			y = removeMatches(y)
			exitMarks = m
		}
		if x.rep == NonGreedy {
			acc = append(acc, Thread{kind: tMatch, marks: marks})
			return tseq(acc, x.sem, y, x)
		}
		acc = tseq(acc, x.sem, y, x)
		return append(acc, Thread{kind: tMatch, marks: exitMarks})
	case opMark:
		return append(acc, Thread{kind: tMatch, marks: marks.WithMark(x.m1)})
	case opPmark:
		return append(acc, Thread{kind: tMatch, marks: marks.WithPmark(x.pm)})
	case opErase:
		return append(acc, Thread{kind: tMatch, marks: marks.EraseRange(x.m1, x.m2)})
	case opBefore:
		if d.cat.Intersects(x.cat) {
			acc = append(acc, Thread{kind: tMatch, marks: marks})
		}
		return acc
	default: // opAfter
		if d.prevCat.Intersects(x.cat) {
			acc = append(acc, Thread{kind: tMatch, marks: marks})
		}
		return acc
	}
}

// seq continues the advanced left-hand threads y into z. When some thread of
// y has completed, the continuation is entered during the same transition;
// the semantics decides where the continuation ranks relative to the threads
// still inside y.
func (d *dctx) seq(acc []Thread, kind Sem, y []Thread, z *Expr) []Thread {
	m, ok := firstMatch(y)
	if !ok {
		return tseq(acc, kind, y, z)
	}
	switch kind {
	case Longest:
		acc = tseq(acc, kind, removeMatches(y), z)
		return d.expr(acc, m, z)
	case Shortest:
		acc = d.expr(acc, m, z)
		return tseq(acc, kind, removeMatches(y), z)
	default: // First
		before, after := splitAtMatch(y)
		acc = tseq(acc, kind, before, z)
		acc = d.expr(acc, m, z)
		return tseq(acc, kind, after, z)
	}
}

// tseq appends a bundle of threads continued by z. A single thread whose
// remaining expression is eps collapses into a plain thread on z.
func tseq(acc []Thread, kind Sem, l []Thread, z *Expr) []Thread {
	switch {
	case len(l) == 0:
		return acc
	case len(l) == 1 && l[0].kind == tExp && l[0].expr.IsEps():
		return append(acc, Thread{kind: tExp, marks: l[0].marks, expr: z})
	default:
		return append(acc, Thread{kind: tSeq, sub: l, expr: z, sem: kind})
	}
}

func firstMatch(l []Thread) (Marks, bool) {
	for i := range l {
		if l[i].kind == tMatch {
			return l[i].marks, true
		}
	}
	return NoMarks, false
}

func removeMatches(l []Thread) []Thread {
	out := make([]Thread, 0, len(l))
	for i := range l {
		if l[i].kind != tMatch {
			out = append(out, l[i])
		}
	}
	return out
}

// splitAtMatch splits l around its first completed thread. Completed threads
// in the tail are dominated by the one found and are dropped.
func splitAtMatch(l []Thread) (before, after []Thread) {
	for i := range l {
		if l[i].kind == tMatch {
			return l[:i], removeMatches(l[i+1:])
		}
	}
	return l, nil
}

// dedup removes lower-priority duplicates of the same remaining expression
// and truncates everything dominated by a completed thread. cont is the
// continuation a bare eps thread resolves to; seen is shared across the
// whole descriptor.
func dedup(l []Thread, cont *Expr, seen map[uint32]bool) []Thread {
	out := make([]Thread, 0, len(l))
	for i := range l {
		t := &l[i]
		switch t.kind {
		case tMatch:
			return append(out, *t)
		case tSeq:
			sub := dedup(t.sub, t.expr, seen)
			out = tseq(out, t.sem, sub, t.expr)
		default: // tExp
			key := t.expr.id
			if t.expr.IsEps() {
				key = cont.id
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, *t)
		}
	}
	return out
}

func assignThreadSlots(t *Thread, idx int) {
	if t.kind == tSeq {
		for i := range t.sub {
			assignThreadSlots(&t.sub[i], idx)
		}
		return
	}
	t.marks.assignSlots(idx)
}
