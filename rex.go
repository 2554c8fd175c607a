// Package rex is a regular-expression engine over combinator-built
// patterns.
//
// Patterns are not written in a textual syntax; they are assembled from
// constructors:
//
//	re := rex.Compile(rex.Seq(rex.Str("a"), rex.Rep(rex.Char('b')), rex.Str("c")))
//	m, err := re.Exec([]byte("xxabbbcyy"))
//	if err == nil {
//	    start, stop, _ := m.Offset(0)
//	    fmt.Println(start, stop) // 2 7
//	}
//
// Compilation lowers the pattern through case and character-set
// normalization, partitions the byte alphabet into colors, and translates
// to a marked non-deterministic automaton. Execution drives a lazily
// determinized automaton over the color-compressed input; capture groups
// and priority marks come out of the same single pass.
//
// The engine is byte-oriented with Latin-1 aware built-in classes. There
// are no backreferences and no lookaround beyond the zero-width anchors
// exposed as constructors.
//
// A compiled Regex is NOT safe for concurrent use: matching lazily
// materializes automaton states and mutates internal tables. Callers that
// share one Regex across goroutines must serialize matching externally, or
// compile one Regex per goroutine.
package rex

import (
	"errors"

	"github.com/coregx/rex/automata"
	"github.com/coregx/rex/charset"
	"github.com/coregx/rex/dfa"
	"github.com/coregx/rex/literal"
)

// ErrNoMatch is returned by Exec and the Match group accessors when there
// is nothing to report: no match, or an unmatched group.
var ErrNoMatch = errors.New("rex: no match")

// Regex is a compiled pattern. Build one with Compile; it is read-only
// afterwards except for the lazily grown automaton caches (see the package
// comment about concurrency).
type Regex struct {
	src        *Ast
	prog       *dfa.Prog
	groupCount int
	names      []GroupName
	anchored   bool
	lits       *literal.Set
}

// String renders the combinator structure the Regex was compiled from.
func (re *Regex) String() string {
	return re.src.String()
}

// Compile translates a pattern into an executable Regex.
//
// Unanchored patterns (those that may match anywhere) are compiled with an
// implicit non-greedy any* prefix; group 0 always covers the match itself.
func Compile(r *Ast) *Regex {
	anchored := anchoredAst(r)
	var wrapped *Ast
	if anchored {
		wrapped = Group(r)
	} else {
		wrapped = Seq(Shortest(Rep(Any())), Group(r))
	}

	norm := handleCase(false, wrapped)

	cm := automata.NewColorMap()
	needLnl := colorize(cm, norm)
	colors := cm.Freeze(needLnl)

	ids := automata.NewIds()
	eps := automata.Eps(ids)
	t := &translator{
		ids:    ids,
		cache:  make(map[string]charset.Cset),
		colors: colors,
	}
	expr, kind := t.translate(automata.First, false, automata.Greedy, norm)
	expr = t.enforceKind(automata.First, kind, expr)

	re := &Regex{
		src:        r,
		prog:       dfa.NewProg(expr, eps, colors),
		groupCount: t.pos / 2,
		names:      t.names,
		anchored:   anchored,
	}
	if !anchored {
		re.lits = extractLiterals(handleCase(false, r))
	}
	return re
}

// IsAnchored reports whether the pattern can only match at the search start
// position.
func (re *Regex) IsAnchored() bool {
	return re.anchored
}

// GroupNames returns the named groups and their indices, in declaration
// order. The slice is shared and must not be modified.
func (re *Regex) GroupNames() []GroupName {
	return re.names
}

// GroupIndex returns the index of the named group.
func (re *Regex) GroupIndex(name string) (int, bool) {
	for _, g := range re.names {
		if g.Name == name {
			return g.Index, true
		}
	}
	return 0, false
}

// NumGroups returns the number of groups, including group 0 (the whole
// match).
func (re *Regex) NumGroups() int {
	return re.groupCount
}

// literalThreshold is the alternation size above which the Aho-Corasick
// fast path beats driving the lazy automaton.
const literalThreshold = 8

// extractLiterals recognizes patterns that are a large plain alternation of
// non-empty literal strings, with no groups, marks or anchors. Such
// patterns get a multi-literal fast path.
func extractLiterals(r *Ast) *literal.Set {
	if r.op != opAlternative {
		return nil
	}
	alts := r.sub
	if len(alts) <= literalThreshold {
		return nil
	}
	lits := make([][]byte, 0, len(alts))
	for _, a := range alts {
		lit, ok := literalBytes(a)
		if !ok || len(lit) == 0 {
			return nil
		}
		lits = append(lits, lit)
	}
	ls, err := literal.NewSet(lits)
	if err != nil {
		return nil
	}
	return ls
}

// literalBytes flattens a normalized subtree into a fixed byte string, when
// it is one: a sequence of singleton sets.
func literalBytes(r *Ast) ([]byte, bool) {
	switch r.op {
	case opSet:
		if r.cs.Count() != 1 {
			return nil, false
		}
		return []byte{r.cs[0].Lo}, true
	case opSequence:
		var out []byte
		for _, s := range r.sub {
			b, ok := literalBytes(s)
			if !ok {
				return nil, false
			}
			out = append(out, b...)
		}
		return out, true
	default:
		return nil, false
	}
}

// checkBounds validates a (pos, n) window against the input, panicking with
// the offending API's name. n == -1 means "to the end of the input" and is
// the default used by the non-At variants.
func checkBounds(api string, b []byte, pos, n int) (last int) {
	if pos < 0 || n < -1 {
		panic("rex: " + api + ": negative position or length")
	}
	if n == -1 {
		if pos > len(b) {
			panic("rex: " + api + ": position out of range")
		}
		return len(b)
	}
	if pos+n > len(b) {
		panic("rex: " + api + ": window exceeds input")
	}
	return pos + n
}

// matchResult turns a successful automaton status into a Match.
func (re *Regex) matchResult(b []byte, st *automata.Status, gpos []int) *Match {
	marks := make([]int, 2*re.groupCount)
	for i := range marks {
		marks[i] = -1
	}
	for _, ms := range st.Marks {
		if ms.ID < len(marks) {
			marks[ms.ID] = ms.Slot
		}
	}
	return &Match{
		s:      b,
		marks:  marks,
		pmarks: st.Pmarks,
		gpos:   gpos,
		gcount: re.groupCount,
	}
}

// literalMatch builds a Match from the literal fast path.
func (re *Regex) literalMatch(b []byte, start, end int) *Match {
	return &Match{
		s:      b,
		marks:  []int{0, 1},
		gpos:   []int{start, end},
		gcount: 1,
	}
}

// execOpt is the shared driver behind the exec family.
func (re *Regex) execOpt(b []byte, pos, last int, groups bool) *Match {
	if re.lits != nil && pos >= 0 {
		if start, end, ok := re.lits.Find(b[:last], pos); ok {
			return re.literalMatch(b, start, end)
		}
		return nil
	}
	res := re.prog.Exec(b, pos, last, groups, false)
	if res.Status.Kind != automata.StatusMatch {
		return nil
	}
	return re.matchResult(b, res.Status, res.Positions)
}

// Exec returns the first match in b, or ErrNoMatch.
func (re *Regex) Exec(b []byte) (*Match, error) {
	return re.execErr("Exec", b, 0, -1)
}

// ExecAt is Exec over the window b[pos : pos+n]; n == -1 means to the end
// of b. An invalid window panics with the API name.
func (re *Regex) ExecAt(b []byte, pos, n int) (*Match, error) {
	return re.execErr("ExecAt", b, pos, n)
}

func (re *Regex) execErr(api string, b []byte, pos, n int) (*Match, error) {
	last := checkBounds(api, b, pos, n)
	m := re.execOpt(b, pos, last, true)
	if m == nil {
		return nil, ErrNoMatch
	}
	return m, nil
}

// ExecOpt returns the first match in b, or nil.
func (re *Regex) ExecOpt(b []byte) *Match {
	return re.execOpt(b, 0, checkBounds("ExecOpt", b, 0, -1), true)
}

// ExecOptAt is ExecOpt over a window.
func (re *Regex) ExecOptAt(b []byte, pos, n int) *Match {
	last := checkBounds("ExecOptAt", b, pos, n)
	return re.execOpt(b, pos, last, true)
}

// Match reports whether b contains a match. It runs without group tracking
// and is the cheapest of the exec family.
func (re *Regex) Match(b []byte) bool {
	return re.matchAt("Match", b, 0, -1)
}

// MatchAt is Match over a window.
func (re *Regex) MatchAt(b []byte, pos, n int) bool {
	return re.matchAt("MatchAt", b, pos, n)
}

func (re *Regex) matchAt(api string, b []byte, pos, n int) bool {
	last := checkBounds(api, b, pos, n)
	if re.lits != nil {
		return re.lits.IsMatch(b[:last], pos)
	}
	res := re.prog.Exec(b, pos, last, false, false)
	return res.Status.Kind == automata.StatusMatch
}

// MatchString is Match on a string.
func (re *Regex) MatchString(s string) bool {
	return re.Match([]byte(s))
}

// ExecString is Exec on a string.
func (re *Regex) ExecString(s string) (*Match, error) {
	return re.Exec([]byte(s))
}

// PartialKind is the coarse outcome of a partial match.
type PartialKind uint8

const (
	// Mismatch: the pattern cannot match, however the input is extended.
	Mismatch PartialKind = iota

	// Partial: no match yet, but appending input could produce one.
	Partial

	// Full: the pattern matched within the given input.
	Full
)

// String returns the outcome name.
func (k PartialKind) String() string {
	switch k {
	case Mismatch:
		return "mismatch"
	case Partial:
		return "partial"
	default:
		return "full"
	}
}

// ExecPartial classifies b: matched, mismatched, or in need of more input.
func (re *Regex) ExecPartial(b []byte) PartialKind {
	return re.execPartial("ExecPartial", b, 0, -1)
}

// ExecPartialAt is ExecPartial over a window.
func (re *Regex) ExecPartialAt(b []byte, pos, n int) PartialKind {
	return re.execPartial("ExecPartialAt", b, pos, n)
}

func (re *Regex) execPartial(api string, b []byte, pos, n int) PartialKind {
	last := checkBounds(api, b, pos, n)
	res := re.prog.Exec(b, pos, last, false, true)
	switch res.Status.Kind {
	case automata.StatusMatch:
		return Full
	case automata.Failed:
		return Mismatch
	default:
		return Partial
	}
}

// PartialResult is the detailed outcome of a partial match.
type PartialResult struct {
	// Kind classifies the outcome.
	Kind PartialKind

	// Groups holds the match when Kind is Full.
	Groups *Match

	// NoMatchStartsBefore is set when Kind is Partial: continuing the
	// search on extended input needs to revisit at most the bytes from
	// this offset on.
	NoMatchStartsBefore int
}

// ExecPartialDetailed classifies b like ExecPartial, with groups on a full
// match and a resume offset on a partial one.
func (re *Regex) ExecPartialDetailed(b []byte) PartialResult {
	return re.execPartialDetailed("ExecPartialDetailed", b, 0, -1)
}

// ExecPartialDetailedAt is ExecPartialDetailed over a window.
func (re *Regex) ExecPartialDetailedAt(b []byte, pos, n int) PartialResult {
	return re.execPartialDetailed("ExecPartialDetailedAt", b, pos, n)
}

func (re *Regex) execPartialDetailed(api string, b []byte, pos, n int) PartialResult {
	last := checkBounds(api, b, pos, n)
	res := re.prog.Exec(b, pos, last, true, true)
	switch res.Status.Kind {
	case automata.StatusMatch:
		return PartialResult{Kind: Full, Groups: re.matchResult(b, res.Status, res.Positions)}
	case automata.Failed:
		return PartialResult{Kind: Mismatch}
	default:
		return PartialResult{Kind: Partial, NoMatchStartsBefore: res.NoMatchStartsBefore}
	}
}
