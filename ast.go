package rex

import (
	"fmt"

	"github.com/coregx/rex/automata"
	"github.com/coregx/rex/charset"
)

// astOp enumerates the combinator forms. The set is closed: compilation
// pattern-matches exhaustively over it.
type astOp uint8

const (
	opSet astOp = iota
	opSequence
	opAlternative
	opRepeat
	opBegLine
	opEndLine
	opBegWord
	opEndWord
	opNotBound
	opBegStr
	opEndStr
	opLastEndLine
	opStart
	opStop
	opSem
	opSemGreedy
	opGroup
	opNoGroup
	opNest
	opCase
	opNoCase
	opInter
	opCompl
	opDiff
	opPmark
)

// Ast is a structured regular expression built by the combinator
// constructors in this package. Values are immutable once built; Compile
// never mutates its argument.
type Ast struct {
	op       astOp
	cs       charset.Cset
	sub      []*Ast
	min, max int // opRepeat bounds; max < 0 means unbounded
	name     string
	sem      automata.Sem
	rk       automata.RepKind
	pm       automata.Pmark
}

func setAst(cs charset.Cset) *Ast {
	return &Ast{op: opSet, cs: cs}
}

func wrap(op astOp, r *Ast) *Ast {
	return &Ast{op: op, sub: []*Ast{r}}
}

// Char matches exactly the byte c.
func Char(c byte) *Ast {
	return setAst(charset.Single(c))
}

// Str matches the literal byte string s. An empty s matches the empty
// string.
func Str(s string) *Ast {
	l := make([]*Ast, len(s))
	for i := 0; i < len(s); i++ {
		l[i] = Char(s[i])
	}
	return Seq(l...)
}

// Set matches any single byte occurring in s.
func Set(s string) *Ast {
	cs := charset.Empty
	for i := 0; i < len(s); i++ {
		cs = cs.Union(charset.Single(s[i]))
	}
	return setAst(cs)
}

// Rg matches any byte in the inclusive range lo..hi.
// Panics if lo > hi.
func Rg(lo, hi byte) *Ast {
	if lo > hi {
		panic("rex: Rg: lo > hi")
	}
	return setAst(charset.Seq(lo, hi))
}

// Alt matches any of the alternatives, in preference order under the
// semantics in effect. Alt() never matches.
func Alt(l ...*Ast) *Ast {
	if len(l) == 1 {
		return l[0]
	}
	return &Ast{op: opAlternative, sub: l}
}

// Seq matches the concatenation of its arguments. Seq() matches the empty
// string.
func Seq(l ...*Ast) *Ast {
	if len(l) == 1 {
		return l[0]
	}
	return &Ast{op: opSequence, sub: l}
}

// Empty never matches.
func Empty() *Ast {
	return Alt()
}

// Epsilon matches the empty string.
func Epsilon() *Ast {
	return Seq()
}

// RepN matches between i and j repetitions of r; j < 0 means unbounded.
// Panics if i < 0 or 0 <= j < i.
func RepN(r *Ast, i, j int) *Ast {
	if i < 0 {
		panic("rex: RepN: negative lower bound")
	}
	if j >= 0 && j < i {
		panic("rex: RepN: upper bound smaller than lower bound")
	}
	if i == 0 && j == 0 {
		return Epsilon()
	}
	if i == 1 && j == 1 {
		return r
	}
	return &Ast{op: opRepeat, sub: []*Ast{r}, min: i, max: j}
}

// Rep matches zero or more repetitions of r.
func Rep(r *Ast) *Ast {
	return RepN(r, 0, -1)
}

// Rep1 matches one or more repetitions of r.
func Rep1(r *Ast) *Ast {
	return RepN(r, 1, -1)
}

// Opt matches r or the empty string.
func Opt(r *Ast) *Ast {
	return RepN(r, 0, 1)
}

// Bol matches at the beginning of a line (start of input or after a
// newline).
func Bol() *Ast { return &Ast{op: opBegLine} }

// Eol matches at the end of a line (end of input or before a newline).
func Eol() *Ast { return &Ast{op: opEndLine} }

// Bow matches at the beginning of a word.
func Bow() *Ast { return &Ast{op: opBegWord} }

// Eow matches at the end of a word.
func Eow() *Ast { return &Ast{op: opEndWord} }

// NotBoundary matches everywhere except at a word boundary.
func NotBoundary() *Ast { return &Ast{op: opNotBound} }

// Bos matches at the beginning of the input.
func Bos() *Ast { return &Ast{op: opBegStr} }

// Eos matches at the end of the input.
func Eos() *Ast { return &Ast{op: opEndStr} }

// Leol matches at the end of the input, or just before a final newline.
func Leol() *Ast { return &Ast{op: opLastEndLine} }

// Start matches at the position the search started from.
func Start() *Ast { return &Ast{op: opStart} }

// Stop matches at the position the search window stops at.
func Stop() *Ast { return &Ast{op: opStop} }

// Word matches r as a whole word.
func Word(r *Ast) *Ast {
	return Seq(Bow(), r, Eow())
}

// WholeString matches r against the entire input.
func WholeString(r *Ast) *Ast {
	return Seq(Bos(), r, Eos())
}

func semAst(k automata.Sem, r *Ast) *Ast {
	a := wrap(opSem, r)
	a.sem = k
	return a
}

// Longest resolves ambiguity inside r towards the longest match.
func Longest(r *Ast) *Ast { return semAst(automata.Longest, r) }

// Shortest resolves ambiguity inside r towards the shortest match.
func Shortest(r *Ast) *Ast { return semAst(automata.Shortest, r) }

// First resolves ambiguity inside r towards the first alternative
// (backtracking order). This is the default.
func First(r *Ast) *Ast { return semAst(automata.First, r) }

func greedyAst(k automata.RepKind, r *Ast) *Ast {
	a := wrap(opSemGreedy, r)
	a.rk = k
	return a
}

// Greedy makes repetitions inside r prefer more iterations. This is the
// default.
func Greedy(r *Ast) *Ast { return greedyAst(automata.Greedy, r) }

// NonGreedy makes repetitions inside r prefer fewer iterations.
func NonGreedy(r *Ast) *Ast { return greedyAst(automata.NonGreedy, r) }

// Group captures the text matched by r as a numbered group.
func Group(r *Ast) *Ast {
	return wrap(opGroup, r)
}

// GroupNamed captures the text matched by r as a named group. The group
// also gets the next number, like an unnamed one.
func GroupNamed(name string, r *Ast) *Ast {
	a := wrap(opGroup, r)
	a.name = name
	return a
}

// NoGroup suppresses all groups inside r: they capture nothing, allocate
// nothing and record no names.
func NoGroup(r *Ast) *Ast {
	return wrap(opNoGroup, r)
}

// Nest makes the groups inside r behave like freshly-entered groups on each
// iteration of an enclosing repetition: captures from a previous iteration
// are forgotten when r is re-entered.
func Nest(r *Ast) *Ast {
	return wrap(opNest, r)
}

// Case makes matching inside r case-sensitive. This is the default.
func Case(r *Ast) *Ast { return wrap(opCase, r) }

// NoCase makes matching inside r case-insensitive (Latin-1 folding).
func NoCase(r *Ast) *Ast { return wrap(opNoCase, r) }

// Inter matches a single byte belonging to every operand. All operands must
// be character-set expressions; Inter panics otherwise.
func Inter(l ...*Ast) *Ast {
	requireCharsets("Inter", l)
	return &Ast{op: opInter, sub: l}
}

// Compl matches a single byte belonging to none of the operands. All
// operands must be character-set expressions; Compl panics otherwise.
func Compl(l ...*Ast) *Ast {
	requireCharsets("Compl", l)
	return &Ast{op: opCompl, sub: l}
}

// Diff matches a single byte belonging to r but not to s. Both operands
// must be character-set expressions; Diff panics otherwise.
func Diff(r, s *Ast) *Ast {
	requireCharsets("Diff", []*Ast{r, s})
	return &Ast{op: opDiff, sub: []*Ast{r, s}}
}

func requireCharsets(api string, l []*Ast) {
	for _, r := range l {
		if !isCharset(r) {
			panic("rex: " + api + ": operand is not a character set")
		}
	}
}

// MarkID identifies a priority mark attached with Mark.
type MarkID = automata.Pmark

var pmarkGen = automata.NewPmarkGen()

// Mark returns a fresh mark id and a copy of r decorated with it. Whenever
// the decorated expression participates in a match, the id appears in the
// match's mark set.
func Mark(r *Ast) (MarkID, *Ast) {
	id := pmarkGen.Next()
	a := wrap(opPmark, r)
	a.pm = id
	return id, a
}

// Built-in classes (byte sets, Latin-1 aware).

// Any matches any byte.
func Any() *Ast { return setAst(charset.Any) }

// Notnl matches any byte except newline.
func Notnl() *Ast { return setAst(charset.CNotnl) }

// Lower matches a lowercase letter.
func Lower() *Ast { return setAst(charset.CLower) }

// Upper matches an uppercase letter.
func Upper() *Ast { return setAst(charset.CUpper) }

// Alpha matches a letter.
func Alpha() *Ast { return setAst(charset.CAlpha) }

// Digit matches a decimal digit.
func Digit() *Ast { return setAst(charset.CDigit) }

// Alnum matches a letter or digit.
func Alnum() *Ast { return setAst(charset.CAlnum) }

// Wordc matches a word character (letter, digit or underscore).
func Wordc() *Ast { return setAst(charset.CWord) }

// ASCII matches any 7-bit byte.
func ASCII() *Ast { return setAst(charset.CASCII) }

// Blank matches a space or tab.
func Blank() *Ast { return setAst(charset.CBlank) }

// Cntrl matches a control byte.
func Cntrl() *Ast { return setAst(charset.CCntrl) }

// Graph matches a visible byte.
func Graph() *Ast { return setAst(charset.CGraph) }

// Print matches a printable byte.
func Print() *Ast { return setAst(charset.CPrint) }

// Punct matches a punctuation byte.
func Punct() *Ast { return setAst(charset.CPunct) }

// Space matches a whitespace byte.
func Space() *Ast { return setAst(charset.CSpace) }

// Xdigit matches a hexadecimal digit.
func Xdigit() *Ast { return setAst(charset.CXdigit) }

// isCharset reports whether r denotes a plain set of bytes, so that set
// algebra applies to it.
func isCharset(r *Ast) bool {
	switch r.op {
	case opSet:
		return true
	case opAlternative, opInter, opCompl:
		for _, s := range r.sub {
			if !isCharset(s) {
				return false
			}
		}
		return true
	case opDiff:
		return isCharset(r.sub[0]) && isCharset(r.sub[1])
	case opSem, opSemGreedy, opNoGroup, opCase, opNoCase:
		return isCharset(r.sub[0])
	default:
		return false
	}
}

// handleCase rewrites the tree bottom-up: it applies case folding at the
// leaves, evaluates the set-algebra forms to plain sets, and collapses
// alternations of sets into a single set. After it runs, opCase, opNoCase,
// opInter, opCompl and opDiff no longer occur.
func handleCase(ign bool, r *Ast) *Ast {
	switch r.op {
	case opSet:
		if ign {
			return setAst(charset.CaseInsens(r.cs))
		}
		return r
	case opSequence:
		return &Ast{op: opSequence, sub: handleCaseList(ign, r.sub)}
	case opAlternative:
		sub := handleCaseList(ign, r.sub)
		if allSets(sub) {
			cs := charset.Empty
			for _, s := range sub {
				cs = cs.Union(s.cs)
			}
			return setAst(cs)
		}
		return &Ast{op: opAlternative, sub: sub}
	case opRepeat:
		c := *r
		c.sub = []*Ast{handleCase(ign, r.sub[0])}
		return &c
	case opSem, opSemGreedy, opNoGroup:
		s := handleCase(ign, r.sub[0])
		if s.op == opSet {
			return s
		}
		c := *r
		c.sub = []*Ast{s}
		return &c
	case opGroup, opNest, opPmark:
		c := *r
		c.sub = []*Ast{handleCase(ign, r.sub[0])}
		return &c
	case opCase:
		return handleCase(false, r.sub[0])
	case opNoCase:
		return handleCase(true, r.sub[0])
	case opInter:
		cs := charset.Any
		for _, s := range handleCaseList(ign, r.sub) {
			cs = cs.Inter(s.cs)
		}
		return setAst(cs)
	case opCompl:
		cs := charset.Empty
		for _, s := range handleCaseList(ign, r.sub) {
			cs = cs.Union(s.cs)
		}
		return setAst(cs.Negate())
	case opDiff:
		a := handleCase(ign, r.sub[0])
		b := handleCase(ign, r.sub[1])
		return setAst(a.cs.Diff(b.cs))
	default: // anchors
		return r
	}
}

func handleCaseList(ign bool, l []*Ast) []*Ast {
	out := make([]*Ast, len(l))
	for i, r := range l {
		out[i] = handleCase(ign, r)
	}
	return out
}

func allSets(l []*Ast) bool {
	for _, r := range l {
		if r.op != opSet {
			return false
		}
	}
	return true
}

// astEqual is structural equality, used when factoring common prefixes out
// of alternations.
func astEqual(a, b *Ast) bool {
	if a == b {
		return true
	}
	if a.op != b.op || a.min != b.min || a.max != b.max ||
		a.name != b.name || a.sem != b.sem || a.rk != b.rk || a.pm != b.pm {
		return false
	}
	if !a.cs.Equal(b.cs) {
		return false
	}
	if len(a.sub) != len(b.sub) {
		return false
	}
	for i := range a.sub {
		if !astEqual(a.sub[i], b.sub[i]) {
			return false
		}
	}
	return true
}

// anchoredAst reports whether every search path of r must match at the
// search start position.
func anchoredAst(r *Ast) bool {
	switch r.op {
	case opBegStr, opStart:
		return true
	case opSequence:
		for _, s := range r.sub {
			if anchoredAst(s) {
				return true
			}
		}
		return false
	case opAlternative:
		if len(r.sub) == 0 {
			return false
		}
		for _, s := range r.sub {
			if !anchoredAst(s) {
				return false
			}
		}
		return true
	case opRepeat:
		return r.min > 0 && anchoredAst(r.sub[0])
	case opSem, opSemGreedy, opGroup, opNoGroup, opNest, opCase, opNoCase, opPmark:
		return anchoredAst(r.sub[0])
	default:
		return false
	}
}

// String renders the combinator structure for debugging.
func (r *Ast) String() string {
	switch r.op {
	case opSet:
		return r.cs.String()
	case opSequence:
		return renderList("seq", r.sub)
	case opAlternative:
		return renderList("alt", r.sub)
	case opRepeat:
		if r.max < 0 {
			return fmt.Sprintf("rep{%d,}(%s)", r.min, r.sub[0])
		}
		return fmt.Sprintf("rep{%d,%d}(%s)", r.min, r.max, r.sub[0])
	case opBegLine:
		return "bol"
	case opEndLine:
		return "eol"
	case opBegWord:
		return "bow"
	case opEndWord:
		return "eow"
	case opNotBound:
		return "not-boundary"
	case opBegStr:
		return "bos"
	case opEndStr:
		return "eos"
	case opLastEndLine:
		return "leol"
	case opStart:
		return "start"
	case opStop:
		return "stop"
	case opSem:
		return fmt.Sprintf("%s(%s)", r.sem, r.sub[0])
	case opSemGreedy:
		return fmt.Sprintf("%s(%s)", r.rk, r.sub[0])
	case opGroup:
		if r.name != "" {
			return fmt.Sprintf("group<%s>(%s)", r.name, r.sub[0])
		}
		return fmt.Sprintf("group(%s)", r.sub[0])
	case opNoGroup:
		return fmt.Sprintf("no-group(%s)", r.sub[0])
	case opNest:
		return fmt.Sprintf("nest(%s)", r.sub[0])
	case opCase:
		return fmt.Sprintf("case(%s)", r.sub[0])
	case opNoCase:
		return fmt.Sprintf("no-case(%s)", r.sub[0])
	case opInter:
		return renderList("inter", r.sub)
	case opCompl:
		return renderList("compl", r.sub)
	case opDiff:
		return renderList("diff", r.sub)
	case opPmark:
		return fmt.Sprintf("pmark<%d>(%s)", r.pm, r.sub[0])
	default:
		return "?"
	}
}

func renderList(name string, l []*Ast) string {
	s := name + "("
	for i, r := range l {
		if i > 0 {
			s += ";"
		}
		s += r.String()
	}
	return s + ")"
}
