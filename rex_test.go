package rex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offsets(t *testing.T, m *Match, i int) (int, int) {
	t.Helper()
	start, stop, err := m.Offset(i)
	require.NoError(t, err)
	return start, stop
}

func TestExecLiteral(t *testing.T) {
	re := Compile(Str("abc"))
	m, err := re.Exec([]byte("xxabcyy"))
	require.NoError(t, err)

	start, stop := offsets(t, m, 0)
	assert.Equal(t, 2, start)
	assert.Equal(t, 5, stop)
	assert.Equal(t, "abc", m.GetString(0))
}

func TestExecSequenceWithRep(t *testing.T) {
	re := Compile(Seq(Str("a"), Rep(Char('b')), Str("c")))
	m, err := re.Exec([]byte("abbbc"))
	require.NoError(t, err)

	start, stop := offsets(t, m, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 5, stop)
}

func TestAlternativeSemantics(t *testing.T) {
	// Default (first) semantics prefers the first listed alternative.
	re := Compile(Alt(Str("foo"), Str("foobar")))
	m, err := re.Exec([]byte("foobar"))
	require.NoError(t, err)
	start, stop := offsets(t, m, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 3, stop)

	// Under longest semantics the longer alternative wins.
	re = Compile(Longest(Alt(Str("foo"), Str("foobar"))))
	m, err = re.Exec([]byte("foobar"))
	require.NoError(t, err)
	start, stop = offsets(t, m, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 6, stop)
}

func TestExecNoMatch(t *testing.T) {
	re := Compile(Str("abc"))
	_, err := re.Exec([]byte("abx"))
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.Nil(t, re.ExecOpt([]byte("abx")))
	assert.False(t, re.Match([]byte("abx")))
	assert.True(t, re.Match([]byte("zzabc")))
}

func TestGroups(t *testing.T) {
	re := Compile(Seq(
		Group(Rep1(Digit())),
		Str("-"),
		Group(Rep1(Alpha())),
	))
	m, err := re.Exec([]byte("=123-abc="))
	require.NoError(t, err)

	assert.Equal(t, 3, m.NumGroups())
	assert.Equal(t, "123-abc", m.GetString(0))
	assert.Equal(t, "123", m.GetString(1))
	assert.Equal(t, "abc", m.GetString(2))

	start, stop := offsets(t, m, 1)
	assert.Equal(t, 1, start)
	assert.Equal(t, 4, stop)
}

func TestUnmatchedGroup(t *testing.T) {
	re := Compile(Seq(
		Alt(Group(Str("a")), Group(Str("b"))),
		Str("!"),
	))
	m, err := re.Exec([]byte("b!"))
	require.NoError(t, err)

	assert.False(t, m.Test(1))
	assert.True(t, m.Test(2))
	_, err = m.Get(1)
	assert.ErrorIs(t, err, ErrNoMatch)
	_, ok := m.GetOpt(1)
	assert.False(t, ok)
	g, ok := m.GetOpt(2)
	assert.True(t, ok)
	assert.Equal(t, "b", string(g))

	all := m.AllOffset()
	assert.Equal(t, [2]int{-1, -1}, all[1])
	assert.Equal(t, [2]int{0, 1}, all[2])

	// Unmatched groups render as empty strings in All.
	texts := m.All()
	assert.Equal(t, "", string(texts[1]))
	assert.Equal(t, "b", string(texts[2]))
}

func TestNamedGroups(t *testing.T) {
	re := Compile(Seq(
		GroupNamed("key", Rep1(Alpha())),
		Str("="),
		GroupNamed("value", Rep1(Digit())),
	))
	names := re.GroupNames()
	require.Len(t, names, 2)
	assert.Equal(t, GroupName{Name: "key", Index: 1}, names[0])
	assert.Equal(t, GroupName{Name: "value", Index: 2}, names[1])

	i, ok := re.GroupIndex("value")
	require.True(t, ok)
	m, err := re.Exec([]byte("port=8080"))
	require.NoError(t, err)
	assert.Equal(t, "8080", m.GetString(i))

	_, ok = re.GroupIndex("missing")
	assert.False(t, ok)
}

func TestNoGroupSilentlyDrops(t *testing.T) {
	// Groups (even named ones) under NoGroup allocate nothing.
	re := Compile(NoGroup(Seq(GroupNamed("x", Str("a")), Str("b"))))
	assert.Equal(t, 1, re.NumGroups()) // just group 0
	assert.Empty(t, re.GroupNames())

	m, err := re.Exec([]byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, "ab", m.GetString(0))
}

func TestCaseFolding(t *testing.T) {
	re := Compile(NoCase(Str("abc")))
	for _, s := range []string{"abc", "Abc", "aBc", "abC", "ABc", "AbC", "aBC", "ABC"} {
		m, err := re.Exec([]byte(s))
		require.NoError(t, err, "input %q", s)
		start, stop := offsets(t, m, 0)
		assert.Equal(t, 0, start)
		assert.Equal(t, 3, stop)
	}

	// Case re-enables sensitivity inside NoCase.
	re = Compile(NoCase(Seq(Str("a"), Case(Str("b")))))
	assert.True(t, re.Match([]byte("Ab")))
	assert.False(t, re.Match([]byte("aB")))
}

func TestCharsetAlgebra(t *testing.T) {
	re := Compile(Compl(Digit()))
	m, err := re.Exec([]byte("12a3"))
	require.NoError(t, err)
	assert.Equal(t, "a", m.GetString(0))

	re = Compile(Rep1(Inter(Wordc(), Compl(Digit()))))
	m, err = re.Exec([]byte("99bottles99"))
	require.NoError(t, err)
	assert.Equal(t, "bottles", m.GetString(0))

	re = Compile(Rep1(Diff(Alnum(), Digit())))
	m, err = re.Exec([]byte("12ab34"))
	require.NoError(t, err)
	assert.Equal(t, "ab", m.GetString(0))
}

func TestConstructorValidation(t *testing.T) {
	assert.PanicsWithValue(t, "rex: RepN: negative lower bound", func() {
		RepN(Str("a"), -1, -1)
	})
	assert.PanicsWithValue(t, "rex: RepN: upper bound smaller than lower bound", func() {
		RepN(Str("a"), 3, 2)
	})
	assert.Panics(t, func() { Inter(Str("ab")) })  // not a charset
	assert.Panics(t, func() { Compl(Rep(Any())) }) // not a charset
	assert.Panics(t, func() { Diff(Digit(), Str("xy")) })
}

func TestRepNSimplifications(t *testing.T) {
	// {0,0} is epsilon, {1,1} is the expression itself.
	re := Compile(Seq(Str("a"), RepN(Str("b"), 0, 0), Str("c")))
	assert.True(t, re.Match([]byte("ac")))
	assert.False(t, re.Match([]byte("abc")))

	re = Compile(RepN(Str("ab"), 1, 1))
	assert.True(t, re.Match([]byte("ab")))
}

func TestRepNBounds(t *testing.T) {
	re := Compile(WholeString(RepN(Char('a'), 2, 4)))
	assert.False(t, re.Match([]byte("a")))
	assert.True(t, re.Match([]byte("aa")))
	assert.True(t, re.Match([]byte("aaaa")))
	assert.False(t, re.Match([]byte("aaaaa")))

	re = Compile(WholeString(RepN(Char('a'), 2, -1)))
	assert.False(t, re.Match([]byte("a")))
	assert.True(t, re.Match([]byte("aaaaaaa")))
}

func TestRepeatedGroupCaptures(t *testing.T) {
	// The last iteration wins.
	re := Compile(Rep1(Group(Seq(Alpha(), Digit()))))
	m, err := re.Exec([]byte("a1b2c3"))
	require.NoError(t, err)
	assert.Equal(t, "a1b2c3", m.GetString(0))
	assert.Equal(t, "c3", m.GetString(1))
}

func TestNestForgetsPreviousIteration(t *testing.T) {
	// (a(b)?)+ on "aba" (iterations "ab", "a"): without Nest, the second iteration keeps the
	// "b" capture from the first; with Nest it is forgotten.
	inner := Seq(Char('a'), Opt(Group(Char('b'))))

	re := Compile(Rep1(inner))
	m, err := re.Exec([]byte("aba"))
	require.NoError(t, err)
	assert.Equal(t, "aba", m.GetString(0))
	assert.True(t, m.Test(1))

	re = Compile(Rep1(Nest(inner)))
	m, err = re.Exec([]byte("aba"))
	require.NoError(t, err)
	assert.Equal(t, "aba", m.GetString(0))
	assert.False(t, m.Test(1))
}

func TestAnchors(t *testing.T) {
	re := Compile(Seq(Bos(), Str("ab")))
	assert.True(t, re.IsAnchored())
	assert.True(t, re.Match([]byte("abxx")))
	assert.False(t, re.Match([]byte("xab")))

	re = Compile(Seq(Str("ab"), Eos()))
	assert.False(t, re.IsAnchored())
	assert.True(t, re.Match([]byte("xxab")))
	assert.False(t, re.Match([]byte("abx")))

	re = Compile(Seq(Bol(), Str("b")))
	assert.True(t, re.Match([]byte("a\nb")))
	assert.False(t, re.Match([]byte("ab")))

	re = Compile(Seq(Str("a"), Eol()))
	assert.True(t, re.Match([]byte("xa\nb")))
	assert.False(t, re.Match([]byte("ab")))
}

func TestWordBoundaries(t *testing.T) {
	re := Compile(Word(Str("cat")))
	assert.True(t, re.Match([]byte("a cat sat")))
	assert.False(t, re.Match([]byte("concatenate")))

	m, err := re.Exec([]byte("the cat."))
	require.NoError(t, err)
	start, stop := offsets(t, m, 0)
	assert.Equal(t, 4, start)
	assert.Equal(t, 7, stop)

	re = Compile(Seq(Str("cat"), NotBoundary()))
	assert.True(t, re.Match([]byte("cats")))
	assert.False(t, re.Match([]byte("a cat ")))
}

func TestEolWithTrailingNewline(t *testing.T) {
	re := Compile(Seq(Str("x"), Eol()))

	m, err := re.Exec([]byte("x\n"))
	require.NoError(t, err)
	start, stop := offsets(t, m, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 1, stop)

	m, err = re.Exec([]byte("x"))
	require.NoError(t, err)
	start, stop = offsets(t, m, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 1, stop)
}

func TestLastEndOfLine(t *testing.T) {
	re := Compile(Seq(Str("x"), Leol()))
	assert.True(t, re.Match([]byte("x")))
	assert.True(t, re.Match([]byte("x\n")))
	assert.False(t, re.Match([]byte("x\ny")))

	m, err := re.Exec([]byte("x\n"))
	require.NoError(t, err)
	start, stop := offsets(t, m, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 1, stop)
}

func TestStartStopAnchors(t *testing.T) {
	re := Compile(Seq(Start(), Str("bc")))
	assert.True(t, re.IsAnchored())
	assert.True(t, re.MatchAt([]byte("abcd"), 1, -1))
	assert.False(t, re.MatchAt([]byte("abcd"), 0, -1))

	re = Compile(Seq(Str("bc"), Stop()))
	assert.True(t, re.MatchAt([]byte("abcd"), 0, 3))
	assert.False(t, re.MatchAt([]byte("abcd"), 0, -1))
}

func TestGreediness(t *testing.T) {
	re := Compile(Group(Rep(Digit())))
	m, err := re.Exec([]byte("123x"))
	require.NoError(t, err)
	assert.Equal(t, "123", m.GetString(1))

	re = Compile(Group(NonGreedy(Rep(Digit()))))
	m, err = re.Exec([]byte("123x"))
	require.NoError(t, err)
	assert.Equal(t, "", m.GetString(1))
}

func TestShortestSemantics(t *testing.T) {
	re := Compile(Shortest(Seq(Char('a'), Rep(Char('b')))))
	m, err := re.Exec([]byte("abbb"))
	require.NoError(t, err)
	start, stop := offsets(t, m, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 1, stop)
}

func TestPmarks(t *testing.T) {
	idFoo, foo := Mark(Str("foo"))
	idBar, bar := Mark(Str("bar"))
	re := Compile(Alt(foo, bar))

	m, err := re.Exec([]byte("xxbar"))
	require.NoError(t, err)
	assert.False(t, m.HasMark(idFoo))
	assert.True(t, m.HasMark(idBar))
	assert.Equal(t, []MarkID{idBar}, m.Marks())
}

func TestExecPartial(t *testing.T) {
	re := Compile(Str("abcdef"))
	assert.Equal(t, Partial, re.ExecPartial([]byte("abc")))
	assert.Equal(t, Full, re.ExecPartial([]byte("xabcdefy")))
	assert.Equal(t, Partial, re.ExecPartial([]byte("zzz")))

	// Anchored mismatches are definitive.
	re = Compile(Seq(Bos(), Str("abc")))
	assert.Equal(t, Mismatch, re.ExecPartial([]byte("x")))
	assert.Equal(t, Partial, re.ExecPartial([]byte("ab")))
	// A match ending exactly at the end of the input still reports
	// Partial: in partial mode the input may be extended, so the match is
	// only committed once a byte beyond it has been seen.
	assert.Equal(t, Partial, re.ExecPartial([]byte("abc")))
	assert.Equal(t, Full, re.ExecPartial([]byte("abcx")))
}

func TestExecPartialDetailed(t *testing.T) {
	re := Compile(Str("abcdef"))

	res := re.ExecPartialDetailed([]byte("abc"))
	assert.Equal(t, Partial, res.Kind)
	assert.Equal(t, 0, res.NoMatchStartsBefore)

	res = re.ExecPartialDetailed([]byte("zabc"))
	assert.Equal(t, Partial, res.Kind)
	assert.Equal(t, 1, res.NoMatchStartsBefore)

	res = re.ExecPartialDetailed([]byte("xxabcdefy"))
	assert.Equal(t, Full, res.Kind)
	require.NotNil(t, res.Groups)
	assert.Equal(t, "abcdef", res.Groups.GetString(0))
}

func TestPartialMonotonicity(t *testing.T) {
	re := Compile(Str("abcd"))
	input := []byte("zzabcdzz")
	sawFull := false
	for k := 0; k <= len(input); k++ {
		kind := re.ExecPartial(input[:k])
		if sawFull {
			assert.Equal(t, Full, kind, "prefix length %d", k)
		}
		if kind == Full {
			sawFull = true
		}
	}
	assert.True(t, sawFull)
}

func TestBoundsValidation(t *testing.T) {
	re := Compile(Str("a"))
	assert.PanicsWithValue(t, "rex: ExecAt: negative position or length", func() {
		_, _ = re.ExecAt([]byte("abc"), -1, -1)
	})
	assert.PanicsWithValue(t, "rex: ExecAt: window exceeds input", func() {
		_, _ = re.ExecAt([]byte("abc"), 2, 5)
	})
	assert.PanicsWithValue(t, "rex: MatchAt: position out of range", func() {
		re.MatchAt([]byte("abc"), 4, -1)
	})
}

func TestWindowedExec(t *testing.T) {
	re := Compile(Str("ab"))
	m, err := re.ExecAt([]byte("ababab"), 2, 2)
	require.NoError(t, err)
	start, stop := offsets(t, m, 0)
	assert.Equal(t, 2, start)
	assert.Equal(t, 4, stop)

	_, err = re.ExecAt([]byte("ababab"), 1, 2)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestDeterminism(t *testing.T) {
	re := Compile(Seq(Group(Rep1(Digit())), Opt(Group(Str("px")))))
	input := []byte("w=12px h=34")
	first, err := re.Exec(input)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		m, err := re.Exec(input)
		require.NoError(t, err)
		assert.Equal(t, first.AllOffset(), m.AllOffset())
		assert.Equal(t, first.All(), m.All())
	}
}

func TestAnchoredPrefixEquivalence(t *testing.T) {
	// compile(r) matches iff compile(seq[shortest(rep any); group r])
	// does, with group 0 of the latter covering the former's match.
	r := func() *Ast { return Seq(Str("b"), Rep1(Digit())) }
	plain := Compile(r())
	wrapped := Compile(Seq(Shortest(Rep(Any())), Group(r())))

	for _, s := range []string{"ab12x", "b7", "zzz", "12b", "bb00"} {
		m1 := plain.ExecOpt([]byte(s))
		m2 := wrapped.ExecOpt([]byte(s))
		if m1 == nil {
			assert.Nil(t, m2, "input %q", s)
			continue
		}
		require.NotNil(t, m2, "input %q", s)
		s1, e1, _ := m1.Offset(0)
		s2, e2, err := m2.Offset(1)
		require.NoError(t, err)
		assert.Equal(t, s1, s2, "input %q", s)
		assert.Equal(t, e1, e2, "input %q", s)
	}
}

func TestMatchString(t *testing.T) {
	re := Compile(Rep1(Digit()))
	assert.True(t, re.MatchString("a1"))
	m, err := re.ExecString("a12")
	require.NoError(t, err)
	assert.Equal(t, "12", m.GetString(0))
}

func TestEmptyAndEpsilon(t *testing.T) {
	assert.False(t, Compile(Empty()).Match([]byte("anything")))

	re := Compile(Epsilon())
	m, err := re.Exec([]byte("ab"))
	require.NoError(t, err)
	start, stop := offsets(t, m, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, stop)
}

func TestLiteralAlternationFastPath(t *testing.T) {
	words := []string{
		"alpha", "bravo", "charlie", "delta", "echo",
		"foxtrot", "golf", "hotel", "india", "juliet",
	}
	l := make([]*Ast, len(words))
	for i, w := range words {
		l[i] = Str(w)
	}
	re := Compile(Alt(l...))

	m, err := re.Exec([]byte("...hotel..."))
	require.NoError(t, err)
	start, stop := offsets(t, m, 0)
	assert.Equal(t, 3, start)
	assert.Equal(t, 8, stop)
	assert.Equal(t, "hotel", m.GetString(0))

	assert.False(t, re.Match([]byte("nothing here")))
	assert.True(t, re.MatchAt([]byte("xxgolf"), 2, -1))
}
