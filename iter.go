package rex

import (
	"iter"
)

// All returns a lazy sequence of the non-overlapping matches in b, left to
// right. After a non-empty match the search resumes at its end; after an
// empty match it resumes one byte further, so a pattern matching the empty
// string yields at most len(b)+1 matches. An empty match at the position
// where the previous match ended is skipped.
func (re *Regex) All(b []byte) iter.Seq[*Match] {
	return re.all("All", b, 0, -1)
}

// AllAt is All over the window b[pos : pos+n]; n == -1 means to the end of
// b.
func (re *Regex) AllAt(b []byte, pos, n int) iter.Seq[*Match] {
	return re.all("AllAt", b, pos, n)
}

func (re *Regex) all(api string, b []byte, pos, n int) iter.Seq[*Match] {
	last := checkBounds(api, b, pos, n)
	return func(yield func(*Match) bool) {
		prevEnd := -1
		for p := pos; p <= last; {
			m := re.execOpt(b, p, last, true)
			if m == nil {
				return
			}
			p1, p2, _ := m.Offset(0)
			if p1 == p2 && p1 == prevEnd {
				p = p1 + 1
				continue
			}
			if !yield(m) {
				return
			}
			prevEnd = p2
			if p1 == p2 {
				p = p2 + 1
			} else {
				p = p2
			}
		}
	}
}

// Matches returns a lazy sequence of the matched substrings (group 0 of
// every match).
func (re *Regex) Matches(b []byte) iter.Seq[[]byte] {
	return re.matches("Matches", b, 0, -1)
}

// MatchesAt is Matches over a window.
func (re *Regex) MatchesAt(b []byte, pos, n int) iter.Seq[[]byte] {
	return re.matches("MatchesAt", b, pos, n)
}

func (re *Regex) matches(api string, b []byte, pos, n int) iter.Seq[[]byte] {
	seq := re.all(api, b, pos, n)
	return func(yield func([]byte) bool) {
		for m := range seq {
			g, _ := m.Get(0)
			if !yield(g) {
				return
			}
		}
	}
}

// Count returns the number of non-overlapping matches in b.
func (re *Regex) Count(b []byte) int {
	n := 0
	for range re.all("Count", b, 0, -1) {
		n++
	}
	return n
}

// SplitToken is one element of a SplitFull sequence: a stretch of
// unmatched text, or a delimiter match.
type SplitToken struct {
	// Text is the unmatched stretch; nil for delimiter tokens.
	Text []byte

	// Delim is the delimiter match; nil for text tokens.
	Delim *Match
}

// IsDelim reports whether the token is a delimiter.
func (t SplitToken) IsDelim() bool {
	return t.Delim != nil
}

// SplitFull returns a lazy sequence of the text stretches and delimiter
// matches composing b. Leading text is omitted when the first delimiter
// starts at the window start; trailing text is emitted when bytes remain
// after the last delimiter. An empty delimiter match immediately following
// a delimiter is suppressed.
func (re *Regex) SplitFull(b []byte) iter.Seq[SplitToken] {
	return re.splitFull("SplitFull", b, 0, -1)
}

// SplitFullAt is SplitFull over a window.
func (re *Regex) SplitFullAt(b []byte, pos, n int) iter.Seq[SplitToken] {
	return re.splitFull("SplitFullAt", b, pos, n)
}

func (re *Regex) splitFull(api string, b []byte, pos, n int) iter.Seq[SplitToken] {
	last := checkBounds(api, b, pos, n)
	return func(yield func(SplitToken) bool) {
		i := pos // start of the pending text stretch
		prevEnd := -1
		for p := pos; p <= last; {
			m := re.execOpt(b, p, last, true)
			if m == nil {
				break
			}
			p1, p2, _ := m.Offset(0)
			if p1 == p2 && p1 == prevEnd {
				p = p1 + 1
				continue
			}
			if p1 > i {
				if !yield(SplitToken{Text: b[i:p1]}) {
					return
				}
			}
			if !yield(SplitToken{Delim: m}) {
				return
			}
			i = p2
			prevEnd = p2
			if p1 == p2 {
				p = p2 + 1
			} else {
				p = p2
			}
		}
		if i < last {
			yield(SplitToken{Text: b[i:last]})
		}
	}
}

// Split returns the text stretches of SplitFull: the substrings of b
// between delimiter matches.
func (re *Regex) Split(b []byte) iter.Seq[[]byte] {
	return re.split("Split", b, 0, -1)
}

// SplitAt is Split over a window.
func (re *Regex) SplitAt(b []byte, pos, n int) iter.Seq[[]byte] {
	return re.split("SplitAt", b, pos, n)
}

func (re *Regex) split(api string, b []byte, pos, n int) iter.Seq[[]byte] {
	seq := re.splitFull(api, b, pos, n)
	return func(yield func([]byte) bool) {
		for t := range seq {
			if t.IsDelim() {
				continue
			}
			if !yield(t.Text) {
				return
			}
		}
	}
}

// SplitDelim returns the texts around every delimiter, including the empty
// ones: a sequence of k delimiters always produces k+1 texts, so texts and
// delimiters interleave strictly.
func (re *Regex) SplitDelim(b []byte) iter.Seq[[]byte] {
	return re.splitDelim("SplitDelim", b, 0, -1)
}

// SplitDelimAt is SplitDelim over a window.
func (re *Regex) SplitDelimAt(b []byte, pos, n int) iter.Seq[[]byte] {
	return re.splitDelim("SplitDelimAt", b, pos, n)
}

func (re *Regex) splitDelim(api string, b []byte, pos, n int) iter.Seq[[]byte] {
	last := checkBounds(api, b, pos, n)
	return func(yield func([]byte) bool) {
		i := pos
		prevEnd := -1
		for p := pos; p <= last; {
			m := re.execOpt(b, p, last, true)
			if m == nil {
				break
			}
			p1, p2, _ := m.Offset(0)
			if p1 == p2 && p1 == prevEnd {
				p = p1 + 1
				continue
			}
			if !yield(b[i:p1]) {
				return
			}
			i = p2
			prevEnd = p2
			if p1 == p2 {
				p = p2 + 1
			} else {
				p = p2
			}
		}
		yield(b[i:last])
	}
}

// Replace returns b with every match replaced by f's result. Between
// matches the input is copied verbatim. When a match is empty, the byte at
// its position is copied through and the search resumes after it.
func (re *Regex) Replace(b []byte, f func(*Match) []byte) []byte {
	return re.replace("Replace", b, 0, -1, true, f)
}

// ReplaceFirst is Replace stopping after the first match.
func (re *Regex) ReplaceFirst(b []byte, f func(*Match) []byte) []byte {
	return re.replace("ReplaceFirst", b, 0, -1, false, f)
}

// ReplaceAt is the general replacement form: window, first-or-all, and a
// replacement function.
func (re *Regex) ReplaceAt(b []byte, pos, n int, all bool, f func(*Match) []byte) []byte {
	return re.replace("ReplaceAt", b, pos, n, all, f)
}

// ReplaceString replaces every match with the fixed string by.
func (re *Regex) ReplaceString(b []byte, by string) []byte {
	return re.replace("ReplaceString", b, 0, -1, true, func(*Match) []byte { return []byte(by) })
}

// ReplaceFirstString replaces the first match with the fixed string by.
func (re *Regex) ReplaceFirstString(b []byte, by string) []byte {
	return re.replace("ReplaceFirstString", b, 0, -1, false, func(*Match) []byte { return []byte(by) })
}

func (re *Regex) replace(api string, b []byte, pos, n int, all bool, f func(*Match) []byte) []byte {
	last := checkBounds(api, b, pos, n)
	out := make([]byte, 0, last-pos)
	i := pos
	for p := pos; p <= last; {
		m := re.execOpt(b, p, last, true)
		if m == nil {
			break
		}
		p1, p2, _ := m.Offset(0)
		out = append(out, b[i:p1]...)
		out = append(out, f(m)...)
		if p1 == p2 {
			if p2 < last {
				out = append(out, b[p2])
			}
			i = p2 + 1
			p = p2 + 1
		} else {
			i = p2
			p = p2
		}
		if !all {
			break
		}
	}
	if i < last {
		out = append(out, b[i:last]...)
	}
	return out
}
