package automata

import "github.com/coregx/rex/charset"

// Category is a bitset describing the "side" conditions seen by zero-width
// anchors at a position: what kind of byte (or virtual boundary) sits next to
// it.
//
// Every byte maps to a category, and so do the virtual before-start and
// after-end positions (Inexistant). The driver threads two categories through
// each transition: the category of the byte that created the current state
// (tested by After anchors) and the category of the byte being consumed
// (tested by Before anchors).
type Category uint8

const (
	// Inexistant marks the virtual positions before the start and after the
	// end of the input.
	Inexistant Category = 1 << iota

	// Letter marks word-constituent bytes ([0-9A-Za-z_] plus Latin-1
	// letters).
	Letter

	// NotLetter marks every byte that is not word-constituent.
	NotLetter

	// Newline marks '\n'.
	Newline

	// LastNewline marks a '\n' that is the final byte of the input. It is
	// only ever produced through the synthetic last-newline color.
	LastNewline

	// SearchBoundary marks the positions where a search starts or stops;
	// the Start/Stop anchors test it.
	SearchBoundary
)

// Intersects returns true if c and d share at least one bit.
func (c Category) Intersects(d Category) bool {
	return c&d != 0
}

// FromByte returns the category of an ordinary input byte.
func FromByte(b byte) Category {
	switch {
	case charset.CWord.Contains(b):
		return Letter
	case b == '\n':
		return NotLetter | Newline
	default:
		return NotLetter
	}
}

// LastNewlineCat is the category assigned to the synthetic last-newline
// color: still a newline and a non-letter, but also the last one.
const LastNewlineCat = LastNewline | Newline | NotLetter
