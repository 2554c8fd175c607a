package automata

import "github.com/coregx/rex/charset"

// ColorMap builds an equivalence partition of the byte alphabet.
//
// Every character set occurring in a pattern is presented to the map as a
// "split": after all splits, two bytes share a color exactly when no set in
// the pattern distinguishes them. The DFA inner loop then runs over colors
// instead of bytes, shrinking per-state transition tables from 256 entries
// to a handful.
//
// The builder tracks class boundaries as a 256-bit set: splitting on a range
// [lo, hi] marks lo-1 and hi as boundaries. Freezing walks the alphabet once,
// incrementing the color at each boundary.
type ColorMap struct {
	// bits is a 256-bit bitset; bit i set means byte i is the last byte of
	// a color class.
	bits [4]uint64
}

// NewColorMap returns a builder with a single all-bytes class.
func NewColorMap() *ColorMap {
	return &ColorMap{}
}

func (cm *ColorMap) setBit(b byte) {
	cm.bits[b/64] |= 1 << (b % 64)
}

func (cm *ColorMap) getBit(b byte) bool {
	return cm.bits[b/64]&(1<<(b%64)) != 0
}

// Split refines the partition so that every color class is either entirely
// inside s or entirely outside it.
func (cm *ColorMap) Split(s charset.Cset) {
	for _, r := range s {
		if r.Lo > 0 {
			cm.setBit(r.Lo - 1)
		}
		cm.setBit(r.Hi)
	}
}

// Colors is the frozen form of a ColorMap.
type Colors struct {
	// Table maps each byte to its color. Color ids are dense, assigned in
	// byte order, and always fit a byte (at most 256 classes).
	Table [256]byte

	// Repr holds one representative byte per color (the lowest byte of the
	// class).
	Repr []byte

	// Ncolor is the number of colors, including the synthetic last-newline
	// color when Lnl >= 0.
	Ncolor int

	// Lnl is the synthetic color assigned to a trailing '\n', or -1 when
	// the pattern never asked for it. It never appears in Table: the driver
	// substitutes it only for the final byte of the input.
	Lnl int
}

// Freeze assigns the smallest available color id to each class, in byte
// order. When needLnl is set an extra synthetic color is reserved for the
// trailing-newline transition.
func (cm *ColorMap) Freeze(needLnl bool) *Colors {
	c := &Colors{Lnl: -1}
	color := byte(0)
	start := 0
	for b := 0; b < 256; b++ {
		c.Table[b] = color
		if cm.getBit(byte(b)) && b < 255 {
			c.Repr = append(c.Repr, byte(start))
			start = b + 1
			color++
		}
	}
	c.Repr = append(c.Repr, byte(start))
	c.Ncolor = int(color) + 1
	if needLnl {
		c.Lnl = c.Ncolor
		c.Ncolor++
	}
	return c
}

// Of returns the color of byte b.
func (c *Colors) Of(b byte) int {
	return int(c.Table[b])
}

// Category returns the category of a color: the category of its
// representative byte, or LastNewlineCat for the synthetic color.
func (c *Colors) Category(color int) Category {
	if color == c.Lnl {
		return LastNewlineCat
	}
	return FromByte(c.Repr[color])
}

// ColorSet translates a byte set into the corresponding set of colors.
// Every split presented to the builder came from such a set, so classes
// never straddle a set boundary.
func (c *Colors) ColorSet(s charset.Cset) charset.Cset {
	var out charset.Cset
	for _, r := range s {
		out = out.Union(charset.Seq(c.Table[r.Lo], c.Table[r.Hi]))
	}
	return out
}
