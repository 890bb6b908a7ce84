package vtcore

import "image/color"

// CellFlags packs the SGR-derived rendering attributes of a cell into a
// single word. The five underline-style bits are mutually exclusive in
// practice (setTerminalCharAttributeInternal in attributes.go clears the
// others before setting one), but they get
// distinct bits rather than a sub-field so a renderer can test
// Flags&CellFlagUnderline-family with one mask when it only cares whether
// the cell is underlined at all, not which style.
type CellFlags uint16

const (
	CellFlagBold CellFlags = 1 << iota
	CellFlagDim
	CellFlagItalic
	CellFlagReverse
	CellFlagHidden
	CellFlagStrike
	CellFlagBlinkSlow
	CellFlagBlinkFast

	CellFlagUnderline
	CellFlagDoubleUnderline
	CellFlagCurlyUnderline
	CellFlagDottedUnderline
	CellFlagDashedUnderline

	CellFlagWideChar
	CellFlagWideCharSpacer
	CellFlagDirty
)

// underlineFlags is every bit that puts some kind of underline under a
// cell, regardless of style.
const underlineFlags = CellFlagUnderline | CellFlagDoubleUnderline |
	CellFlagCurlyUnderline | CellFlagDottedUnderline | CellFlagDashedUnderline

// Hyperlink associates a cell with a clickable link (OSC 8). Cells sharing
// the same link share a pointer so a renderer can compare by identity to
// find a link's full extent; see hyperlink.go for how those pointers are
// interned.
type Hyperlink struct {
	ID  string
	URI string
}

// Cell is one grid position: a displayed rune plus everything needed to
// paint it. A wide rune (CJK, emoji, ...) occupies two adjacent Cells, the
// second carrying CellFlagWideCharSpacer and no rune of its own.
type Cell struct {
	Char           rune
	Fg             color.Color
	Bg             color.Color
	UnderlineColor color.Color
	Flags          CellFlags
	Hyperlink      *Hyperlink
	Image          *CellImage
}

func defaultFg() color.Color { return &NamedColor{Name: NamedColorForeground} }
func defaultBg() color.Color { return &NamedColor{Name: NamedColorBackground} }

// NewCell returns a blank cell: a space on the default foreground and
// background, with no attributes, link, or image.
func NewCell() Cell {
	return Cell{Char: ' ', Fg: defaultFg(), Bg: defaultBg()}
}

// Reset restores c to the blank-cell state NewCell produces, in place.
func (c *Cell) Reset() {
	*c = NewCell()
}

// HasFlag reports whether every bit in flag is set.
func (c *Cell) HasFlag(flag CellFlags) bool {
	return c.Flags&flag == flag
}

// SetFlag ORs flag into c.Flags.
func (c *Cell) SetFlag(flag CellFlags) {
	c.Flags |= flag
}

// ClearFlag clears every bit in flag from c.Flags.
func (c *Cell) ClearFlag(flag CellFlags) {
	c.Flags &^= flag
}

// IsDirty reports whether the cell has been written since the owning
// buffer's dirty tracking was last cleared.
func (c *Cell) IsDirty() bool { return c.HasFlag(CellFlagDirty) }

// MarkDirty flags the cell as modified.
func (c *Cell) MarkDirty() { c.SetFlag(CellFlagDirty) }

// ClearDirty drops the dirty flag.
func (c *Cell) ClearDirty() { c.ClearFlag(CellFlagDirty) }

// IsWide reports whether this cell holds the leading half of a
// two-column rune.
func (c *Cell) IsWide() bool { return c.HasFlag(CellFlagWideChar) }

// IsWideSpacer reports whether this cell is the trailing half of a
// two-column rune and should be skipped when rendering or measuring text.
func (c *Cell) IsWideSpacer() bool { return c.HasFlag(CellFlagWideCharSpacer) }

// IsUnderlined reports whether any underline style bit is set.
func (c *Cell) IsUnderlined() bool { return c.Flags&underlineFlags != 0 }

// Width returns the number of grid columns this cell occupies on its own:
// 0 for a wide-char spacer (it rides along with the cell before it), 2 for
// the leading half of a wide rune, 1 otherwise.
func (c *Cell) Width() int {
	switch {
	case c.IsWideSpacer():
		return 0
	case c.IsWide():
		return 2
	default:
		return 1
	}
}

// Copy returns a value copy of c. Fg/Bg/UnderlineColor are color.Color
// interfaces and Hyperlink/Image are shared pointers, so this is shallow,
// but a Cell never owns mutable state through any of those references.
func (c *Cell) Copy() Cell { return *c }

// HasImage reports whether the cell carries a fragment of a rasterized
// image.
func (c *Cell) HasImage() bool { return c.Image != nil }
