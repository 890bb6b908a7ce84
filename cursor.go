package vtcore

// CursorStyle selects how the cursor is painted: block, underline, or bar,
// each in a blinking or steady variant (DECSCUSR).
type CursorStyle int

const (
	CursorStyleBlinkingBlock CursorStyle = iota
	CursorStyleSteadyBlock
	CursorStyleBlinkingUnderline
	CursorStyleSteadyUnderline
	CursorStyleBlinkingBar
	CursorStyleSteadyBar
)

// Cursor is the terminal's text-entry position, 0-based from the top-left
// of the active buffer.
type Cursor struct {
	Row, Col int
	Style    CursorStyle
	Visible  bool
}

// NewCursor returns a cursor at the origin, visible, blinking block —
// the power-on default.
func NewCursor() *Cursor {
	return &Cursor{Style: CursorStyleBlinkingBlock, Visible: true}
}

// MoveTo repositions the cursor without touching style or visibility.
func (c *Cursor) MoveTo(row, col int) {
	c.Row, c.Col = row, col
}

// CellTemplate is the attribute set SGR sequences build up and new
// characters inherit when written; its embedded Cell's Char is unused.
type CellTemplate struct {
	Cell
}

// NewCellTemplate returns a template matching a freshly reset cell: no
// color overrides, no attributes.
func NewCellTemplate() CellTemplate {
	return CellTemplate{Cell: NewCell()}
}

// Charset selects a G-set's character mapping. Only the two VT100
// mappings dispatch.go designates through ESC ( / ) / * / + are
// modeled; anything else designated falls back to CharsetASCII.
type Charset int

const (
	CharsetASCII Charset = iota
	CharsetLineDrawing
)

// CharsetIndex names one of the four G-set slots a charset can be
// designated into (ESC ( = G0, ESC ) = G1, ESC * = G2, ESC + = G3) and
// invoked into GL via SI/SO/LS2/LS3.
type CharsetIndex int

const (
	CharsetIndexG0 CharsetIndex = iota
	CharsetIndexG1
	CharsetIndexG2
	CharsetIndexG3
)

// SavedCursor is the DECSC/DECRC snapshot: cursor position, SGR template,
// origin mode, and charset state, restored verbatim by DECRC and when
// switching between the primary and alternate screens.
type SavedCursor struct {
	Row, Col     int
	Attrs        CellTemplate
	OriginMode   bool
	CharsetIndex int
	Charsets     [4]Charset
}
