package vtcore

// Input writes a character to the buffer at the cursor position, handling
// wide runes, line wrapping, insert mode, and charset translation.
func (t *Terminal) Input(r rune) {
	invoke1(t.mw().Input, r, t.inputInternal)
}

func (t *Terminal) inputInternal(r rune) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.activeCharset >= 0 && t.activeCharset < 4 && t.charsets[t.activeCharset] == CharsetLineDrawing {
		r = translateLineDrawing(r)
	}

	width := runeWidth(r)
	if width == 0 {
		// Combining marks aren't merged into the previous cell yet.
		return
	}

	if !t.wrapOrGrow(width) {
		return
	}
	if t.modes&ModeInsert != 0 {
		t.activeBuffer.InsertBlanks(t.cursor.Row, t.cursor.Col, width)
	}

	if t.cursor.Row < 0 || t.cursor.Row >= t.rows || t.cursor.Col < 0 {
		return
	}

	t.writeRune(r, width)
	t.clampCursorAfterWrite()
}

// wrapOrGrow makes room for a rune of the given width at the cursor: grows
// the row (autoResize), wraps to the next line (ModeLineWrap), or clamps to
// the last column, matching whichever behavior is active. It reports false
// when a wide rune has nowhere to go and must be dropped entirely.
func (t *Terminal) wrapOrGrow(width int) bool {
	if t.cursor.Col+width <= t.cols {
		return true
	}

	switch {
	case t.autoResize:
		t.activeBuffer.GrowCols(t.cursor.Row, t.cursor.Col+width)
		t.cols = t.activeBuffer.Cols()
		if t.cursor.Col >= t.cols {
			t.cursor.Col = t.cols - 1
		}
	case t.modes&ModeLineWrap != 0:
		t.activeBuffer.SetWrapped(t.cursor.Row, true)
		t.cursor.Col = 0
		t.cursor.Row++
		if t.cursor.Row >= t.rows {
			t.scrollIfNeeded()
		}
	case width == 2:
		return false
	default:
		t.cursor.Col = t.cols - 1
	}
	return true
}

// writeRune stores r (and, for wide runes, a trailing spacer cell) at the
// cursor using the current attribute template, advancing the cursor past
// whatever it wrote.
func (t *Terminal) writeRune(r rune, width int) {
	if t.cursor.Col < t.cols {
		if cell := t.activeBuffer.Cell(t.cursor.Row, t.cursor.Col); cell != nil {
			cell.Char = r
			cell.Fg = t.template.Fg
			cell.Bg = t.template.Bg
			cell.UnderlineColor = t.template.UnderlineColor
			cell.Flags = t.template.Flags
			cell.Hyperlink = t.currentHyperlink

			if width == 2 {
				cell.SetFlag(CellFlagWideChar)
			} else {
				cell.ClearFlag(CellFlagWideChar | CellFlagWideCharSpacer)
			}
			t.activeBuffer.MarkDirty(t.cursor.Row, t.cursor.Col)
		}
	}
	t.cursor.Col++

	if width == 2 && t.cursor.Col < t.cols {
		if spacer := t.activeBuffer.Cell(t.cursor.Row, t.cursor.Col); spacer != nil {
			spacer.Reset()
			spacer.Fg = t.template.Fg
			spacer.Bg = t.template.Bg
			spacer.SetFlag(CellFlagWideCharSpacer)
			t.activeBuffer.MarkDirty(t.cursor.Row, t.cursor.Col)
		}
		t.cursor.Col++
	}
}

// clampCursorAfterWrite keeps the cursor in bounds after a write that
// didn't already go through a wrap/scroll/resize path.
func (t *Terminal) clampCursorAfterWrite() {
	if t.cursor.Col >= t.cols && !t.autoResize && t.modes&ModeLineWrap == 0 {
		t.cursor.Col = t.cols - 1
	}
	if t.cursor.Row >= t.rows && !t.autoResize && t.cursor.Row >= t.activeBuffer.Rows() {
		t.cursor.Row = t.activeBuffer.Rows() - 1
	}
	if t.cursor.Col < 0 {
		t.cursor.Col = 0
	}
	if t.cursor.Row < 0 {
		t.cursor.Row = 0
	}
}

var lineDrawingGlyphs = map[rune]rune{
	'j': '┘', 'k': '┐', 'l': '┌', 'm': '└', 'n': '┼',
	'q': '─', 't': '├', 'u': '┤', 'v': '┴', 'w': '┬', 'x': '│',
}

// translateLineDrawing maps the DEC special-graphics charset's ASCII
// mnemonics to their box-drawing runes; anything outside that table passes
// through unchanged.
func translateLineDrawing(r rune) rune {
	if g, ok := lineDrawingGlyphs[r]; ok {
		return g
	}
	return r
}

// Substitute replaces the character at the cursor with '?', signaling an
// invalid or untranslatable sequence.
func (t *Terminal) Substitute() {
	invoke0(t.mw().Substitute, t.substituteInternal)
}

func (t *Terminal) substituteInternal() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if cell := t.activeBuffer.Cell(t.cursor.Row, t.cursor.Col); cell != nil {
		cell.Char = '?'
	}
}

// Bell triggers the bell provider, if one is configured.
func (t *Terminal) Bell() {
	invoke0(t.mw().Bell, t.bellInternal)
}

func (t *Terminal) bellInternal() {
	if t.bellProvider != nil {
		t.bellProvider.Ring()
	}
}
