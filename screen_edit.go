package vtcore

// ClearLine clears part or all of the current row: right of the cursor,
// left of (and including) it, or the entire row.
func (t *Terminal) ClearLine(mode LineClearMode) {
	invoke1(t.mw().ClearLine, mode, t.clearLineInternal)
}

func (t *Terminal) clearLineInternal(mode LineClearMode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch mode {
	case LineClearModeRight:
		t.activeBuffer.ClearRowRange(t.cursor.Row, t.cursor.Col, t.cols)
	case LineClearModeLeft:
		t.activeBuffer.ClearRowRange(t.cursor.Row, 0, t.cursor.Col+1)
	case LineClearModeAll:
		t.activeBuffer.ClearRow(t.cursor.Row)
	}
}

// ClearScreen clears part or all of the screen: below the cursor, above
// it, the whole screen, or (currently treated the same as the whole
// screen) the scrollback. Image placements on the cleared rows are removed
// too; the stored image data is kept.
func (t *Terminal) ClearScreen(mode ClearMode) {
	invoke1(t.mw().ClearScreen, mode, t.clearScreenInternal)
}

func (t *Terminal) clearScreenInternal(mode ClearMode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch mode {
	case ClearModeBelow:
		t.activeBuffer.ClearRowRange(t.cursor.Row, t.cursor.Col, t.cols)
		for row := t.cursor.Row + 1; row < t.rows; row++ {
			t.activeBuffer.ClearRow(row)
		}
		t.images.DeletePlacementsBelow(t.cursor.Row)
	case ClearModeAbove:
		for row := 0; row < t.cursor.Row; row++ {
			t.activeBuffer.ClearRow(row)
		}
		t.activeBuffer.ClearRowRange(t.cursor.Row, 0, t.cursor.Col+1)
		t.images.DeletePlacementsAbove(t.cursor.Row)
	case ClearModeAll, ClearModeSaved:
		// Scrollback erasure (ClearModeSaved) isn't tracked separately from
		// the visible grid, so both modes clear the same thing.
		t.activeBuffer.ClearAll()
		t.images.mu.Lock()
		t.images.deletePlacementsWhereLocked(func(*ImagePlacement) bool { return true })
		t.images.mu.Unlock()
	}
}

// Decaln fills the screen with 'E' characters, per the DEC screen
// alignment test (ESC # 8).
func (t *Terminal) Decaln() {
	invoke0(t.mw().Decaln, t.decalnInternal)
}

func (t *Terminal) decalnInternal() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.activeBuffer.FillWithE()
}

// EraseChars resets n characters starting at the cursor to the blank
// state, without shifting the remainder of the row.
func (t *Terminal) EraseChars(n int) {
	invoke1(t.mw().EraseChars, n, t.eraseCharsInternal)
}

func (t *Terminal) eraseCharsInternal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i < n && t.cursor.Col+i < t.cols; i++ {
		if cell := t.activeBuffer.Cell(t.cursor.Row, t.cursor.Col+i); cell != nil {
			cell.Reset()
		}
	}
}

// DeleteChars removes n characters at the cursor, shifting the remainder
// of the row left.
func (t *Terminal) DeleteChars(n int) {
	invoke1(t.mw().DeleteChars, n, t.deleteCharsInternal)
}

func (t *Terminal) deleteCharsInternal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.activeBuffer.DeleteChars(t.cursor.Row, t.cursor.Col, n)
}

// InsertBlank inserts n blank cells at the cursor, shifting the rest of
// the row right.
func (t *Terminal) InsertBlank(n int) {
	invoke1(t.mw().InsertBlank, n, t.insertBlankInternal)
}

func (t *Terminal) insertBlankInternal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.activeBuffer.InsertBlanks(t.cursor.Row, t.cursor.Col, n)
}

// DeleteLines removes n lines at the cursor within the scroll region,
// shifting the lines below up; a no-op if the cursor is outside the
// region.
func (t *Terminal) DeleteLines(n int) {
	invoke1(t.mw().DeleteLines, n, t.deleteLinesInternal)
}

func (t *Terminal) deleteLinesInternal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cursor.Row >= t.scrollTop && t.cursor.Row < t.scrollBottom {
		t.activeBuffer.DeleteLines(t.cursor.Row, n, t.scrollBottom)
	}
}

// InsertBlankLines inserts n blank lines at the cursor within the scroll
// region, shifting the lines below down; a no-op if the cursor is outside
// the region.
func (t *Terminal) InsertBlankLines(n int) {
	invoke1(t.mw().InsertBlankLines, n, t.insertBlankLinesInternal)
}

func (t *Terminal) insertBlankLinesInternal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cursor.Row >= t.scrollTop && t.cursor.Row < t.scrollBottom {
		t.activeBuffer.InsertLines(t.cursor.Row, n, t.scrollBottom)
	}
}

// ScrollUp shifts the scroll region's lines up by n, pushing the top lines
// to scrollback if the active buffer keeps one.
func (t *Terminal) ScrollUp(n int) {
	invoke1(t.mw().ScrollUp, n, t.scrollUpInternal)
}

func (t *Terminal) scrollUpInternal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.activeBuffer.ScrollUp(t.scrollTop, t.scrollBottom, n)
}

// ScrollDown shifts the scroll region's lines down by n, clearing the
// lines that slide in at the top.
func (t *Terminal) ScrollDown(n int) {
	invoke1(t.mw().ScrollDown, n, t.scrollDownInternal)
}

func (t *Terminal) scrollDownInternal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.activeBuffer.ScrollDown(t.scrollTop, t.scrollBottom, n)
}

// SetScrollingRegion sets the scroll margins (1-based inputs, converted to
// 0-based internally) and homes the cursor, respecting origin mode.
func (t *Terminal) SetScrollingRegion(top, bottom int) {
	invoke2(t.mw().SetScrollingRegion, top, bottom, t.setScrollingRegionInternal)
}

func (t *Terminal) setScrollingRegionInternal(top, bottom int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	top, bottom = top-1, bottom-1
	if top < 0 {
		top = 0
	}
	if bottom <= 0 || bottom > t.rows {
		bottom = t.rows
	}
	if top >= bottom {
		return
	}

	t.scrollTop, t.scrollBottom = top, bottom

	if t.modes&ModeOrigin != 0 {
		t.cursor.Row = t.scrollTop
	} else {
		t.cursor.Row = 0
	}
	t.cursor.Col = 0
}
