package vtcore

// Backspace moves the cursor one column left, stopping at column 0.
func (t *Terminal) Backspace() {
	invoke0(t.mw().Backspace, t.backspaceInternal)
}

func (t *Terminal) backspaceInternal() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cursor.Col > 0 {
		t.cursor.Col--
	}
}

// CarriageReturn moves the cursor to column 0 of the current row.
func (t *Terminal) CarriageReturn() {
	invoke0(t.mw().CarriageReturn, t.carriageReturnInternal)
}

func (t *Terminal) carriageReturnInternal() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cursor.Col = 0
}

// LineFeed moves the cursor down one row, moving to column 0 as well if
// ModeLineFeedNewLine is set. Clears the current row's wrapped flag, since
// an explicit line feed is not a reflow-induced wrap.
func (t *Terminal) LineFeed() {
	invoke0(t.mw().LineFeed, t.lineFeedInternal)
}

func (t *Terminal) lineFeedInternal() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.activeBuffer.SetWrapped(t.cursor.Row, false)
	if t.modes&ModeLineFeedNewLine != 0 {
		t.cursor.Col = 0
	}
	t.cursor.Row++
	t.scrollIfNeeded()
}

// ReverseIndex moves the cursor up one row, scrolling the region down
// instead if the cursor sits on the top margin.
func (t *Terminal) ReverseIndex() {
	invoke0(t.mw().ReverseIndex, t.reverseIndexInternal)
}

func (t *Terminal) reverseIndexInternal() {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch {
	case t.cursor.Row == t.scrollTop:
		t.activeBuffer.ScrollDown(t.scrollTop, t.scrollBottom, 1)
	case t.cursor.Row > 0:
		t.cursor.Row--
	}
}

// Goto moves the cursor to (row, col), adjusting row for origin mode.
func (t *Terminal) Goto(row, col int) {
	invoke2(t.mw().Goto, row, col, t.gotoInternal)
}

func (t *Terminal) gotoInternal(row, col int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row = t.effectiveRow(row)
	t.cursor.Row = clamp(row, 0, t.rows-1)
	t.cursor.Col = clamp(col, 0, t.cols-1)
}

// GotoCol moves the cursor to the given column, keeping the current row.
func (t *Terminal) GotoCol(col int) {
	invoke1(t.mw().GotoCol, col, t.gotoColInternal)
}

func (t *Terminal) gotoColInternal(col int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cursor.Col = clamp(col, 0, t.cols-1)
}

// GotoLine moves the cursor to the given row, adjusting for origin mode.
func (t *Terminal) GotoLine(row int) {
	invoke1(t.mw().GotoLine, row, t.gotoLineInternal)
}

func (t *Terminal) gotoLineInternal(row int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cursor.Row = clamp(t.effectiveRow(row), 0, t.rows-1)
}

// moveRow and moveCol are the shared bodies behind the eight relative
// cursor-motion operations (MoveUp/Down/Forward/Backward, their
// column-0-resetting -Cr variants, and the two tab-stop walkers don't use
// these since they step through the buffer's tab table instead of by a
// fixed count).
func (t *Terminal) moveRow(delta int, resetCol bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cursor.Row = clamp(t.cursor.Row+delta, 0, t.rows-1)
	if resetCol {
		t.cursor.Col = 0
	}
}

func (t *Terminal) moveCol(delta int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cursor.Col = clamp(t.cursor.Col+delta, 0, t.cols-1)
}

// MoveUp moves the cursor up n rows, stopping at row 0.
func (t *Terminal) MoveUp(n int) {
	invoke1(t.mw().MoveUp, n, t.moveUpInternal)
}

func (t *Terminal) moveUpInternal(n int) { t.moveRow(-n, false) }

// MoveDown moves the cursor down n rows, stopping at the last row.
func (t *Terminal) MoveDown(n int) {
	invoke1(t.mw().MoveDown, n, t.moveDownInternal)
}

func (t *Terminal) moveDownInternal(n int) { t.moveRow(n, false) }

// MoveUpCr moves the cursor up n rows and to column 0.
func (t *Terminal) MoveUpCr(n int) {
	invoke1(t.mw().MoveUpCr, n, t.moveUpCrInternal)
}

func (t *Terminal) moveUpCrInternal(n int) { t.moveRow(-n, true) }

// MoveDownCr moves the cursor down n rows and to column 0.
func (t *Terminal) MoveDownCr(n int) {
	invoke1(t.mw().MoveDownCr, n, t.moveDownCrInternal)
}

func (t *Terminal) moveDownCrInternal(n int) { t.moveRow(n, true) }

// MoveForward moves the cursor right n columns, stopping at the last column.
func (t *Terminal) MoveForward(n int) {
	invoke1(t.mw().MoveForward, n, t.moveForwardInternal)
}

func (t *Terminal) moveForwardInternal(n int) { t.moveCol(n) }

// MoveBackward moves the cursor left n columns, stopping at column 0.
func (t *Terminal) MoveBackward(n int) {
	invoke1(t.mw().MoveBackward, n, t.moveBackwardInternal)
}

func (t *Terminal) moveBackwardInternal(n int) { t.moveCol(-n) }

// MoveForwardTabs moves the cursor right to the next n tab stops.
func (t *Terminal) MoveForwardTabs(n int) {
	invoke1(t.mw().MoveForwardTabs, n, t.moveForwardTabsInternal)
}

func (t *Terminal) moveForwardTabsInternal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i < n; i++ {
		t.cursor.Col = t.activeBuffer.NextTabStop(t.cursor.Col)
	}
}

// MoveBackwardTabs moves the cursor left to the previous n tab stops.
func (t *Terminal) MoveBackwardTabs(n int) {
	invoke1(t.mw().MoveBackwardTabs, n, t.moveBackwardTabsInternal)
}

func (t *Terminal) moveBackwardTabsInternal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i < n; i++ {
		t.cursor.Col = t.activeBuffer.PrevTabStop(t.cursor.Col)
	}
}

// Tab moves the cursor right to the next n tab stops (identical to
// MoveForwardTabs; kept as a distinct entry point since C0 TAB and CSI I
// are dispatched separately).
func (t *Terminal) Tab(n int) {
	invoke1(t.mw().Tab, n, t.tabInternal)
}

func (t *Terminal) tabInternal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i < n; i++ {
		t.cursor.Col = t.activeBuffer.NextTabStop(t.cursor.Col)
	}
}

// HorizontalTabSet sets a tab stop at the current column.
func (t *Terminal) HorizontalTabSet() {
	invoke0(t.mw().HorizontalTabSet, t.horizontalTabSetInternal)
}

func (t *Terminal) horizontalTabSetInternal() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.activeBuffer.SetTabStop(t.cursor.Col)
}

// ClearTabs removes the tab stop at the current column, or all of them.
func (t *Terminal) ClearTabs(mode TabulationClearMode) {
	invoke1(t.mw().ClearTabs, mode, t.clearTabsInternal)
}

func (t *Terminal) clearTabsInternal(mode TabulationClearMode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch mode {
	case TabulationClearModeCurrent:
		t.activeBuffer.ClearTabStop(t.cursor.Col)
	case TabulationClearModeAll:
		t.activeBuffer.ClearAllTabStops()
	}
}

// SaveCursorPosition saves cursor position, attributes, charsets, and
// origin mode for a later RestoreCursorPosition.
func (t *Terminal) SaveCursorPosition() {
	invoke0(t.mw().SaveCursorPosition, t.saveCursorPositionInternal)
}

func (t *Terminal) saveCursorPositionInternal() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.saveCursorPositionLocked()
}

// saveCursorPositionLocked is saveCursorPositionInternal's body, callable
// by operations (like entering the alternate screen) that already hold the
// lock.
func (t *Terminal) saveCursorPositionLocked() {
	t.savedCursor = &SavedCursor{
		Row:          t.cursor.Row,
		Col:          t.cursor.Col,
		Attrs:        t.template,
		OriginMode:   t.modes&ModeOrigin != 0,
		CharsetIndex: t.activeCharset,
		Charsets:     t.charsets,
	}
}

// RestoreCursorPosition restores the state captured by the last
// SaveCursorPosition; a no-op if nothing was ever saved.
func (t *Terminal) RestoreCursorPosition() {
	invoke0(t.mw().RestoreCursorPosition, t.restoreCursorPositionInternal)
}

func (t *Terminal) restoreCursorPositionInternal() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.restoreCursorPositionLocked()
}

func (t *Terminal) restoreCursorPositionLocked() {
	if t.savedCursor == nil {
		return
	}

	t.cursor.Row = t.savedCursor.Row
	t.cursor.Col = t.savedCursor.Col
	t.template = t.savedCursor.Attrs

	if t.savedCursor.OriginMode {
		t.modes |= ModeOrigin
	} else {
		t.modes &^= ModeOrigin
	}

	t.activeCharset = t.savedCursor.CharsetIndex
	t.charsets = t.savedCursor.Charsets
}
