package vtcore

import (
	"fmt"
	"image/color"
)

// DeviceStatus answers a DSR request: terminal-ready (n=5) or cursor
// position report (n=6).
func (t *Terminal) DeviceStatus(n int) {
	invoke1(t.mw().DeviceStatus, n, t.deviceStatusInternal)
}

func (t *Terminal) deviceStatusInternal(n int) {
	t.mu.RLock()
	row, col := t.cursor.Row, t.cursor.Col
	t.mu.RUnlock()

	switch n {
	case 5:
		t.writeResponseString("\x1b[0n")
	case 6:
		t.writeResponseString(fmt.Sprintf("\x1b[%d;%dR", row+1, col+1))
	}
}

// IdentifyTerminal answers a DA request, identifying as a VT220.
func (t *Terminal) IdentifyTerminal(b byte) {
	invoke1(t.mw().IdentifyTerminal, b, t.identifyTerminalInternal)
}

func (t *Terminal) identifyTerminalInternal(b byte) {
	t.writeResponseString("\x1b[?62;c")
}

// TextAreaSizeChars answers an XTWINOPS 18 query with the terminal's size in
// character cells.
func (t *Terminal) TextAreaSizeChars() {
	invoke0(t.mw().TextAreaSizeChars, t.textAreaSizeCharsInternal)
}

func (t *Terminal) textAreaSizeCharsInternal() {
	t.mu.RLock()
	rows, cols := t.rows, t.cols
	t.mu.RUnlock()

	t.writeResponseString(fmt.Sprintf("\x1b[8;%d;%dt", rows, cols))
}

// cellPixelWidth and cellPixelHeight are the assumed cell dimensions used to
// answer pixel-size queries when no size provider reports real metrics.
const (
	cellPixelWidth  = 10
	cellPixelHeight = 20
)

// TextAreaSizePixels answers an XTWINOPS 14 query with the terminal's size
// in pixels, assuming a fixed cell size.
func (t *Terminal) TextAreaSizePixels() {
	invoke0(t.mw().TextAreaSizePixels, t.textAreaSizePixelsInternal)
}

func (t *Terminal) textAreaSizePixelsInternal() {
	t.mu.RLock()
	rows, cols := t.rows, t.cols
	t.mu.RUnlock()

	t.writeResponseString(fmt.Sprintf("\x1b[4;%d;%dt", rows*cellPixelHeight, cols*cellPixelWidth))
}

// CellSizePixels answers an XTWINOPS 16 query with the pixel size of one
// cell, deferring to the configured size provider when present.
func (t *Terminal) CellSizePixels() {
	t.mu.RLock()
	sizeProvider := t.sizeProvider
	t.mu.RUnlock()

	width, height := cellPixelWidth, cellPixelHeight
	if sizeProvider != nil {
		width, height = sizeProvider.CellSizePixels()
	}

	t.writeResponseString(fmt.Sprintf("\x1b[6;%d;%dt", height, width))
}

// ResetState reinitializes the terminal to its post-construction defaults:
// cleared screen, home cursor, default attributes, full-height scroll
// region, cleared color/keyboard-mode/hyperlink overrides, and no stored
// images or placements.
func (t *Terminal) ResetState() {
	invoke0(t.mw().ResetState, t.resetStateInternal)
}

func (t *Terminal) resetStateInternal() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.activeBuffer.ClearAll()
	t.cursor.Row = 0
	t.cursor.Col = 0
	t.cursor.Visible = true
	t.cursor.Style = CursorStyleBlinkingBlock

	t.template = NewCellTemplate()
	t.scrollTop = 0
	t.scrollBottom = t.rows
	t.modes = ModeLineWrap | ModeShowCursor

	t.charsets = [4]Charset{CharsetASCII, CharsetASCII, CharsetASCII, CharsetASCII}
	t.activeCharset = 0

	t.colors = make(map[int]color.Color)
	t.keyboardModes = make([]KeyboardMode, 0)
	t.currentHyperlink = nil
	t.hyperlinkIntern.clear()
	t.images.Clear()
}
