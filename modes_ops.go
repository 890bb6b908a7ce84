package vtcore

import "fmt"

// modeBits maps a ModeID to the internal Mode bit it corresponds to. A few
// IDs also carry a side effect beyond flipping the bit; those are handled
// in setModeLocked after the table lookup.
var modeBits = map[ModeID]TerminalMode{
	TerminalModeCursorKeys:                    ModeCursorKeys,
	TerminalModeColumnMode:                    ModeColumnMode,
	TerminalModeInsert:                        ModeInsert,
	TerminalModeOrigin:                        ModeOrigin,
	TerminalModeLineWrap:                      ModeLineWrap,
	TerminalModeBlinkingCursor:                ModeBlinkingCursor,
	TerminalModeLineFeedNewLine:                ModeLineFeedNewLine,
	TerminalModeShowCursor:                     ModeShowCursor,
	TerminalModeReportMouseClicks:              ModeReportMouseClicks,
	TerminalModeReportCellMouseMotion:          ModeReportCellMouseMotion,
	TerminalModeReportAllMouseMotion:           ModeReportAllMouseMotion,
	TerminalModeReportFocusInOut:               ModeReportFocusInOut,
	TerminalModeUTF8Mouse:                      ModeUTF8Mouse,
	TerminalModeSGRMouse:                       ModeSGRMouse,
	TerminalModeAlternateScroll:                ModeAlternateScroll,
	TerminalModeUrgencyHints:                   ModeUrgencyHints,
	TerminalModeSwapScreenAndSetRestoreCursor:  ModeSwapScreenAndSetRestoreCursor,
	TerminalModeBracketedPaste:                 ModeBracketedPaste,
}

// SetMode enables a terminal mode flag. A few modes have side effects
// beyond the flag itself (e.g. ModeOrigin homes the cursor).
func (t *Terminal) SetMode(mode ModeID) {
	invoke1(t.mw().SetMode, mode, t.setModeInternal)
}

func (t *Terminal) setModeInternal(mode ModeID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.setModeLocked(mode, true)
}

// UnsetMode disables a terminal mode flag.
func (t *Terminal) UnsetMode(mode ModeID) {
	invoke1(t.mw().UnsetMode, mode, t.unsetModeInternal)
}

func (t *Terminal) unsetModeInternal(mode ModeID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.setModeLocked(mode, false)
}

// setModeLocked sets or clears mode's bit; caller holds t.mu.
func (t *Terminal) setModeLocked(mode ModeID, set bool) {
	bit, ok := modeBits[mode]
	if !ok {
		return
	}

	switch mode {
	case TerminalModeOrigin:
		if set {
			t.cursor.Row = t.scrollTop
			t.cursor.Col = 0
		}
	case TerminalModeShowCursor:
		t.cursor.Visible = set
	case TerminalModeSwapScreenAndSetRestoreCursor:
		// Switching screens drops every image placement; image data stays.
		t.images.mu.Lock()
		t.images.deletePlacementsWhereLocked(func(*ImagePlacement) bool { return true })
		t.images.mu.Unlock()
		if set {
			t.saveCursorPositionLocked()
			t.activeBuffer = t.alternateBuffer
			t.activeBuffer.ClearAll()
		} else {
			t.activeBuffer = t.primaryBuffer
			t.restoreCursorPositionLocked()
		}
	}

	if set {
		t.modes |= bit
	} else {
		t.modes &^= bit
	}
}

// ConfigureCharset assigns a charset to one of the four G0-G3 slots.
func (t *Terminal) ConfigureCharset(index CharsetIndex, charset Charset) {
	invoke2(t.mw().ConfigureCharset, index, charset, t.configureCharsetInternal)
}

func (t *Terminal) configureCharsetInternal(index CharsetIndex, charset Charset) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if index >= 0 && index <= CharsetIndexG3 {
		t.charsets[index] = charset
	}
}

// SetActiveCharset selects which of the four configured charset slots is
// currently used to render characters.
func (t *Terminal) SetActiveCharset(n int) {
	invoke1(t.mw().SetActiveCharset, n, t.setActiveCharsetInternal)
}

func (t *Terminal) setActiveCharsetInternal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if n >= 0 && n < 4 {
		t.activeCharset = n
	}
}

// SetCursorStyle changes the cursor's rendering shape (block/underline/bar,
// blinking or steady).
func (t *Terminal) SetCursorStyle(style CursorStyle) {
	invoke1(t.mw().SetCursorStyle, style, t.setCursorStyleInternal)
}

func (t *Terminal) setCursorStyleInternal(style CursorStyle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cursor.Style = style
}

// SetKeypadApplicationMode switches the numeric keypad to sending escape
// sequences instead of digits.
func (t *Terminal) SetKeypadApplicationMode() {
	invoke0(t.mw().SetKeypadApplicationMode, t.setKeypadApplicationModeInternal)
}

func (t *Terminal) setKeypadApplicationModeInternal() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.modes |= ModeKeypadApplication
}

// UnsetKeypadApplicationMode switches the numeric keypad back to sending
// plain digits.
func (t *Terminal) UnsetKeypadApplicationMode() {
	invoke0(t.mw().UnsetKeypadApplicationMode, t.unsetKeypadApplicationModeInternal)
}

func (t *Terminal) unsetKeypadApplicationModeInternal() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.modes &^= ModeKeypadApplication
}

// SetModifyOtherKeys sets xterm's modifyOtherKeys reporting level.
func (t *Terminal) SetModifyOtherKeys(modify ModifyOtherKeys) {
	invoke1(t.mw().SetModifyOtherKeys, modify, t.setModifyOtherKeysInternal)
}

func (t *Terminal) setModifyOtherKeysInternal(modify ModifyOtherKeys) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.modifyOtherKeys = modify
}

// ReportModifyOtherKeys sends the current modifyOtherKeys level back via a
// DSR-style response.
func (t *Terminal) ReportModifyOtherKeys() {
	invoke0(t.mw().ReportModifyOtherKeys, t.reportModifyOtherKeysInternal)
}

func (t *Terminal) reportModifyOtherKeysInternal() {
	t.mu.RLock()
	modify := t.modifyOtherKeys
	t.mu.RUnlock()

	t.writeResponseString(fmt.Sprintf("\x1b[>4;%dm", modify))
}

// PushKeyboardMode pushes a Kitty keyboard protocol mode onto the stack.
func (t *Terminal) PushKeyboardMode(mode KeyboardMode) {
	invoke1(t.mw().PushKeyboardMode, mode, t.pushKeyboardModeInternal)
}

func (t *Terminal) pushKeyboardModeInternal(mode KeyboardMode) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.keyboardModes = append(t.keyboardModes, mode)
}

// PopKeyboardMode pops n entries off the Kitty keyboard protocol mode
// stack.
func (t *Terminal) PopKeyboardMode(n int) {
	invoke1(t.mw().PopKeyboardMode, n, t.popKeyboardModeInternal)
}

func (t *Terminal) popKeyboardModeInternal(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := 0; i < n && len(t.keyboardModes) > 0; i++ {
		t.keyboardModes = t.keyboardModes[:len(t.keyboardModes)-1]
	}
}

// SetKeyboardMode modifies the top-of-stack Kitty keyboard protocol mode
// per behavior (replace, OR in, or AND-NOT out).
func (t *Terminal) SetKeyboardMode(mode KeyboardMode, behavior KeyboardModeBehavior) {
	invoke2(t.mw().SetKeyboardMode, mode, behavior, t.setKeyboardModeInternal)
}

func (t *Terminal) setKeyboardModeInternal(mode KeyboardMode, behavior KeyboardModeBehavior) {
	t.mu.Lock()
	defer t.mu.Unlock()

	current := KeyboardModeNoMode
	if len(t.keyboardModes) > 0 {
		current = t.keyboardModes[len(t.keyboardModes)-1]
	}

	var next KeyboardMode
	switch behavior {
	case KeyboardModeBehaviorReplace:
		next = mode
	case KeyboardModeBehaviorUnion:
		next = current | mode
	case KeyboardModeBehaviorDifference:
		next = current &^ mode
	}

	if len(t.keyboardModes) > 0 {
		t.keyboardModes[len(t.keyboardModes)-1] = next
	} else {
		t.keyboardModes = append(t.keyboardModes, next)
	}
}

// ReportKeyboardMode sends the top-of-stack Kitty keyboard protocol mode
// back via a DSR-style response.
func (t *Terminal) ReportKeyboardMode() {
	invoke0(t.mw().ReportKeyboardMode, t.reportKeyboardModeInternal)
}

func (t *Terminal) reportKeyboardModeInternal() {
	t.mu.RLock()
	mode := KeyboardModeNoMode
	if len(t.keyboardModes) > 0 {
		mode = t.keyboardModes[len(t.keyboardModes)-1]
	}
	t.mu.RUnlock()

	t.writeResponseString(fmt.Sprintf("\x1b[?%du", mode))
}
