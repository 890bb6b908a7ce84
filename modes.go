package vtcore

// This file defines the small vocabulary of enums and parameter structs
// that CSI/OSC/ESC dispatch hands to the Terminal's semantic operations.
// It plays the role the teacher sourced from an external VTE decoder
// package; here the dispatch table in dispatch.go builds these values
// directly from parsed sequence parameters instead of receiving them
// pre-decoded.

// LineClearMode selects which part of the current line EL (CSI K) erases.
type LineClearMode int

const (
	LineClearModeRight LineClearMode = iota
	LineClearModeLeft
	LineClearModeAll
)

// ClearMode selects which part of the screen ED (CSI J) erases.
type ClearMode int

const (
	ClearModeBelow ClearMode = iota
	ClearModeAbove
	ClearModeAll
	ClearModeSaved
)

// TabulationClearMode selects which tab stops TBC (CSI g) clears.
type TabulationClearMode int

const (
	TabulationClearModeCurrent TabulationClearMode = iota
	TabulationClearModeAll
)

// KeyboardMode is a Kitty keyboard protocol progressive-enhancement flag
// set (CSI > Ps u / CSI < u / CSI = Ps ; Pm u).
type KeyboardMode int

const (
	KeyboardModeNoMode                 KeyboardMode = 0
	KeyboardModeDisambiguateEscapes     KeyboardMode = 1 << 0
	KeyboardModeReportEventTypes        KeyboardMode = 1 << 1
	KeyboardModeReportAlternateKeys     KeyboardMode = 1 << 2
	KeyboardModeReportAllKeysAsEscapes  KeyboardMode = 1 << 3
	KeyboardModeReportAssociatedText    KeyboardMode = 1 << 4
)

// KeyboardModeBehavior selects how SetKeyboardMode combines with the
// currently active mode set.
type KeyboardModeBehavior int

const (
	KeyboardModeBehaviorReplace KeyboardModeBehavior = iota
	KeyboardModeBehaviorUnion
	KeyboardModeBehaviorDifference
)

// ModifyOtherKeys is the xterm modifyOtherKeys resource value (CSI > 4 ; Pv m).
type ModifyOtherKeys int

const (
	ModifyOtherKeysReset ModifyOtherKeys = iota
	ModifyOtherKeysExceptWellDefined
	ModifyOtherKeysAll
)

// ModeID identifies a DEC private (CSI ? Ps h/l) or ANSI (CSI Ps h/l) mode
// as decoded from a CSI parameter, before it is mapped to the Terminal's
// own TerminalMode bitmask flag.
type ModeID int

const (
	TerminalModeCursorKeys ModeID = iota
	TerminalModeColumnMode
	TerminalModeInsert
	TerminalModeOrigin
	TerminalModeLineWrap
	TerminalModeBlinkingCursor
	TerminalModeShowCursor
	TerminalModeReportMouseClicks
	TerminalModeReportCellMouseMotion
	TerminalModeReportAllMouseMotion
	TerminalModeReportFocusInOut
	TerminalModeUTF8Mouse
	TerminalModeSGRMouse
	TerminalModeAlternateScroll
	TerminalModeSwapScreenAndSetRestoreCursor
	TerminalModeBracketedPaste
	TerminalModeLineFeedNewLine
	TerminalModeUrgencyHints
)

// CharAttributeKind identifies an SGR (CSI Pm m) attribute.
type CharAttributeKind int

const (
	CharAttributeReset CharAttributeKind = iota
	CharAttributeBold
	CharAttributeDim
	CharAttributeItalic
	CharAttributeUnderline
	CharAttributeDoubleUnderline
	CharAttributeCurlyUnderline
	CharAttributeDottedUnderline
	CharAttributeDashedUnderline
	CharAttributeBlinkSlow
	CharAttributeBlinkFast
	CharAttributeReverse
	CharAttributeHidden
	CharAttributeStrike
	CharAttributeCancelBold
	CharAttributeCancelBoldDim
	CharAttributeCancelItalic
	CharAttributeCancelUnderline
	CharAttributeCancelBlink
	CharAttributeCancelReverse
	CharAttributeCancelHidden
	CharAttributeCancelStrike
	CharAttributeForeground
	CharAttributeBackground
	CharAttributeUnderlineColor
)

// RGBColorValue is a truecolor SGR operand (38/48/58;2;r;g;b).
type RGBColorValue struct {
	R, G, B uint8
}

// IndexedColorValue is a palette SGR operand (38/48/58;5;n).
type IndexedColorValue struct {
	Index uint8
}

// TerminalCharAttribute is one decoded SGR instruction.
type TerminalCharAttribute struct {
	Attr         CharAttributeKind
	RGBColor     *RGBColorValue
	IndexedColor *IndexedColorValue
	NamedColor   *int
}

// ShellIntegrationMark identifies an OSC 133 shell-integration marker.
type ShellIntegrationMark int

const (
	PromptStart ShellIntegrationMark = iota
	CommandStart
	CommandExecuted
	CommandFinished
)

// NotificationPayload is the decoded body of an OSC 9 / OSC 99 desktop
// notification request (Kitty desktop notifications protocol).
type NotificationPayload struct {
	ID          string
	Done        bool
	PayloadType string
	Encoding    string
	Actions     []string
	TrackClose  bool
	Timeout     int
	AppName     string
	Type        string
	IconName    string
	IconCacheID string
	Sound       string
	Urgency     int
	Occasion    string
	Data        []byte
}
