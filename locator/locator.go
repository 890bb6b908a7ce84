// Package locator implements the DEC Text Locator extension (DEC STD 070,
// section 13): DECSLE/DECELR/DECEFR/DECRQLP mode management and the
// DECLRP report format, decoupled from any particular mouse-event source.
package locator

import "fmt"

// Event is a button selector bit for DECSLE (CSI Pm ' {).
type Event uint32

const (
	// EventExplicit is DECSLE parameter 0: explicit locator reports via
	// DECRQLP are always available and carry no mask bit, so selecting it
	// is a deliberate no-op, not a flag that can be OR'd into
	// selectedEvents.
	EventExplicit   Event = 0x00
	EventButtonDown Event = 0x01
	EventButtonUp   Event = 0x02
)

// ReportingMode tracks which of DECELR/DECEFR is currently active.
type ReportingMode int

const (
	ReportingDisabled ReportingMode = iota
	ReportingEnabled
	ReportingEnabledOnce
	ReportingFilterRectangular
)

// CoordinateUnits selects whether reports carry cell or pixel coordinates.
type CoordinateUnits int

const (
	CoordinateUnitsCells CoordinateUnits = iota
	CoordinateUnitsPixels
)

// Button identifies the mouse button driving an update.
type Button int

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
	ButtonWheelUp
	ButtonWheelDown
)

// eventCode is the Pe report parameter for a given button transition.
type eventCode int

const (
	codeLocatorUnavailable    eventCode = 0
	codeRequest               eventCode = 1
	codeLeftButtonDown        eventCode = 2
	codeLeftButtonUp          eventCode = 3
	codeMiddleButtonDown      eventCode = 4
	codeMiddleButtonUp        eventCode = 5
	codeRightButtonDown       eventCode = 6
	codeRightButtonUp         eventCode = 7
	codeWheelDown             eventCode = 8
	codeWheelUp               eventCode = 9
	codeOutsideFilterRect     eventCode = 10
)

func eventCodeFor(button Button, pressed bool) eventCode {
	switch button {
	case ButtonNone:
		return codeLocatorUnavailable
	case ButtonLeft:
		if pressed {
			return codeLeftButtonDown
		}
		return codeLeftButtonUp
	case ButtonMiddle:
		if pressed {
			return codeMiddleButtonDown
		}
		return codeMiddleButtonUp
	case ButtonRight:
		if pressed {
			return codeRightButtonDown
		}
		return codeRightButtonUp
	case ButtonWheelUp:
		return codeWheelUp
	case ButtonWheelDown:
		return codeWheelDown
	}
	return codeLocatorUnavailable
}

// Rectangle is a DECEFR filter rectangle, in cell row/column coordinates
// (it is tested against the locator's cell position).
type Rectangle struct {
	Top, Left, Bottom, Right int
}

func (r Rectangle) contains(row, col int) bool {
	return row >= r.Top && row <= r.Bottom && col >= r.Left && col <= r.Right
}

// Locator holds DEC Text Locator state: selected event mask, reporting
// mode, filter rectangle, current position, and a double-buffered reply
// queue so a caller can peek a pending report without consuming it.
type Locator struct {
	selectedEvents Event
	reportingMode  ReportingMode
	units          CoordinateUnits
	filterRect     Rectangle

	row, col   int
	pixelX     int
	pixelY     int
	pressed    Button

	replyBuf    [2]string
	replyBack   int
}

// New returns a Locator with reporting disabled, matching the terminal's
// reset state.
func New() *Locator {
	return &Locator{}
}

// Reset returns the locator to its power-on state.
func (l *Locator) Reset() {
	*l = Locator{}
}

// SelectEvents implements DECSLE, enabling or disabling button-down/
// button-up event reporting.
func (l *Locator) SelectEvents(event Event, enabled bool) {
	if enabled {
		l.selectedEvents |= event
	} else {
		l.selectedEvents &^= event
	}
}

func (l *Locator) ReportButtonDownEvents() bool { return l.selectedEvents&EventButtonDown != 0 }
func (l *Locator) ReportButtonUpEvents() bool   { return l.selectedEvents&EventButtonUp != 0 }

// DisableReporting implements DECELR with argument 0: cancels any active
// filter rectangle too.
func (l *Locator) DisableReporting() {
	l.reportingMode = ReportingDisabled
}

// EnableReporting implements DECELR with argument 1.
func (l *Locator) EnableReporting(units CoordinateUnits) {
	l.reportingMode = ReportingEnabled
	l.units = units
}

// EnableReportingOnce implements DECELR with argument 2: the next update
// reports, then reporting is disabled again.
func (l *Locator) EnableReportingOnce(units CoordinateUnits) {
	l.reportingMode = ReportingEnabledOnce
	l.units = units
}

// EnableFilterRectangle implements DECEFR. It always supersedes a prior
// rectangle or plain DECELR, and is one-shot: the first time the locator
// position is found outside rect, an outside-rectangle event fires and
// filtering disables itself.
func (l *Locator) EnableFilterRectangle(rect Rectangle) {
	l.reportingMode = ReportingFilterRectangular
	l.filterRect = rect
}

func (l *Locator) DisableFilterRectangle() {
	l.reportingMode = ReportingDisabled
}

func (l *Locator) FilterRectangleEnabled() bool {
	return l.reportingMode == ReportingFilterRectangular
}

// RequestPosition implements DECRQLP: queues an immediate DECLRP report of
// the current position, regardless of reporting mode.
func (l *Locator) RequestPosition() {
	l.queue(createReport(codeRequest, l.pressed, l.reportRow(), l.reportCol()))
}

// PeekReply returns the pending reply buffer without consuming it.
func (l *Locator) PeekReply() string {
	return l.replyBuf[l.replyBack]
}

// FetchReplyAndClear returns the pending reply and swaps to the other
// buffer, mirroring the double-buffered reply queue so a report built
// mid-flush never mixes with one already being read out.
func (l *Locator) FetchReplyAndClear() string {
	reply := l.replyBuf[l.replyBack]
	l.replyBuf[l.replyBack] = ""
	l.replyBack = (l.replyBack + 1) % 2
	return reply
}

func (l *Locator) queue(report string) {
	l.replyBuf[l.replyBack] += report
}

func (l *Locator) reportRow() int {
	if l.units == CoordinateUnitsPixels {
		return l.pixelY
	}
	return l.row
}

func (l *Locator) reportCol() int {
	if l.units == CoordinateUnitsPixels {
		return l.pixelX
	}
	return l.col
}

// UpdateMove records a locator motion without a button transition.
func (l *Locator) UpdateMove(row, col, pixelX, pixelY int) {
	l.row, l.col = row, col
	l.pixelX, l.pixelY = pixelX, pixelY

	if l.reportingMode == ReportingFilterRectangular && !l.filterRect.contains(row, col) {
		l.queue(createReport(codeOutsideFilterRect, l.pressed, l.reportRow(), l.reportCol()))
		l.reportingMode = ReportingDisabled
	}
}

// UpdatePress records a button press/release and, if reporting is active
// and the button direction is selected, queues a DECLRP report.
func (l *Locator) UpdatePress(button Button, pressed bool) {
	if pressed {
		l.pressed = button
	} else if l.pressed == button {
		l.pressed = ButtonNone
	}

	switch l.reportingMode {
	case ReportingDisabled:
		return
	}

	if pressed && !l.ReportButtonDownEvents() {
		return
	}
	if !pressed && !l.ReportButtonUpEvents() {
		return
	}
	if l.reportingMode == ReportingEnabledOnce {
		l.reportingMode = ReportingDisabled
	}

	l.queue(createReport(eventCodeFor(button, pressed), button, l.reportRow(), l.reportCol()))
}

// createReport formats a DECLRP report: CSI Pe;Pb;Pr;Pc;Pp & w, or the
// locator-unavailable short form when the event itself means "no locator".
func createReport(event eventCode, button Button, row, col int) string {
	if event == codeLocatorUnavailable {
		return "\x1b[0&m"
	}
	return fmt.Sprintf("\x1b[%d;%d;%d;%d;1&w", event, buttonMask(button), row, col)
}

// buttonMask encodes the button driving the event as the Pb field DECLRP
// expects (bit 0 left, bit 1 middle, bit 2 right); matches spec.md's
// literal scenario: Left button down reports Pb=1.
func buttonMask(button Button) int {
	switch button {
	case ButtonLeft:
		return 1
	case ButtonMiddle:
		return 2
	case ButtonRight:
		return 4
	}
	return 0
}
