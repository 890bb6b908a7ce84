package vtcore

import (
	"encoding/base64"
	"image/color"
	"strconv"
	"strings"

	"github.com/nox-term/vtcore/parser"
)

// dispatcher implements parser.Listener, translating the raw event stream
// produced by the parser into calls on the Terminal's semantic operations.
// It owns all parameter/intermediate/payload accumulation; the parser
// itself carries no state beyond the input FSM and partial-rune buffer.
type dispatcher struct {
	parser.BaseListener

	t *Terminal

	leader        byte
	intermediates []byte
	curParam      []byte
	params        []string

	oscBuf []byte
	apcBuf []byte
	pmBuf  []byte

	dcsParamBuf []byte
	dcsFinal    byte
	dcsData     []byte
}

func newDispatcher(t *Terminal) parser.Listener {
	return &dispatcher{t: t}
}

func (d *dispatcher) Print(text string, cellCount int) {
	for _, r := range text {
		d.t.Input(r)
	}
}

func (d *dispatcher) Execute(b byte) {
	switch b {
	case 0x07:
		d.t.Bell()
	case 0x08:
		d.t.Backspace()
	case 0x09:
		d.t.Tab(1)
	case 0x0A, 0x0B, 0x0C:
		d.t.LineFeed()
	case 0x0D:
		d.t.CarriageReturn()
	}
}

func (d *dispatcher) Clear() {
	d.leader = 0
	d.intermediates = d.intermediates[:0]
	d.curParam = d.curParam[:0]
	d.params = d.params[:0]
}

func (d *dispatcher) Collect(b byte)       { d.intermediates = append(d.intermediates, b) }
func (d *dispatcher) CollectLeader(b byte) { d.leader = b }

func (d *dispatcher) Param(b byte) { d.dcsParamBuf = append(d.dcsParamBuf, b) }

func (d *dispatcher) ParamDigit(b byte) { d.curParam = append(d.curParam, b) }

func (d *dispatcher) ParamSeparator() {
	d.params = append(d.params, string(d.curParam))
	d.curParam = d.curParam[:0]
}

func (d *dispatcher) ParamSubSeparator() { d.curParam = append(d.curParam, ':') }

// finishParams closes out the parameter accumulated so far and returns the
// full list. Safe to call even when no digits were ever seen (CSI with
// no parameters at all dispatches with a single empty entry).
func (d *dispatcher) finishParams() []string {
	d.params = append(d.params, string(d.curParam))
	d.curParam = d.curParam[:0]
	return d.params
}

func paramInt(s string, def int) int {
	if s == "" {
		return def
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func (d *dispatcher) DispatchCSI(b byte) {
	params := d.finishParams()
	t := d.t

	get := func(i, def int) int {
		if i < len(params) {
			return paramInt(params[i], def)
		}
		return def
	}
	// n1 applies the ECMA-48 convention that a 0 or missing numeric
	// parameter means "1" for repeat counts.
	n1 := func(def int) int {
		v := get(0, def)
		if v == 0 {
			return def
		}
		return v
	}

	switch d.leader {
	case '?':
		d.dispatchCSIPrivate(b, params)
		return
	case '>':
		d.dispatchCSIGreater(b, params)
		return
	case '<':
		if b == 'u' {
			t.PopKeyboardMode(n1(1))
		}
		return
	case '=':
		if b == 'u' {
			t.SetKeyboardMode(KeyboardMode(get(0, 0)), KeyboardModeBehavior(get(1, 0)))
		}
		return
	}

	switch b {
	case 'A':
		t.MoveUp(n1(1))
	case 'B':
		t.MoveDown(n1(1))
	case 'C':
		t.MoveForward(n1(1))
	case 'D':
		t.MoveBackward(n1(1))
	case 'E':
		t.MoveDownCr(n1(1))
	case 'F':
		t.MoveUpCr(n1(1))
	case 'G', '`':
		t.GotoCol(n1(1) - 1)
	case 'H', 'f':
		t.Goto(n1(1)-1, get(1, 1)-1)
	case 'I':
		t.MoveForwardTabs(n1(1))
	case 'J':
		t.ClearScreen(ClearMode(get(0, 0)))
	case 'K':
		t.ClearLine(LineClearMode(get(0, 0)))
	case 'L':
		t.InsertBlankLines(n1(1))
	case 'M':
		t.DeleteLines(n1(1))
	case 'P':
		t.DeleteChars(n1(1))
	case 'S':
		t.ScrollUp(n1(1))
	case 'T':
		t.ScrollDown(n1(1))
	case 'X':
		t.EraseChars(n1(1))
	case 'Z':
		t.MoveBackwardTabs(n1(1))
	case 'd':
		t.GotoLine(n1(1) - 1)
	case 'g':
		t.ClearTabs(TabulationClearMode(get(0, 0)))
	case 'h':
		for _, p := range params {
			if id, ok := ansiModeID(paramInt(p, 0)); ok {
				t.SetMode(id)
			}
		}
	case 'l':
		for _, p := range params {
			if id, ok := ansiModeID(paramInt(p, 0)); ok {
				t.UnsetMode(id)
			}
		}
	case 'm':
		d.dispatchSGR(params)
	case 'n':
		t.DeviceStatus(get(0, 0))
	case 'q':
		if len(d.intermediates) > 0 && d.intermediates[0] == ' ' {
			t.SetCursorStyle(CursorStyle(get(0, 0)))
		}
	case 'r':
		t.SetScrollingRegion(get(0, 0), get(1, 0))
	case '@':
		t.InsertBlank(n1(1))
	case 'c':
		t.IdentifyTerminal(0)
	case 't':
		d.dispatchWindowOp(get(0, 0))
	}
}

// dispatchWindowOp handles the xterm window manipulation sequence CSI Ps t,
// restricted to the text-dimension and title-stack queries this library
// supports (no actual window exists to resize or raise).
func (d *dispatcher) dispatchWindowOp(op int) {
	switch op {
	case 14:
		d.t.TextAreaSizePixels()
	case 16:
		d.t.CellSizePixels()
	case 18:
		d.t.TextAreaSizeChars()
	case 22:
		d.t.PushTitle()
	case 23:
		d.t.PopTitle()
	}
}

// dispatchCSIPrivate handles CSI ? Pm <final> (DEC private mode set/reset
// plus the Kitty keyboard protocol's query/push/pop variants).
func (d *dispatcher) dispatchCSIPrivate(b byte, params []string) {
	t := d.t
	get := func(i, def int) int {
		if i < len(params) {
			return paramInt(params[i], def)
		}
		return def
	}

	switch b {
	case 'h':
		for _, p := range params {
			if id, ok := decModeID(paramInt(p, 0)); ok {
				t.SetMode(id)
			}
		}
	case 'l':
		for _, p := range params {
			if id, ok := decModeID(paramInt(p, 0)); ok {
				t.UnsetMode(id)
			}
		}
	case 'u':
		// CSI > Pm u pushes a keyboard mode; CSI ? u reports it; CSI < u pops it.
		t.ReportKeyboardMode()
	case 'n':
		t.DeviceStatus(get(0, 0))
	}
}

// dispatchCSIGreater handles CSI > Pm <final> (secondary DA, the Kitty
// keyboard protocol push, and xterm modifyOtherKeys).
func (d *dispatcher) dispatchCSIGreater(b byte, params []string) {
	t := d.t
	get := func(i, def int) int {
		if i < len(params) {
			return paramInt(params[i], def)
		}
		return def
	}

	switch b {
	case 'c':
		t.IdentifyTerminal('>')
	case 'm':
		if get(0, 4) == 4 {
			t.SetModifyOtherKeys(ModifyOtherKeys(get(1, 0)))
		} else {
			t.ReportModifyOtherKeys()
		}
	case 'u':
		t.PushKeyboardMode(KeyboardMode(get(0, 0)))
	}
}

func ansiModeID(n int) (ModeID, bool) {
	switch n {
	case 4:
		return TerminalModeInsert, true
	case 20:
		return TerminalModeLineFeedNewLine, true
	}
	return 0, false
}

func decModeID(n int) (ModeID, bool) {
	switch n {
	case 1:
		return TerminalModeCursorKeys, true
	case 3:
		return TerminalModeColumnMode, true
	case 6:
		return TerminalModeOrigin, true
	case 7:
		return TerminalModeLineWrap, true
	case 12:
		return TerminalModeBlinkingCursor, true
	case 25:
		return TerminalModeShowCursor, true
	case 47, 1047, 1049:
		return TerminalModeSwapScreenAndSetRestoreCursor, true
	case 1000:
		return TerminalModeReportMouseClicks, true
	case 1002:
		return TerminalModeReportCellMouseMotion, true
	case 1003:
		return TerminalModeReportAllMouseMotion, true
	case 1004:
		return TerminalModeReportFocusInOut, true
	case 1005:
		return TerminalModeUTF8Mouse, true
	case 1006:
		return TerminalModeSGRMouse, true
	case 1007:
		return TerminalModeAlternateScroll, true
	case 1042:
		return TerminalModeUrgencyHints, true
	case 2004:
		return TerminalModeBracketedPaste, true
	}
	return 0, false
}

// dispatchSGR walks the parameter list applying CSI Pm m attributes one at
// a time, consuming the extra operands of the extended 38/48/58 color
// forms (both "38;5;N"/"38;2;R;G;B" and the colon sub-parameter spelling).
func (d *dispatcher) dispatchSGR(params []string) {
	if len(params) == 0 {
		d.emit(CharAttributeReset)
		return
	}

	for i := 0; i < len(params); i++ {
		parts := strings.Split(params[i], ":")
		code := paramInt(parts[0], 0)

		switch {
		case code == 0:
			d.emit(CharAttributeReset)
		case code == 1:
			d.emit(CharAttributeBold)
		case code == 2:
			d.emit(CharAttributeDim)
		case code == 3:
			d.emit(CharAttributeItalic)
		case code == 4:
			d.emitUnderline(parts)
		case code == 5:
			d.emit(CharAttributeBlinkSlow)
		case code == 6:
			d.emit(CharAttributeBlinkFast)
		case code == 7:
			d.emit(CharAttributeReverse)
		case code == 8:
			d.emit(CharAttributeHidden)
		case code == 9:
			d.emit(CharAttributeStrike)
		case code == 21:
			d.emit(CharAttributeDoubleUnderline)
		case code == 22:
			d.emit(CharAttributeCancelBoldDim)
		case code == 23:
			d.emit(CharAttributeCancelItalic)
		case code == 24:
			d.emit(CharAttributeCancelUnderline)
		case code == 25:
			d.emit(CharAttributeCancelBlink)
		case code == 27:
			d.emit(CharAttributeCancelReverse)
		case code == 28:
			d.emit(CharAttributeCancelHidden)
		case code == 29:
			d.emit(CharAttributeCancelStrike)
		case code >= 30 && code <= 37:
			d.emitNamed(CharAttributeForeground, code-30)
		case code == 38:
			i += d.emitExtendedColor(CharAttributeForeground, parts, params, i)
		case code == 39:
			d.emitNamed(CharAttributeForeground, NamedColorForeground)
		case code >= 40 && code <= 47:
			d.emitNamed(CharAttributeBackground, code-40)
		case code == 48:
			i += d.emitExtendedColor(CharAttributeBackground, parts, params, i)
		case code == 49:
			d.emitNamed(CharAttributeBackground, NamedColorBackground)
		case code == 58:
			i += d.emitExtendedColor(CharAttributeUnderlineColor, parts, params, i)
		case code == 59:
			d.emit(CharAttributeUnderlineColor)
		case code >= 90 && code <= 97:
			d.emitNamed(CharAttributeForeground, code-90+8)
		case code >= 100 && code <= 107:
			d.emitNamed(CharAttributeBackground, code-100+8)
		}
	}
}

func (d *dispatcher) emitUnderline(parts []string) {
	if len(parts) > 1 {
		switch parts[1] {
		case "0":
			d.emit(CharAttributeCancelUnderline)
			return
		case "2":
			d.emit(CharAttributeDoubleUnderline)
			return
		case "3":
			d.emit(CharAttributeCurlyUnderline)
			return
		case "4":
			d.emit(CharAttributeDottedUnderline)
			return
		case "5":
			d.emit(CharAttributeDashedUnderline)
			return
		}
	}
	d.emit(CharAttributeUnderline)
}

func (d *dispatcher) emit(kind CharAttributeKind) {
	d.t.SetTerminalCharAttribute(TerminalCharAttribute{Attr: kind})
}

func (d *dispatcher) emitNamed(kind CharAttributeKind, idx int) {
	n := idx
	d.t.SetTerminalCharAttribute(TerminalCharAttribute{Attr: kind, NamedColor: &n})
}

// emitExtendedColor handles the 38/48/58 extended color forms and returns
// how many extra entries of params (beyond params[i]) it consumed.
func (d *dispatcher) emitExtendedColor(kind CharAttributeKind, parts []string, params []string, i int) int {
	if len(parts) > 1 {
		switch parts[1] {
		case "5":
			if len(parts) >= 3 {
				d.t.SetTerminalCharAttribute(TerminalCharAttribute{
					Attr:         kind,
					IndexedColor: &IndexedColorValue{Index: uint8(paramInt(parts[2], 0))},
				})
			}
		case "2":
			vals := parts[2:]
			if len(vals) >= 4 {
				vals = vals[1:] // drop the optional colorspace-id field
			}
			if len(vals) >= 3 {
				d.t.SetTerminalCharAttribute(TerminalCharAttribute{
					Attr: kind,
					RGBColor: &RGBColorValue{
						R: uint8(paramInt(vals[0], 0)),
						G: uint8(paramInt(vals[1], 0)),
						B: uint8(paramInt(vals[2], 0)),
					},
				})
			}
		}
		return 0
	}

	if i+1 >= len(params) {
		return 0
	}
	switch paramInt(params[i+1], 0) {
	case 5:
		if i+2 < len(params) {
			d.t.SetTerminalCharAttribute(TerminalCharAttribute{
				Attr:         kind,
				IndexedColor: &IndexedColorValue{Index: uint8(paramInt(params[i+2], 0))},
			})
			return 2
		}
		return 1
	case 2:
		if i+4 < len(params) {
			d.t.SetTerminalCharAttribute(TerminalCharAttribute{
				Attr: kind,
				RGBColor: &RGBColorValue{
					R: uint8(paramInt(params[i+2], 0)),
					G: uint8(paramInt(params[i+3], 0)),
					B: uint8(paramInt(params[i+4], 0)),
				},
			})
			return 4
		}
		return 1
	}
	return 1
}

func (d *dispatcher) DispatchESC(b byte) {
	t := d.t

	if len(d.intermediates) > 0 {
		switch d.intermediates[0] {
		case '#':
			if b == '8' {
				t.Decaln()
			}
		case '(':
			t.ConfigureCharset(CharsetIndexG0, charsetFromFinal(b))
		case ')':
			t.ConfigureCharset(CharsetIndexG1, charsetFromFinal(b))
		case '*':
			t.ConfigureCharset(CharsetIndexG2, charsetFromFinal(b))
		case '+':
			t.ConfigureCharset(CharsetIndexG3, charsetFromFinal(b))
		}
		return
	}

	switch b {
	case 'D':
		t.LineFeed()
	case 'E':
		t.CarriageReturn()
		t.LineFeed()
	case 'H':
		t.HorizontalTabSet()
	case 'M':
		t.ReverseIndex()
	case '7':
		t.SaveCursorPosition()
	case '8':
		t.RestoreCursorPosition()
	case 'c':
		t.ResetState()
	case '=':
		t.SetKeypadApplicationMode()
	case '>':
		t.UnsetKeypadApplicationMode()
	}
}

func charsetFromFinal(b byte) Charset {
	if b == '0' {
		return CharsetLineDrawing
	}
	return CharsetASCII
}

func (d *dispatcher) StartOSC() { d.oscBuf = d.oscBuf[:0] }
func (d *dispatcher) PutOSC(b byte) { d.oscBuf = append(d.oscBuf, b) }
func (d *dispatcher) DispatchOSC() { d.dispatchOSC(string(d.oscBuf)) }

func (d *dispatcher) dispatchOSC(payload string) {
	t := d.t
	code, rest := payload, ""
	if i := strings.IndexByte(payload, ';'); i >= 0 {
		code, rest = payload[:i], payload[i+1:]
	}

	switch code {
	case "0", "1", "2":
		t.SetTitle(rest)
	case "4":
		d.dispatchColorTable(rest)
	case "104":
		d.dispatchColorReset(rest)
	case "7":
		t.SetWorkingDirectory(rest)
	case "8":
		d.dispatchHyperlink(rest)
	case "9":
		t.DesktopNotification(&NotificationPayload{PayloadType: "title", Done: true, Data: []byte(rest)})
	case "10", "11", "12":
		d.dispatchDynamicColor(code, rest)
	case "52":
		d.dispatchClipboard(rest)
	case "99":
		d.dispatchKittyNotification(rest)
	case "133":
		d.dispatchShellIntegration(rest)
	case "1337":
		d.dispatchITermProprietary(rest)
	}
}

func (d *dispatcher) dispatchColorTable(rest string) {
	parts := strings.Split(rest, ";")
	for i := 0; i+1 < len(parts); i += 2 {
		idx, err := strconv.Atoi(parts[i])
		if err != nil || parts[i+1] == "?" {
			continue
		}
		if c, ok := parseColorSpec(parts[i+1]); ok {
			d.t.SetColor(idx, c)
		}
	}
}

func (d *dispatcher) dispatchColorReset(rest string) {
	for _, p := range strings.Split(rest, ";") {
		if idx, err := strconv.Atoi(p); err == nil {
			d.t.ResetColor(idx)
		}
	}
}

func parseColorSpec(spec string) (color.RGBA, bool) {
	if strings.HasPrefix(spec, "rgb:") {
		parts := strings.Split(spec[4:], "/")
		if len(parts) == 3 {
			return color.RGBA{
				R: parseHexComponent(parts[0]),
				G: parseHexComponent(parts[1]),
				B: parseHexComponent(parts[2]),
				A: 255,
			}, true
		}
	}
	if strings.HasPrefix(spec, "#") && len(spec) == 7 {
		r, err1 := strconv.ParseUint(spec[1:3], 16, 8)
		g, err2 := strconv.ParseUint(spec[3:5], 16, 8)
		b, err3 := strconv.ParseUint(spec[5:7], 16, 8)
		if err1 == nil && err2 == nil && err3 == nil {
			return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}, true
		}
	}
	return color.RGBA{}, false
}

// parseHexComponent decodes an X11-style "rgb:" color component, which may
// be 1-4 hex digits representing a fraction of full scale, into one byte.
func parseHexComponent(s string) uint8 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0
	}
	bits := uint(len(s) * 4)
	switch {
	case bits > 8:
		v >>= bits - 8
	case bits < 8:
		v <<= 8 - bits
	}
	return uint8(v)
}

func (d *dispatcher) dispatchHyperlink(rest string) {
	params, uri := rest, ""
	if i := strings.IndexByte(rest, ';'); i >= 0 {
		params, uri = rest[:i], rest[i+1:]
	}
	if uri == "" {
		d.t.SetHyperlink(nil)
		return
	}
	id := ""
	for _, kv := range strings.Split(params, ":") {
		if strings.HasPrefix(kv, "id=") {
			id = kv[len("id="):]
		}
	}
	d.t.SetHyperlink(&Hyperlink{ID: id, URI: uri})
}

func (d *dispatcher) dispatchDynamicColor(code, rest string) {
	named := map[string]int{"10": NamedColorForeground, "11": NamedColorBackground, "12": NamedColorCursor}[code]
	if rest == "?" {
		d.t.SetDynamicColor(code, named, "\x07")
		return
	}
	if c, ok := parseColorSpec(rest); ok {
		d.t.SetColor(named, c)
	}
}

func (d *dispatcher) dispatchClipboard(rest string) {
	parts := strings.SplitN(rest, ";", 2)
	if len(parts) != 2 {
		return
	}
	clipboard := byte('c')
	if len(parts[0]) > 0 {
		clipboard = parts[0][0]
	}
	if parts[1] == "?" {
		d.t.ClipboardLoad(clipboard, "\x07")
		return
	}
	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return
	}
	d.t.ClipboardStore(clipboard, decoded)
}

// dispatchKittyNotification parses the Kitty desktop notification protocol's
// colon-separated key=value metadata (OSC 99 ; metadata ; payload).
func (d *dispatcher) dispatchKittyNotification(rest string) {
	meta, payload := rest, ""
	if i := strings.IndexByte(rest, ';'); i >= 0 {
		meta, payload = rest[:i], rest[i+1:]
	}

	np := &NotificationPayload{Data: []byte(payload)}
	for _, kv := range strings.Split(meta, ":") {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		switch key {
		case "i":
			np.ID = val
		case "d":
			np.Done = val != "0"
		case "p":
			np.PayloadType = val
		case "e":
			np.Encoding = val
		case "c":
			np.TrackClose = val == "1"
		case "w":
			np.Timeout, _ = strconv.Atoi(val)
		case "f":
			np.AppName = val
		case "t":
			np.Type = val
		case "n":
			np.IconName = val
		case "g":
			np.IconCacheID = val
		case "s":
			np.Sound = val
		case "u":
			np.Urgency, _ = strconv.Atoi(val)
		case "o":
			np.Occasion = val
		case "a":
			np.Actions = append(np.Actions, strings.Split(val, ",")...)
		}
	}
	d.t.DesktopNotification(np)
}

func (d *dispatcher) dispatchShellIntegration(rest string) {
	parts := strings.SplitN(rest, ";", 2)
	if len(parts) == 0 || parts[0] == "" {
		return
	}
	var mark ShellIntegrationMark
	switch parts[0] {
	case "A":
		mark = PromptStart
	case "B":
		mark = CommandStart
	case "C":
		mark = CommandExecuted
	case "D":
		mark = CommandFinished
	default:
		return
	}
	exitCode := -1
	if len(parts) > 1 {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			exitCode = n
		}
	}
	d.t.ShellIntegrationMark(mark, exitCode)
}

func (d *dispatcher) dispatchITermProprietary(rest string) {
	const prefix = "SetUserVar="
	if !strings.HasPrefix(rest, prefix) {
		return
	}
	kv := rest[len(prefix):]
	name, encoded, ok := strings.Cut(kv, "=")
	if !ok {
		return
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return
	}
	d.t.SetUserVar(name, string(decoded))
}

func (d *dispatcher) Hook(b byte) {
	d.dcsFinal = b
	d.dcsData = d.dcsData[:0]
}

func (d *dispatcher) Put(b byte) { d.dcsData = append(d.dcsData, b) }

func (d *dispatcher) Unhook() {
	if d.dcsFinal == 'q' {
		d.t.SixelReceived(d.parseDCSParams(), d.dcsData)
	}
	d.dcsParamBuf = d.dcsParamBuf[:0]
}

func (d *dispatcher) parseDCSParams() [][]uint16 {
	if len(d.dcsParamBuf) == 0 {
		return nil
	}
	var groups [][]uint16
	for _, group := range strings.Split(string(d.dcsParamBuf), ";") {
		var vals []uint16
		for _, sub := range strings.Split(group, ":") {
			vals = append(vals, uint16(paramInt(sub, 0)))
		}
		groups = append(groups, vals)
	}
	return groups
}

func (d *dispatcher) StartAPC()      { d.apcBuf = d.apcBuf[:0] }
func (d *dispatcher) PutAPC(b byte)  { d.apcBuf = append(d.apcBuf, b) }
func (d *dispatcher) DispatchAPC()   { d.t.ApplicationCommandReceived(d.apcBuf) }

func (d *dispatcher) StartPM()     { d.pmBuf = d.pmBuf[:0] }
func (d *dispatcher) PutPM(b byte) { d.pmBuf = append(d.pmBuf, b) }
func (d *dispatcher) DispatchPM()  { d.t.PrivacyMessageReceived(d.pmBuf) }

// Error swallows malformed-sequence reports. The library has no logging
// dependency of its own; callers that need visibility should wrap the
// surrounding parser themselves.
func (d *dispatcher) Error(message string) {}

var _ parser.Listener = (*dispatcher)(nil)
