package parser

// actionFn performs one parser action against a triggering byte. Actions
// that don't need the byte (e.g. Unhook) simply ignore it.
type actionFn func(p *Parser, b byte)

type cell struct {
	next    State
	act     actionFn
	defined bool
	// isEvent marks a cell set via event(): the byte never triggers
	// entry/exit actions, even in the degenerate case where next equals
	// the current state. transition() cells always run entry/exit when
	// warranted, including genuine self-transitions (e.g. ESC re-entering
	// Escape must re-run its Clear entry action).
	isEvent bool
}

type stateRow struct {
	cells [256]cell
	entry actionFn
	exit  actionFn
}

var table [numStates]stateRow

// builder accumulates t.event/t.transition/t.entry/t.exit calls the same
// way terminal/Parser-impl.h's ParserTable::get() does, just expressed as
// Go method calls instead of a constexpr C++ builder.
type builder struct{}

func (builder) entry(s State, act actionFn) {
	table[s].entry = act
}

func (builder) exit(s State, act actionFn) {
	table[s].exit = act
}

// event sets an action for (s, b) without changing state.
func (b builder) event(s State, act actionFn, ranges ...[2]byte) {
	for _, r := range ranges {
		for v := int(r[0]); v <= int(r[1]); v++ {
			table[s].cells[v] = cell{next: s, act: act, defined: true, isEvent: true}
		}
	}
}

// transition sets a state change (with optional action) for (s, b).
func (b builder) transition(s, next State, act actionFn, ranges ...[2]byte) {
	for _, r := range ranges {
		for v := int(r[0]); v <= int(r[1]); v++ {
			table[s].cells[v] = cell{next: next, act: act, defined: true}
		}
	}
}

func rng(lo, hi byte) [2]byte { return [2]byte{lo, hi} }
func one(b byte) [2]byte      { return [2]byte{b, b} }

// Action bodies. Each forwards directly to the matching Listener method;
// UTF-8 reassembly for the table-driven (non-fast-path) byte route is
// done by Parser.feedUTF8ToPrint, which actPrint calls.
func actExecute(p *Parser, b byte)    { p.listener.Execute(b) }
func actClear(p *Parser, b byte)      { p.listener.Clear() }
func actIgnore(p *Parser, b byte)     {}
func actCollect(p *Parser, b byte)    { p.listener.Collect(b) }
func actCollectLeader(p *Parser, b byte) { p.listener.CollectLeader(b) }
func actParam(p *Parser, b byte)      { p.listener.Param(b) }
func actParamDigit(p *Parser, b byte) { p.listener.ParamDigit(b) }
func actParamSeparator(p *Parser, b byte) { p.listener.ParamSeparator() }
func actParamSubSeparator(p *Parser, b byte) { p.listener.ParamSubSeparator() }
func actESCDispatch(p *Parser, b byte) { p.listener.DispatchESC(b) }
func actCSIDispatch(p *Parser, b byte) { p.listener.DispatchCSI(b) }
func actOSCStart(p *Parser, b byte)   { p.listener.StartOSC() }
func actOSCPut(p *Parser, b byte)     { p.listener.PutOSC(b) }
func actOSCEnd(p *Parser, b byte)     { p.listener.DispatchOSC() }
func actHook(p *Parser, b byte)       { p.listener.Hook(b) }
func actPut(p *Parser, b byte)        { p.listener.Put(b) }
func actUnhook(p *Parser, b byte)     { p.listener.Unhook() }
func actAPCStart(p *Parser, b byte)   { p.listener.StartAPC() }
func actAPCPut(p *Parser, b byte)     { p.listener.PutAPC(b) }
func actAPCEnd(p *Parser, b byte)     { p.listener.DispatchAPC() }
func actPMStart(p *Parser, b byte)    { p.listener.StartPM() }
func actPMPut(p *Parser, b byte)      { p.listener.PutPM(b) }
func actPMEnd(p *Parser, b byte)      { p.listener.DispatchPM() }

// actPrint handles the slow (non-fast-path) print route: bytes arrive one
// at a time from the table walk and must be reassembled into complete
// UTF-8 runes before a Print event is emitted.
func actPrint(p *Parser, b byte) { p.feedUTF8ToPrint(b) }

func init() {
	t := builder{}

	c0NoCancel := []([2]byte){rng(0x00, 0x17), one(0x19), rng(0x1C, 0x1F)}

	// Ground
	t.event(Ground, actExecute, c0NoCancel...)
	t.event(Ground, actPrint, rng(0x20, 0x7F))
	t.event(Ground, actPrint, rng(0x80, 0xFF))

	// Escape
	t.entry(Escape, actClear)
	t.event(Escape, actExecute, c0NoCancel...)
	t.event(Escape, actIgnore, one(0x7F))
	t.transition(Escape, IgnoreUntilST, nil, one(0x58)) // SOS: ESC X
	t.transition(Escape, PMString, nil, one(0x5E))       // PM: ESC ^
	t.transition(Escape, APCString, nil, one(0x5F))      // APC: ESC _
	t.transition(Escape, DCSEntry, nil, one(0x50))
	t.transition(Escape, OSCString, nil, one(0x5D))
	t.transition(Escape, CSIEntry, nil, one(0x5B))
	t.transition(Escape, Ground, actESCDispatch, rng(0x30, 0x4F))
	t.transition(Escape, Ground, actESCDispatch, rng(0x51, 0x57))
	t.transition(Escape, Ground, actESCDispatch, one(0x59))
	t.transition(Escape, Ground, actESCDispatch, one(0x5A))
	t.transition(Escape, Ground, nil, one(0x5C)) // ST reached via ESC: no event
	t.transition(Escape, Ground, actESCDispatch, rng(0x60, 0x7E))
	t.transition(Escape, EscapeIntermediate, actCollect, rng(0x20, 0x2F))

	// EscapeIntermediate
	t.event(EscapeIntermediate, actExecute, c0NoCancel...)
	t.event(EscapeIntermediate, actCollect, rng(0x20, 0x2F))
	t.event(EscapeIntermediate, actIgnore, one(0x7F))
	t.transition(EscapeIntermediate, Ground, actESCDispatch, rng(0x30, 0x7E))

	// IgnoreUntilST (SOS)
	t.event(IgnoreUntilST, actIgnore, c0NoCancel...)
	t.event(IgnoreUntilST, actIgnore, rng(0x20, 0xFF))

	// DCS_Entry
	t.entry(DCSEntry, actClear)
	t.event(DCSEntry, actIgnore, c0NoCancel...)
	t.event(DCSEntry, actIgnore, one(0x7F))
	t.transition(DCSEntry, DCSIntermediate, actCollect, rng(0x20, 0x2F))
	t.transition(DCSEntry, DCSIgnore, nil, one(0x3A))
	t.transition(DCSEntry, DCSParam, actParam, rng(0x30, 0x39))
	t.transition(DCSEntry, DCSParam, actParam, one(0x3B))
	t.transition(DCSEntry, DCSParam, actCollectLeader, rng(0x3C, 0x3F))
	t.transition(DCSEntry, DCSPassThrough, nil, rng(0x40, 0x7E))

	// DCS_Ignore: swallow everything (including non-ASCII) until terminated.
	t.event(DCSIgnore, actIgnore, c0NoCancel...)
	t.event(DCSIgnore, actIgnore, rng(0x20, 0xFF))

	// DCS_Intermediate
	t.event(DCSIntermediate, actIgnore, c0NoCancel...)
	t.event(DCSIntermediate, actCollect, rng(0x20, 0x2F))
	t.event(DCSIntermediate, actIgnore, one(0x7F))
	t.transition(DCSIntermediate, DCSPassThrough, nil, rng(0x40, 0x7E))

	// DCS_PassThrough
	t.entry(DCSPassThrough, actHook)
	t.event(DCSPassThrough, actPut, c0NoCancel...)
	t.event(DCSPassThrough, actPut, rng(0x20, 0x7E))
	t.event(DCSPassThrough, actIgnore, one(0x7F))
	t.exit(DCSPassThrough, actUnhook)

	// DCS_Param
	t.event(DCSParam, actExecute, c0NoCancel...)
	t.event(DCSParam, actParam, rng(0x30, 0x39), one(0x3B))
	t.event(DCSParam, actIgnore, one(0x7F))
	t.transition(DCSParam, DCSIgnore, nil, one(0x3A))
	t.transition(DCSParam, DCSIgnore, nil, rng(0x3C, 0x3F))
	t.transition(DCSParam, DCSIntermediate, nil, rng(0x20, 0x2F))
	t.transition(DCSParam, DCSPassThrough, nil, rng(0x40, 0x7E))

	// OSC_String (xterm extension: BEL also terminates)
	t.entry(OSCString, actOSCStart)
	t.event(OSCString, actIgnore, rng(0x00, 0x06), rng(0x08, 0x17), one(0x19), rng(0x1C, 0x1F))
	t.event(OSCString, actOSCPut, rng(0x20, 0x7F))
	t.event(OSCString, actOSCPut, rng(0x80, 0xFF))
	t.exit(OSCString, actOSCEnd)
	t.transition(OSCString, Ground, nil, one(0x07))

	// APC_String
	t.entry(APCString, actAPCStart)
	t.event(APCString, actAPCPut, rng(0x20, 0x7F))
	t.event(APCString, actAPCPut, rng(0x80, 0xFF))
	t.exit(APCString, actAPCEnd)
	t.transition(APCString, Ground, nil, one(0x07))

	// PM_String
	t.entry(PMString, actPMStart)
	t.event(PMString, actPMPut, c0NoCancel...)
	t.event(PMString, actPMPut, rng(0x20, 0xFF))
	t.exit(PMString, actPMEnd)
	t.transition(PMString, Ground, nil, one(0x07))

	// CSI_Entry
	t.entry(CSIEntry, actClear)
	t.event(CSIEntry, actExecute, c0NoCancel...)
	t.event(CSIEntry, actIgnore, one(0x7F))
	t.transition(CSIEntry, Ground, actCSIDispatch, rng(0x40, 0x7E))
	t.transition(CSIEntry, CSIIntermediate, actCollect, rng(0x20, 0x2F))
	t.transition(CSIEntry, CSIIgnore, nil, one(0x3A))
	t.transition(CSIEntry, CSIParam, actParamDigit, rng(0x30, 0x39))
	t.transition(CSIEntry, CSIParam, actParamSeparator, one(0x3B))
	t.transition(CSIEntry, CSIParam, actCollectLeader, rng(0x3C, 0x3F))

	// CSI_Param
	t.event(CSIParam, actExecute, c0NoCancel...)
	t.event(CSIParam, actParamDigit, rng(0x30, 0x39))
	t.event(CSIParam, actParamSubSeparator, one(0x3A))
	t.event(CSIParam, actParamSeparator, one(0x3B))
	t.event(CSIParam, actIgnore, one(0x7F))
	t.transition(CSIParam, CSIIgnore, nil, rng(0x3C, 0x3F))
	t.transition(CSIParam, CSIIntermediate, actCollect, rng(0x20, 0x2F))
	t.transition(CSIParam, Ground, actCSIDispatch, rng(0x40, 0x7E))

	// CSI_Ignore: swallow everything (including non-ASCII) until dispatch byte.
	t.event(CSIIgnore, actExecute, c0NoCancel...)
	t.event(CSIIgnore, actIgnore, rng(0x20, 0x3F), one(0x7F))
	t.event(CSIIgnore, actIgnore, rng(0x80, 0xFF))
	t.transition(CSIIgnore, Ground, nil, rng(0x40, 0x7E))

	// CSI_Intermediate
	t.event(CSIIntermediate, actExecute, c0NoCancel...)
	t.event(CSIIntermediate, actCollect, rng(0x20, 0x2F))
	t.event(CSIIntermediate, actIgnore, one(0x7F))
	t.transition(CSIIntermediate, CSIIgnore, nil, rng(0x30, 0x3F))
	t.transition(CSIIntermediate, Ground, actCSIDispatch, rng(0x40, 0x7E))

	// Global overrides, applied last so they win over any per-state entry
	// above: cancel (CAN/SUB) returns to Ground from anywhere, and ESC
	// always re-enters Escape, even mid-sequence.
	for s := State(0); s < numStates; s++ {
		t.transition(s, Ground, nil, one(0x18))
		t.transition(s, Ground, nil, one(0x1A))
		t.transition(s, Escape, nil, one(0x1B))
	}
}
