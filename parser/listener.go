// Package parser implements the DEC/ECMA-48 byte-stream state machine
// described by Paul Williams' VT500 series parser, with the xterm OSC
// BEL-terminator extension and a Unicode fast path for printable runs.
//
// The parser itself holds no semantic state beyond the current input
// state and partial-rune reassembly: parameter accumulation, intermediate
// collection, and string-mode payload accumulation are all the
// responsibility of the Listener, which is called with one method per
// event named in the terminal's governing specification.
package parser

// Listener receives the semantic event stream produced by Advance. Event
// names and signatures mirror the parser's event vocabulary directly;
// a concrete Listener is expected to accumulate CSI parameters and OSC/
// DCS/APC/PM payloads itself from the individual byte-level callbacks.
type Listener interface {
	// Print delivers a run of printable Unicode text together with the
	// sum of terminal column widths it occupies.
	Print(text string, cellCount int)

	// Execute delivers a single C0 control code.
	Execute(b byte)

	// Clear signals the start of a new control-sequence accumulation
	// (entry into Escape, CSI_Entry, or DCS_Entry).
	Clear()

	// Collect accumulates an intermediate byte (0x20-0x2F).
	Collect(b byte)

	// CollectLeader accumulates a private-marker byte (0x3C-0x3F).
	CollectLeader(b byte)

	// Param accumulates a raw parameter byte for DCS-style sequences,
	// where the listener does not need separator/sub-separator
	// granularity.
	Param(b byte)

	// ParamDigit accumulates one ASCII digit of a CSI numeric parameter.
	ParamDigit(b byte)

	// ParamSeparator marks a top-level CSI parameter boundary (';').
	ParamSeparator()

	// ParamSubSeparator marks a sub-parameter boundary (':').
	ParamSubSeparator()

	// DispatchESC finalizes an escape sequence with its final byte.
	DispatchESC(b byte)

	// DispatchCSI finalizes a control sequence with its final byte.
	DispatchCSI(b byte)

	// StartOSC begins an Operating System Command accumulation.
	StartOSC()
	// PutOSC accumulates one OSC payload byte.
	PutOSC(b byte)
	// DispatchOSC finalizes the accumulated OSC payload.
	DispatchOSC()

	// Hook begins a Device Control String, with its final byte.
	Hook(b byte)
	// Put accumulates one DCS payload byte.
	Put(b byte)
	// Unhook finalizes the accumulated DCS payload.
	Unhook()

	// StartAPC begins an Application Program Command accumulation.
	StartAPC()
	// PutAPC accumulates one APC payload byte.
	PutAPC(b byte)
	// DispatchAPC finalizes the accumulated APC payload.
	DispatchAPC()

	// StartPM begins a Privacy Message accumulation.
	StartPM()
	// PutPM accumulates one PM payload byte.
	PutPM(b byte)
	// DispatchPM finalizes the accumulated PM payload.
	DispatchPM()

	// Error reports an unrecoverable malformed (state, byte) pair.
	Error(message string)
}

// BaseListener implements Listener with no-op methods, so a caller can
// embed it and override only the events it cares about.
type BaseListener struct{}

func (BaseListener) Print(text string, cellCount int) {}
func (BaseListener) Execute(b byte)                   {}
func (BaseListener) Clear()                           {}
func (BaseListener) Collect(b byte)                   {}
func (BaseListener) CollectLeader(b byte)              {}
func (BaseListener) Param(b byte)                     {}
func (BaseListener) ParamDigit(b byte)                {}
func (BaseListener) ParamSeparator()                  {}
func (BaseListener) ParamSubSeparator()               {}
func (BaseListener) DispatchESC(b byte)                {}
func (BaseListener) DispatchCSI(b byte)                {}
func (BaseListener) StartOSC()                        {}
func (BaseListener) PutOSC(b byte)                    {}
func (BaseListener) DispatchOSC()                     {}
func (BaseListener) Hook(b byte)                       {}
func (BaseListener) Put(b byte)                       {}
func (BaseListener) Unhook()                          {}
func (BaseListener) StartAPC()                        {}
func (BaseListener) PutAPC(b byte)                     {}
func (BaseListener) DispatchAPC()                     {}
func (BaseListener) StartPM()                         {}
func (BaseListener) PutPM(b byte)                      {}
func (BaseListener) DispatchPM()                      {}
func (BaseListener) Error(message string)             {}

var _ Listener = BaseListener{}
