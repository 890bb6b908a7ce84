package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
	"golang.org/x/text/unicode/norm"
)

// DefaultColumnBudget caps the size of a single fast-path Print event when
// the caller hasn't supplied one via WithColumnBudget. It's large enough
// that the cap is rarely the thing that ends a scan in practice; callers
// that want Print events bounded to a row width should pass their own.
const DefaultColumnBudget = 1 << 16

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithColumnBudget caps the number of terminal columns a single fast-path
// Print event may span. Screen implementations typically pass their
// column count so a Print event never outgrows one row.
func WithColumnBudget(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.columnBudget = n
		}
	}
}

// Parser turns a byte stream into the event vocabulary defined by
// Listener. It holds only input-state and partial-rune reassembly state;
// everything else is the Listener's responsibility.
type Parser struct {
	state        State
	listener     Listener
	columnBudget int

	// utf8buf accumulates a partial multi-byte rune fed one byte at a
	// time through the table-driven (non-fast-path) route. A rune split
	// across two Advance calls lands here regardless of which state the
	// split happened in, since scanPrintable refuses to consume a
	// dangling trailing encoding and leaves it for this path to finish.
	utf8buf []byte
}

// New constructs a Parser in the Ground state.
func New(listener Listener, opts ...Option) *Parser {
	p := &Parser{
		state:        Ground,
		listener:     listener,
		columnBudget: DefaultColumnBudget,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State reports the parser's current input state.
func (p *Parser) State() State {
	return p.state
}

// Reset returns the parser to Ground and discards any partial-rune
// state, without notifying the listener.
func (p *Parser) Reset() {
	p.state = Ground
	p.utf8buf = p.utf8buf[:0]
}

// Advance feeds data into the parser. It may be called with arbitrarily
// sized chunks, including mid-sequence and mid-rune splits: state carried
// between calls makes the result independent of how the stream is cut.
func (p *Parser) Advance(data []byte) {
	for len(data) > 0 {
		if p.state == Ground && len(p.utf8buf) == 0 {
			if n := p.scanPrintable(data); n > 0 {
				data = data[n:]
				continue
			}
		}

		b := data[0]
		data = data[1:]
		p.feedByte(b)
	}
}

// scanPrintable consumes the longest run of printable grapheme clusters
// at the front of data, up to the column budget, and reports it as a
// single Print event. It stops before any cluster whose bytes don't form
// valid UTF-8 on their own: that covers both truly malformed input and a
// multi-byte encoding left incomplete at a chunk boundary, both of which
// fall through to feedUTF8ToPrint, which reassembles across Advance
// calls by design.
func (p *Parser) scanPrintable(data []byte) (consumed int) {
	s := string(data)
	rest := s
	cells := 0
	var out strings.Builder

	for rest != "" {
		cluster, restAfter, width, _ := uniseg.FirstGraphemeClusterInString(rest, -1)
		if cluster == "" {
			break
		}
		if cluster[0] < 0x20 || cluster[0] == 0x7F {
			break
		}
		if !utf8.ValidString(cluster) {
			break
		}
		if cells+width > p.columnBudget {
			break
		}
		consumed += len(cluster)
		cells += width
		// Composed form (NFC) so visually-equivalent combining sequences
		// (e.g. a base rune plus a combining accent sent as two runes)
		// render identically to their precomposed counterpart.
		out.WriteString(norm.NFC.String(cluster))
		rest = restAfter
	}

	if consumed > 0 {
		p.listener.Print(out.String(), cells)
	}
	return consumed
}

// feedByte walks the table for one byte of the slow (non-fast-path)
// route: every byte outside a Ground printable run, and every byte while
// a partial rune is being reassembled.
func (p *Parser) feedByte(b byte) {
	row := &table[p.state]
	c := row.cells[b]
	if !c.defined {
		p.listener.Error(fmt.Sprintf("parser: no transition for byte 0x%02X in state %s", b, p.state))
		return
	}

	if c.isEvent {
		if c.act != nil {
			c.act(p, b)
		}
		return
	}

	if row.exit != nil {
		row.exit(p, b)
	}
	if c.act != nil {
		c.act(p, b)
	}
	p.state = c.next
	if table[p.state].entry != nil {
		table[p.state].entry(p, b)
	}
}

// feedUTF8ToPrint reassembles a Print-eligible byte, arriving one at a
// time from the table walk, into a complete rune before notifying the
// listener. Used only off the fast path: ordinary Ground-state printable
// runs go through scanPrintable instead.
func (p *Parser) feedUTF8ToPrint(b byte) {
	p.utf8buf = append(p.utf8buf, b)
	if !utf8.FullRune(p.utf8buf) {
		return
	}
	r, _ := utf8.DecodeRune(p.utf8buf)
	s := string(r)
	p.utf8buf = p.utf8buf[:0]
	p.listener.Print(s, uniseg.StringWidth(s))
}
