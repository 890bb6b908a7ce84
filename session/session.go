// Package session wires a vtcore.Terminal, an imagepool.Pool, and a
// locator.Locator together behind the three-worker concurrency model: a
// reader feeds raw bytes in, input events are delivered separately, and a
// renderer drains dirty state out. A single mutex guards the handoff between
// them, matching the RWMutex idiom vtcore.Terminal itself uses internally.
package session

import (
	"context"
	"image/color"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/nox-term/vtcore"
	"github.com/nox-term/vtcore/imagepool"
	"github.com/nox-term/vtcore/locator"
)

// RenderCell is one visible grid position, carrying an optional image
// fragment reference for cells covered by a placed image. Fg/Bg are
// resolved against the terminal's default palette so a render sink never
// needs to see the underlying NamedColor/IndexedColor placeholder types.
type RenderCell struct {
	vtcore.Cell
	Fg, Bg   color.RGBA
	Fragment []byte
}

// Frame is a render-ready snapshot of the terminal's visible viewport.
type Frame struct {
	Rows, Cols int
	Cells      []RenderCell

	CursorRow, CursorCol int
	CursorStyle          vtcore.CursorStyle
	CursorVisible        bool

	Selection vtcore.Selection

	BackgroundImageID uint32
	BackgroundOpacity float32
}

// RenderSink receives frames produced by Session.Render. Implementations
// (a GUI, a test double) must not block indefinitely:
// Render is called while Session's lock is released, but a slow sink still
// delays the caller who requested the frame.
type RenderSink interface {
	Render(Frame)
}

// Session owns the terminal, the image pool backing Sixel/Kitty placements,
// and the DEC Text Locator extension, and serializes access to all three.
type Session struct {
	mu sync.Mutex

	term     *vtcore.Terminal
	images   *imagepool.Pool
	locator  *locator.Locator
	bgImage  uint32
	bgOpac   float32

	// rasterCache holds one rasterized placement per placement ID, built
	// lazily the first time a frame touches it and invalidated whenever the
	// backing ImageData's identity (by terminal image ID) changes.
	rasterCache map[uint32]rasterEntry

	closed bool
}

type rasterEntry struct {
	imageID uint32
	raster  *imagepool.RasterizedImage
}

// Option configures a Session at construction.
type Option func(*Session)

// WithTerminalOptions passes options through to the underlying vtcore.Terminal.
func WithTerminalOptions(opts ...vtcore.Option) Option {
	return func(s *Session) {
		s.term = vtcore.New(opts...)
	}
}

// WithImagePool supplies a pre-configured image pool. If omitted, New
// creates one with a 64-entry name cache and no removal callback.
func WithImagePool(pool *imagepool.Pool) Option {
	return func(s *Session) {
		s.images = pool
	}
}

// New constructs a Session. Rows/cols are forwarded via WithTerminalOptions
// (vtcore.WithSize); a default 24x80 terminal is used if none is supplied.
func New(opts ...Option) *Session {
	s := &Session{
		locator:     locator.New(),
		rasterCache: make(map[uint32]rasterEntry),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.term == nil {
		s.term = vtcore.New()
	}
	if s.images == nil {
		s.images = imagepool.New(nil, 64)
	}
	return s
}

// Feed is the reader worker's entry point: it decodes raw bytes from the
// host process (a PTY, a replay log, a network stream) into terminal state.
// Safe to call concurrently with Resize and Render.
func (s *Session) Feed(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, errors.New("session: feed after terminate")
	}
	n, err := s.term.Write(data)
	if err != nil {
		return n, errors.Wrap(err, "session: feed")
	}
	return n, nil
}

// Resize is the bidirectional resize-signal entry point; after Terminate
// it does nothing.
func (s *Session) Resize(rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.term.Resize(rows, cols)
}

// Locator exposes the session's DEC Text Locator state so an input worker
// can feed it pointer motion/button events ahead of calling Render.
func (s *Session) Locator() *locator.Locator {
	return s.locator
}

// Images exposes the session's image pool so a transport-level decoder
// (Sixel, Kitty) can create and rasterize placements ahead of Render.
func (s *Session) Images() *imagepool.Pool {
	return s.images
}

// SetBackgroundImage records the whole-terminal background image handle and
// opacity reported in each subsequent Frame.
func (s *Session) SetBackgroundImage(imageID uint32, opacity float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bgImage = imageID
	s.bgOpac = opacity
}

// Render is the renderer worker's entry point: it snapshots the terminal's
// current visible viewport into a Frame and hands it to sink, then clears
// the dirty set. The snapshot itself happens under lock; sink.Render is
// invoked after the lock is released so a slow sink cannot stall Feed.
func (s *Session) Render(sink RenderSink) {
	frame := s.snapshot()
	sink.Render(frame)
}

func (s *Session) snapshot() Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	cellW, cellH := 8, 16
	if sp := s.term.SizeProvider(); sp != nil {
		if w, h := sp.CellSizePixels(); w > 0 && h > 0 {
			cellW, cellH = w, h
		}
	}

	placements := make(map[uint32]*vtcore.ImagePlacement)
	for _, p := range s.term.ImagePlacements() {
		placements[p.ID] = p
	}

	rows, cols := s.term.Rows(), s.term.Cols()
	cells := make([]RenderCell, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cell := s.term.Cell(r, c)
			rc := RenderCell{}
			if cell != nil {
				rc.Cell = *cell
				rc.Fg = s.term.ResolveRGBA(cell.Fg, true)
				rc.Bg = s.term.ResolveRGBA(cell.Bg, false)
				if cell.Image != nil {
					rc.Fragment = s.fragment(cell.Image, placements, r, c, cellW, cellH)
				}
			}
			cells = append(cells, rc)
		}
	}

	cursorRow, cursorCol := s.term.CursorPos()
	frame := Frame{
		Rows:              rows,
		Cols:              cols,
		Cells:             cells,
		CursorRow:         cursorRow,
		CursorCol:         cursorCol,
		CursorStyle:       s.term.CursorStyle(),
		CursorVisible:     s.term.CursorVisible(),
		Selection:         s.term.GetSelection(),
		BackgroundImageID: s.bgImage,
		BackgroundOpacity: s.bgOpac,
	}
	s.term.ClearDirty()
	return frame
}

// fragment returns the rasterized pixel bytes covering the cell at (row,
// col), rasterizing and caching the placement on first use. Called with
// s.mu already held.
func (s *Session) fragment(ci *vtcore.CellImage, placements map[uint32]*vtcore.ImagePlacement, row, col, cellW, cellH int) []byte {
	placement, ok := placements[ci.PlacementID]
	if !ok {
		return nil
	}

	entry, ok := s.rasterCache[ci.PlacementID]
	if !ok || entry.imageID != ci.ImageID {
		data := s.term.Image(ci.ImageID)
		if data == nil {
			return nil
		}
		img := s.images.Create(imagepool.FormatRGBA, int(data.Width), int(data.Height), data.Data)
		entry = rasterEntry{
			imageID: ci.ImageID,
			raster: s.images.Rasterize(img, imagepool.AlignTopStart, imagepool.StretchToFill,
				color.RGBA{}, placement.Cols, placement.Rows, cellW, cellH),
		}
		img.Release()
		s.rasterCache[ci.PlacementID] = entry
	}

	return entry.raster.Fragment(row-placement.Row, col-placement.Col)
}

// Terminate marks the session closed, so later Feed calls fail and Resize
// does nothing, and clears the image pool's retained images. Session starts
// no goroutines of its own, so there are no workers to join or wake and no
// parser state is cancelled; ctx bounds only the wait for the session lock.
// It is idempotent; calling it twice is a no-op the second time.
func (s *Session) Terminate(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.closed {
			s.images.Clear()
			s.closed = true
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "session: terminate")
	}
}

// TerminateTimeout is a convenience wrapper around Terminate for callers
// that just want a bounded wait without building a context themselves.
func (s *Session) TerminateTimeout(d time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return s.Terminate(ctx)
}
