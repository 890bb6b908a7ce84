// Package vtcore provides a headless, DEC/ECMA-48-compatible terminal
// emulator core: no PTY, no rendering surface, just a byte stream in and a
// cell grid out. It's meant to sit underneath a real terminal frontend
// (GUI, web, SSH gateway, recorder).
//
// # Quick Start
//
//	term := vtcore.New()
//	term.WriteString("\x1b[31mHello \x1b[32mWorld\x1b[0m!")
//	fmt.Println(term.String()) // "Hello World!"
//
// # Architecture
//
//   - [Terminal]: processes the escape-sequence byte stream and owns mode,
//     cursor, and buffer state
//   - [Buffer]: a 2D grid of cells with scrollback and optional reflow on
//     resize (see ResizeReflow)
//   - [Cell]: one grid position's rune, colors, and attribute bits
//   - [Cursor]: position, blink/shape style, and save/restore state
//   - vtcore/parser: the byte-level state machine (CSI/OSC/DCS/APC/ESC),
//     independent of what the dispatched sequences mean
//   - vtcore/session: wraps a Terminal with image rasterization and DEC
//     Text Locator reporting behind one goroutine-safe Feed/Resize/Render
//     API
//   - vtcore/imagepool: resizes and caches rasterized image fragments for
//     rendering
//   - vtcore/locator: DEC Text Locator (DECSLE/DECELR/DECEFR/DECRQLP)
//     mode tracking and DECLRP report formatting
//   - vtcore/lru: the generic cache imagepool builds its name-link table
//     on
//
// # Terminal
//
// Terminal implements [io.Writer], so raw command output can be piped
// straight in:
//
//	term := vtcore.New(
//	    vtcore.WithSize(24, 80),
//	    vtcore.WithScrollback(storage),
//	    vtcore.WithResponse(ptyWriter),
//	    vtcore.WithReflow(true), // re-wrap lines on resize instead of truncating
//	)
//
//	cmd := exec.Command("ls", "-la", "--color")
//	cmd.Stdout = term
//	cmd.Run()
//
//	for row := 0; row < term.Rows(); row++ {
//	    fmt.Println(term.LineContent(row))
//	}
//
// # Dual Buffers
//
// Terminal maintains a primary buffer (scrollback-eligible) and an
// alternate buffer (full-screen apps like vim/less/htop, never
// scrollback), switched by CSI ?1049h/l:
//
//	if term.IsAlternateScreen() {
//	    // a full-screen app is in control
//	}
//
// # Cells and Attributes
//
//	cell := term.Cell(row, col)
//	if cell != nil {
//	    fmt.Printf("Char: %c Bold: %v FG: %v BG: %v\n",
//	        cell.Char, cell.HasFlag(vtcore.CellFlagBold), cell.Fg, cell.Bg)
//	}
//
// # Colors
//
// Colors satisfy [image/color.Color]: literal [color.RGBA], [*IndexedColor]
// (256-color palette), or [*NamedColor] (semantic slots like the current
// default foreground). [Terminal.ResolveRGBA] reduces any of these to RGBA:
//
//	rgba := term.ResolveRGBA(cell.Fg, true)
//
// # Scrollback
//
//	storage := vtcore.NewMemoryScrollback(10000)
//	term := vtcore.New(vtcore.WithScrollback(storage))
//	for i := 0; i < term.ScrollbackLen(); i++ {
//	    line := term.ScrollbackLine(i) // []Cell
//	}
//
// # Providers
//
// Providers handle terminal-originated events; all are optional with
// no-op defaults:
//
//   - [BellProvider], [TitleProvider], [ClipboardProvider]
//   - [ScrollbackProvider], [RecordingProvider], [SizeProvider]
//   - [ShellIntegrationProvider] (OSC 133 shell integration marks)
//
// # Middleware
//
//	mw := &vtcore.Middleware{
//	    Bell: func(next func()) { log.Println("bell"); /* suppressed */ },
//	}
//	term := vtcore.New(vtcore.WithMiddleware(mw))
//
// # Hyperlinks
//
// OSC 8 hyperlinks are interned (see hyperlink.go) so cells sharing a link
// share one *Hyperlink pointer, letting a renderer find a link's extent by
// pointer comparison instead of string comparison.
//
// # Images
//
//	if term.SixelEnabled() || term.KittyEnabled() {
//	    for _, placement := range term.ImagePlacements() {
//	        img := term.Image(placement.ImageID) // img.Data is RGBA
//	    }
//	}
//	term.SetImageMaxMemory(100 * 1024 * 1024)
//
// vtcore/imagepool handles the render-time side: resizing a stored image
// to a placement's target cell size and caching the result.
//
// # DEC Text Locator
//
// vtcore/locator implements DECSLE/DECELR/DECEFR/DECRQLP independently of
// any mouse-event source; vtcore/session wires it to pointer events and
// flushes its reply queue alongside ordinary terminal output.
//
// # Thread Safety
//
// All Terminal methods are safe for concurrent use; a single mutex guards
// cursor/buffer/mode state. Compound operations spanning multiple calls
// still need the caller's own synchronization.
package vtcore
