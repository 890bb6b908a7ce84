package vtcore

import (
	"encoding/base64"
	"fmt"
	"image/color"
)

// SnapshotDetail selects how much of a Snapshot's per-line content is
// populated: plain text, style-run segments, or every cell.
type SnapshotDetail string

const (
	SnapshotDetailText   SnapshotDetail = "text"
	SnapshotDetailStyled SnapshotDetail = "styled"
	SnapshotDetailFull   SnapshotDetail = "full"
)

// Snapshot is a point-in-time capture of a Terminal's visible grid,
// cursor, and active image placements, suitable for JSON serialization to
// a client that doesn't share the process.
type Snapshot struct {
	Size   SnapshotSize    `json:"size"`
	Cursor SnapshotCursor  `json:"cursor"`
	Lines  []SnapshotLine  `json:"lines"`
	Images []SnapshotImage `json:"images,omitempty"`
}

type SnapshotSize struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

type SnapshotCursor struct {
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Visible bool   `json:"visible"`
	Style   string `json:"style"`
}

// SnapshotLine holds row content at whatever SnapshotDetail was requested;
// the fields not asked for are left zero rather than computed and
// discarded.
type SnapshotLine struct {
	Text     string            `json:"text"`
	Segments []SnapshotSegment `json:"segments,omitempty"`
	Cells    []SnapshotCell    `json:"cells,omitempty"`
}

// SnapshotSegment is a run of characters sharing one style and link.
type SnapshotSegment struct {
	Text       string        `json:"text"`
	Fg         string        `json:"fg,omitempty"`
	Bg         string        `json:"bg,omitempty"`
	Attributes SnapshotAttrs `json:"attrs,omitempty"`
	Hyperlink  *SnapshotLink `json:"hyperlink,omitempty"`
}

type SnapshotCell struct {
	Char       string        `json:"char"`
	Fg         string        `json:"fg"`
	Bg         string        `json:"bg"`
	Attributes SnapshotAttrs `json:"attrs,omitempty"`
	Hyperlink  *SnapshotLink `json:"hyperlink,omitempty"`
	Wide       bool          `json:"wide,omitempty"`
	WideSpacer bool          `json:"wide_spacer,omitempty"`
	// UnderlineColor is the SGR 58 color as "#rrggbb", empty when unset.
	UnderlineColor string `json:"underline_color,omitempty"`
}

// SnapshotAttrs is the comparable projection of CellFlags a client cares
// about; two cells with the same SnapshotAttrs render identically even if
// their underlying CellFlags differ (e.g. two distinct underline styles
// both just say Underline: true).
type SnapshotAttrs struct {
	Bold          bool `json:"bold,omitempty"`
	Dim           bool `json:"dim,omitempty"`
	Italic        bool `json:"italic,omitempty"`
	Underline     bool `json:"underline,omitempty"`
	Blink         bool `json:"blink,omitempty"`
	Reverse       bool `json:"reverse,omitempty"`
	Hidden        bool `json:"hidden,omitempty"`
	Strikethrough bool `json:"strikethrough,omitempty"`
}

type SnapshotLink struct {
	ID  string `json:"id,omitempty"`
	URI string `json:"uri"`
}

// SnapshotImage is an image placement's layout metadata, without pixel
// data; fetch pixels separately via GetImageData.
type SnapshotImage struct {
	ID          uint32 `json:"id"`
	PlacementID uint32 `json:"placement_id"`
	Row         int    `json:"row"`
	Col         int    `json:"col"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	PixelWidth  uint32 `json:"pixel_width"`
	PixelHeight uint32 `json:"pixel_height"`
	ZIndex      int32  `json:"z_index"`
}

// ImageSnapshot is a full image's pixel payload, base64-encoded for JSON
// transport.
type ImageSnapshot struct {
	ID     uint32 `json:"id"`
	Width  uint32 `json:"width"`
	Height uint32 `json:"height"`
	Format string `json:"format"`
	Data   string `json:"data"`
}

// GetImageData returns the stored pixels for image id, or nil if no such
// image is registered.
func (t *Terminal) GetImageData(id uint32) *ImageSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	img := t.images.Image(id)
	if img == nil {
		return nil
	}
	return &ImageSnapshot{
		ID:     img.ID,
		Width:  img.Width,
		Height: img.Height,
		Format: "rgba",
		Data:   base64.StdEncoding.EncodeToString(img.Data),
	}
}

// Snapshot captures the terminal's current state at the requested detail
// level.
func (t *Terminal) Snapshot(detail SnapshotDetail) *Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := &Snapshot{
		Size: SnapshotSize{Rows: t.rows, Cols: t.cols},
		Cursor: SnapshotCursor{
			Row:     t.cursor.Row,
			Col:     t.cursor.Col,
			Visible: t.cursor.Visible,
			Style:   cursorStyleToString(t.cursor.Style),
		},
		Lines:  make([]SnapshotLine, t.rows),
		Images: t.snapshotImages(),
	}
	for row := 0; row < t.rows; row++ {
		snap.Lines[row] = t.snapshotLine(row, detail)
	}
	return snap
}

func (t *Terminal) snapshotImages() []SnapshotImage {
	placements := t.images.Placements()
	if len(placements) == 0 {
		return nil
	}
	images := make([]SnapshotImage, 0, len(placements))
	for _, p := range placements {
		img := t.images.Image(p.ImageID)
		if img == nil {
			continue
		}
		images = append(images, SnapshotImage{
			ID:          p.ImageID,
			PlacementID: p.ID,
			Row:         p.Row,
			Col:         p.Col,
			Rows:        p.Rows,
			Cols:        p.Cols,
			PixelWidth:  img.Width,
			PixelHeight: img.Height,
			ZIndex:      p.ZIndex,
		})
	}
	return images
}

func (t *Terminal) snapshotLine(row int, detail SnapshotDetail) SnapshotLine {
	line := SnapshotLine{Text: t.activeBuffer.LineContent(row)}
	switch detail {
	case SnapshotDetailStyled:
		line.Segments = t.lineToSegments(row)
	case SnapshotDetailFull:
		line.Cells = t.lineToCells(row)
	}
	return line
}

// cellStyle is the per-cell projection shared by the styled-segment and
// full-cell snapshot paths, so both read the same logic for what counts
// as "the same look".
type cellStyle struct {
	fg, bg string
	attrs  SnapshotAttrs
	link   *SnapshotLink
}

func styleOf(cell *Cell) cellStyle {
	return cellStyle{
		fg:    colorToHex(cell.Fg),
		bg:    colorToHex(cell.Bg),
		attrs: cellAttrsToSnapshot(cell),
		link:  cellHyperlinkToSnapshot(cell),
	}
}

func (s cellStyle) equal(o cellStyle) bool {
	if s.fg != o.fg || s.bg != o.bg || s.attrs != o.attrs {
		return false
	}
	switch {
	case s.link == nil && o.link == nil:
		return true
	case s.link == nil || o.link == nil:
		return false
	default:
		return *s.link == *o.link
	}
}

// lineToSegments runs row through styleOf cell by cell, coalescing
// consecutive cells of identical style into one SnapshotSegment.
func (t *Terminal) lineToSegments(row int) []SnapshotSegment {
	var segments []SnapshotSegment
	var curStyle cellStyle
	var curText []rune
	open := false

	flush := func() {
		if open && len(curText) > 0 {
			segments = append(segments, SnapshotSegment{
				Text: string(curText), Fg: curStyle.fg, Bg: curStyle.bg,
				Attributes: curStyle.attrs, Hyperlink: curStyle.link,
			})
		}
	}

	for col := 0; col < t.cols; col++ {
		cell := t.activeBuffer.Cell(row, col)
		if cell == nil || cell.IsWideSpacer() {
			continue
		}
		style := styleOf(cell)
		if !open || !curStyle.equal(style) {
			flush()
			curStyle = style
			curText = nil
			open = true
		}
		ch := cell.Char
		if ch == 0 {
			ch = ' '
		}
		curText = append(curText, ch)
	}
	flush()
	return segments
}

func (t *Terminal) lineToCells(row int) []SnapshotCell {
	cells := make([]SnapshotCell, 0, t.cols)
	for col := 0; col < t.cols; col++ {
		cell := t.activeBuffer.Cell(row, col)
		if cell == nil {
			cells = append(cells, SnapshotCell{Char: " ", Fg: colorToHex(nil), Bg: colorToHex(nil)})
			continue
		}
		ch := cell.Char
		if ch == 0 {
			ch = ' '
		}
		style := styleOf(cell)
		cells = append(cells, SnapshotCell{
			Char: string(ch), Fg: style.fg, Bg: style.bg,
			Attributes: style.attrs, Hyperlink: style.link,
			Wide: cell.IsWide(), WideSpacer: cell.IsWideSpacer(),
			UnderlineColor: colorToHex(cell.UnderlineColor),
		})
	}
	return cells
}

// colorToHex renders c as "#rrggbb" via the same palette resolution a
// renderer would use; a nil c renders as the empty string.
func colorToHex(c color.Color) string {
	if c == nil {
		return ""
	}
	rgba := resolveDefaultColor(c, true)
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

func cellAttrsToSnapshot(cell *Cell) SnapshotAttrs {
	return SnapshotAttrs{
		Bold:          cell.HasFlag(CellFlagBold),
		Dim:           cell.HasFlag(CellFlagDim),
		Italic:        cell.HasFlag(CellFlagItalic),
		Underline:     cell.IsUnderlined(),
		Blink:         cell.HasFlag(CellFlagBlinkSlow) || cell.HasFlag(CellFlagBlinkFast),
		Reverse:       cell.HasFlag(CellFlagReverse),
		Hidden:        cell.HasFlag(CellFlagHidden),
		Strikethrough: cell.HasFlag(CellFlagStrike),
	}
}

func cellHyperlinkToSnapshot(cell *Cell) *SnapshotLink {
	if cell.Hyperlink == nil {
		return nil
	}
	return &SnapshotLink{ID: cell.Hyperlink.ID, URI: cell.Hyperlink.URI}
}

// cursorStyleToString collapses the six DECSCUSR styles to the three
// shapes a client-side renderer actually needs to draw differently.
func cursorStyleToString(style CursorStyle) string {
	switch style {
	case CursorStyleBlinkingUnderline, CursorStyleSteadyUnderline:
		return "underline"
	case CursorStyleBlinkingBar, CursorStyleSteadyBar:
		return "bar"
	default:
		return "block"
	}
}
