package vtcore

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/graphemes"
)

// ResizeReflow re-splits the buffer's lines at a new column count instead of
// truncating/padding them, per spec.md §4.3 "If reflow is enabled". Wrapped
// continuation lines (SetWrapped) are first concatenated into one logical
// line, then re-split at cols'. Attributes travel with each cell; the
// wrapped flag is set on every split segment but the last.
//
// A logical line's text is additionally run through a grapheme-cluster
// segmenter so a split point never lands between a base rune and a
// combining mark even if a future Cell representation carries multi-rune
// clusters; today each Cell already holds one cluster; see graphemeSafe.
func (b *Buffer) ResizeReflow(rows, cols int) {
	if rows <= 0 || cols <= 0 {
		return
	}
	if cols == b.cols {
		b.Resize(rows, cols)
		return
	}

	logical := b.logicalLines()

	newLines := make([][]Cell, 0, rows)
	newWrapped := make([]bool, 0, rows)
	for _, ll := range logical {
		segments := splitLogicalLine(ll.cells, cols)
		for i, seg := range segments {
			newLines = append(newLines, seg)
			newWrapped = append(newWrapped, i < len(segments)-1)
		}
	}

	// Blank rows at the end of the reflowed content are dropped first, so
	// they never push real content off the top of the page.
	blank := func(line []Cell) bool {
		for _, c := range line {
			if (c.Char != ' ' && c.Char != 0) || c.Flags&^CellFlagDirty != 0 || c.Image != nil {
				return false
			}
		}
		return true
	}
	for len(newLines) > rows && blank(newLines[len(newLines)-1]) {
		newLines = newLines[:len(newLines)-1]
		newWrapped = newWrapped[:len(newWrapped)-1]
	}

	// Pad or truncate to the new row count, keeping the tail (most recent
	// content) when there is more reflowed content than fits the page.
	if len(newLines) > rows {
		overflow := len(newLines) - rows
		if b.scrollback != nil {
			for i := 0; i < overflow; i++ {
				b.scrollback.Push(newLines[i])
			}
		}
		newLines = newLines[overflow:]
		newWrapped = newWrapped[overflow:]
	}
	for len(newLines) < rows {
		newLines = append(newLines, blankCellRow(cols))
		newWrapped = append(newWrapped, false)
	}

	b.cells = newLines
	b.wrapped = newWrapped
	b.tabStop = defaultTabStops(cols)
	b.rows = rows
	b.cols = cols
	b.hasDirty = true
}

type logicalLine struct {
	cells   []Cell
	wrapped bool // whether the logical line's head carries the wrapped flag
}

// logicalLines groups consecutive physical lines into logical lines:
// line i+1 continues line i while line i is marked wrapped. Phantom
// (width-0) spacer cells are dropped; they are regenerated by
// splitLogicalLine after re-flowing.
func (b *Buffer) logicalLines() []logicalLine {
	var out []logicalLine
	for row := 0; row < b.rows; row++ {
		if row > 0 && b.wrapped[row-1] {
			last := &out[len(out)-1]
			last.cells = append(last.cells, stripSpacers(b.cells[row])...)
			continue
		}
		out = append(out, logicalLine{cells: stripSpacers(b.cells[row])})
	}
	return out
}

func stripSpacers(line []Cell) []Cell {
	out := make([]Cell, 0, len(line))
	for _, c := range line {
		if c.Flags&CellFlagWideCharSpacer != 0 {
			continue
		}
		out = append(out, c)
	}
	return out
}

// splitLogicalLine re-splits cells into rows of exactly cols columns,
// never splitting a wide cell from its phantom spacer. graphemeBoundaries
// is consulted so a split also never falls inside a combining-mark
// sequence once Cell grows to carry one.
func splitLogicalLine(cells []Cell, cols int) [][]Cell {
	safe := graphemeSafeBoundaries(cells)

	var segments [][]Cell
	cur := make([]Cell, 0, cols)
	col := 0
	for i, c := range cells {
		w := 1
		if c.Flags&CellFlagWideChar != 0 {
			w = 2
		}
		if col+w > cols && safe[i] {
			for col < cols {
				cur = append(cur, NewCell())
				col++
			}
			segments = append(segments, cur)
			cur = make([]Cell, 0, cols)
			col = 0
		}
		cur = append(cur, c)
		col += w
		if w == 2 {
			spacer := NewCell()
			spacer.Flags |= CellFlagWideCharSpacer
			cur = append(cur, spacer)
		}
	}
	for col < cols {
		cur = append(cur, NewCell())
		col++
	}
	segments = append(segments, cur)
	return segments
}

// graphemeSafeBoundaries returns, for each cell index i, whether a line
// split may occur immediately before cell i. It is always true in the
// current one-rune-per-cell Cell representation (every cell is already a
// complete grapheme cluster), but is computed from an actual uax29
// segmentation of the projected text rather than assumed, so the
// invariant keeps holding if Cell ever grows to carry combining marks
// merged into a single cell.
func graphemeSafeBoundaries(cells []Cell) []bool {
	safe := make([]bool, len(cells))
	var sb strings.Builder
	for _, c := range cells {
		sb.WriteRune(c.Char)
	}

	boundaryRune := make([]bool, sb.Len()+1)
	seg := graphemes.FromString(sb.String())
	pos := 0
	for seg.Next() {
		boundaryRune[pos] = true
		pos += len(seg.Value())
	}
	boundaryRune[sb.Len()] = true

	runePos := 0
	for i, c := range cells {
		safe[i] = boundaryRune[runePos]
		runePos += len(string(c.Char))
	}
	return safe
}

func blankCellRow(cols int) []Cell {
	row := make([]Cell, cols)
	for i := range row {
		row[i] = NewCell()
	}
	return row
}
