package vtcore

// handleKittyGraphics decodes an APC 'G' payload and routes it to the
// transmit/display/delete handler for its action.
func (t *Terminal) handleKittyGraphics(data []byte) {
	cmd, err := ParseKittyGraphics(data)
	if err != nil {
		return
	}

	switch cmd.Action {
	case KittyActionQuery:
		if cmd.Quiet < 2 {
			t.writeResponseString(FormatKittyResponse(cmd.ImageID, "", false))
		}
	case KittyActionTransmit:
		t.kittyTransmit(cmd)
	case KittyActionTransmitDisplay:
		t.kittyTransmit(cmd)
		if !cmd.More {
			t.kittyDisplay(cmd)
		}
	case KittyActionDisplay:
		t.kittyDisplay(cmd)
	case KittyActionDelete:
		t.kittyDelete(cmd)
	}
}

// kittyTransmit assembles a (possibly chunked) image payload, decodes it,
// and stores the result for later display.
func (t *Terminal) kittyTransmit(cmd *KittyCommand) {
	if cmd.More {
		t.images.mu.Lock()
		if !t.images.accumulatorMore {
			// Only the first chunk carries the image's keys; keep them for
			// the final chunk.
			t.images.accumulatorID = cmd.ImageID
			t.images.accumulatorFormat = cmd.Format
			t.images.accumulatorWidth, t.images.accumulatorHeight = cmd.Width, cmd.Height
			t.images.accumulatorCompression = cmd.Compression
		}
		t.images.accumulator = append(t.images.accumulator, cmd.Payload...)
		t.images.accumulatorMore = true
		t.images.mu.Unlock()
		return
	}

	t.images.mu.Lock()
	payload := cmd.Payload
	if t.images.accumulatorMore {
		payload = append(t.images.accumulator, cmd.Payload...)
		cmd.Format = t.images.accumulatorFormat
		cmd.Width, cmd.Height = t.images.accumulatorWidth, t.images.accumulatorHeight
		cmd.Compression = t.images.accumulatorCompression
		if cmd.ImageID == 0 {
			cmd.ImageID = t.images.accumulatorID
		}
		t.images.accumulator = nil
		t.images.accumulatorMore = false
	}
	t.images.mu.Unlock()
	cmd.Payload = payload

	rgba, width, height, err := cmd.DecodeImageData()
	if err != nil || width == 0 || height == 0 {
		if cmd.Quiet < 2 {
			t.writeResponseString(FormatKittyResponse(cmd.ImageID, "ENODATA", true))
		}
		return
	}

	if cmd.ImageID > 0 {
		t.images.StoreWithID(cmd.ImageID, width, height, rgba)
	} else {
		cmd.ImageID = t.images.Store(width, height, rgba)
	}

	if cmd.Quiet < 1 {
		t.writeResponseString(FormatKittyResponse(cmd.ImageID, "", false))
	}
}

// kittyDisplay places a previously transmitted image at the cursor,
// computing its cell footprint from the requested or source dimensions.
func (t *Terminal) kittyDisplay(cmd *KittyCommand) {
	img := t.images.Image(cmd.ImageID)
	if img == nil {
		if cmd.Quiet < 2 {
			t.writeResponseString(FormatKittyResponse(cmd.ImageID, "ENOENT", true))
		}
		return
	}

	cellW, cellH := t.getCellSizePixels()

	srcW, srcH := cmd.SrcW, cmd.SrcH
	if srcW == 0 {
		srcW = img.Width - cmd.SrcX
	}
	if srcH == 0 {
		srcH = img.Height - cmd.SrcY
	}

	cols, rows := int(cmd.Cols), int(cmd.Rows)
	if cols == 0 {
		cols = ceilDiv(srcW, uint32(cellW))
	}
	if rows == 0 {
		rows = ceilDiv(srcH, uint32(cellH))
	}

	t.mu.Lock()
	curRow, curCol := t.cursor.Row, t.cursor.Col
	t.mu.Unlock()

	placement := &ImagePlacement{
		ImageID: cmd.ImageID,
		Row:     curRow,
		Col:     curCol,
		Cols:    cols,
		Rows:    rows,
		SrcX:    cmd.SrcX,
		SrcY:    cmd.SrcY,
		SrcW:    srcW,
		SrcH:    srcH,
		ZIndex:  cmd.ZIndex,
		OffsetX: cmd.CellOffsetX,
		OffsetY: cmd.CellOffsetY,
	}

	placementID := t.images.Place(placement)
	t.assignImageToCells(cmd.ImageID, placementID, placement, img.Width, img.Height, cellW, cellH)

	if !cmd.DoNotMoveCursor {
		t.advanceCursorPastImage(cols)
	}

	if cmd.Quiet < 1 {
		t.writeResponseString(FormatKittyResponse(cmd.ImageID, "", false))
	}
}

func (t *Terminal) advanceCursorPastImage(cols int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cursor.Col += cols
	if t.cursor.Col >= t.cols {
		t.cursor.Col = 0
		t.cursor.Row++
		if t.cursor.Row >= t.rows {
			t.cursor.Row = t.rows - 1
		}
	}
}

// ceilDiv rounds up the quotient n/d, used to size an image's cell
// footprint from its pixel dimensions.
func ceilDiv(n, d uint32) int {
	if d == 0 {
		return 0
	}
	return int((n + d - 1) / d)
}

// kittyDeleteHandlers dispatches each Kitty delete selector to the images
// store call that implements it. Only the all and by-ID data variants
// ('A', 'I') also free the backing image data; the other uppercase
// variants remove placements exactly as their lowercase forms do.
var kittyDeleteHandlers = map[KittyDelete]func(t *Terminal, cmd *KittyCommand, row, col int){
	KittyDeleteAll: func(t *Terminal, cmd *KittyCommand, row, col int) {
		t.images.mu.Lock()
		t.images.deletePlacementsWhereLocked(func(*ImagePlacement) bool { return true })
		t.images.mu.Unlock()
	},
	KittyDeleteAllWithData: func(t *Terminal, cmd *KittyCommand, row, col int) { t.images.Clear() },
	KittyDeleteByID:        func(t *Terminal, cmd *KittyCommand, row, col int) { t.images.RemovePlacementsForImage(cmd.ImageID) },
	KittyDeleteByIDWithData: func(t *Terminal, cmd *KittyCommand, row, col int) {
		t.images.RemovePlacementsForImage(cmd.ImageID)
		t.images.DeleteImage(cmd.ImageID)
	},
	KittyDeleteAtCursor:     func(t *Terminal, cmd *KittyCommand, row, col int) { t.images.DeletePlacementsByPosition(row, col) },
	KittyDeleteAtCursorData: func(t *Terminal, cmd *KittyCommand, row, col int) { t.images.DeletePlacementsByPosition(row, col) },
	KittyDeleteByCol:        func(t *Terminal, cmd *KittyCommand, row, col int) { t.images.DeletePlacementsInColumn(col) },
	KittyDeleteByColData:    func(t *Terminal, cmd *KittyCommand, row, col int) { t.images.DeletePlacementsInColumn(col) },
	KittyDeleteByRow:        func(t *Terminal, cmd *KittyCommand, row, col int) { t.images.DeletePlacementsInRow(row) },
	KittyDeleteByRowData:    func(t *Terminal, cmd *KittyCommand, row, col int) { t.images.DeletePlacementsInRow(row) },
	KittyDeleteByZIndex:     func(t *Terminal, cmd *KittyCommand, row, col int) { t.images.DeletePlacementsByZIndex(cmd.ZIndex) },
	KittyDeleteByZIndexData: func(t *Terminal, cmd *KittyCommand, row, col int) { t.images.DeletePlacementsByZIndex(cmd.ZIndex) },
}

// kittyDelete removes placements (and optionally backing image data)
// selected per cmd.Delete.
func (t *Terminal) kittyDelete(cmd *KittyCommand) {
	t.mu.Lock()
	curRow, curCol := t.cursor.Row, t.cursor.Col
	t.mu.Unlock()

	if handler, ok := kittyDeleteHandlers[cmd.Delete]; ok {
		handler(t, cmd, curRow, curCol)
	}
}
