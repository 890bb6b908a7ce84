package vtcore

// SixelReceived decodes an incoming Sixel (DCS q) image and places it at
// the cursor, advancing the cursor past the rows it covers. When the image
// would extend past the bottom row, the scroll region is first scrolled up
// (by at most the cursor row) so that it fits.
func (t *Terminal) SixelReceived(params [][]uint16, data []byte) {
	invoke2(t.mw().SixelReceived, params, data, t.sixelReceivedInternal)
}

func (t *Terminal) sixelReceivedInternal(params [][]uint16, data []byte) {
	p := make([]int64, 0, len(params))
	for _, param := range params {
		if len(param) > 0 {
			p = append(p, int64(param[0]))
		}
	}

	img, err := ParseSixel(p, data)
	if err != nil || img.Width == 0 || img.Height == 0 {
		return
	}

	imageID := t.images.Store(img.Width, img.Height, img.Data)

	cellWidth, cellHeight := t.getCellSizePixels()
	cols := ceilDiv(img.Width, uint32(cellWidth))
	rows := ceilDiv(img.Height, uint32(cellHeight))

	t.mu.Lock()
	curRow, curCol := t.cursor.Row, t.cursor.Col
	if over := curRow + rows - t.rows; over > 0 {
		if over > curRow {
			over = curRow
		}
		t.activeBuffer.ScrollUp(t.scrollTop, t.scrollBottom, over)
		curRow -= over
		t.cursor.Row = curRow
	}
	t.mu.Unlock()

	placement := &ImagePlacement{
		ImageID: imageID,
		Row:     curRow,
		Col:     curCol,
		Cols:    cols,
		Rows:    rows,
		SrcW:    img.Width,
		SrcH:    img.Height,
	}

	placementID := t.images.Place(placement)
	t.assignImageToCells(imageID, placementID, placement, img.Width, img.Height, cellWidth, cellHeight)

	t.mu.Lock()
	t.cursor.Row += rows
	if t.cursor.Row >= t.rows {
		t.cursor.Row = t.rows - 1
	}
	t.mu.Unlock()
}

// getCellSizePixels reports the pixel dimensions of one cell, deferring to
// the size provider when it reports usable values.
func (t *Terminal) getCellSizePixels() (width, height int) {
	if t.sizeProvider != nil {
		if w, h := t.sizeProvider.CellSizePixels(); w > 0 && h > 0 {
			return w, h
		}
	}
	return cellPixelWidth, cellPixelHeight
}

// ImagePlaceholderChar is the character written into every cell an image
// placement covers (the Kitty Unicode placeholder, U+10EEEE).
const ImagePlaceholderChar = '\U0010EEEE'

// assignImageToCells stamps the cells a placement covers with
// ImagePlaceholderChar and a CellImage referencing the texture region (in
// normalized UV coordinates) each cell displays.
func (t *Terminal) assignImageToCells(imageID, placementID uint32, p *ImagePlacement, imgW, imgH uint32, cellW, cellH int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for row := 0; row < p.Rows; row++ {
		for col := 0; col < p.Cols; col++ {
			cellRow, cellCol := p.Row+row, p.Col+col
			if cellRow < 0 || cellRow >= t.rows || cellCol < 0 || cellCol >= t.cols {
				continue
			}

			u0, v0, u1, v1 := cellUV(row, col, cellW, cellH, imgW, imgH)

			cell := t.activeBuffer.Cell(cellRow, cellCol)
			if cell == nil {
				continue
			}
			cell.Char = ImagePlaceholderChar
			cell.Image = &CellImage{
				PlacementID: placementID,
				ImageID:     imageID,
				U0:          u0,
				V0:          v0,
				U1:          u1,
				V1:          v1,
				ZIndex:      p.ZIndex,
			}
			cell.MarkDirty()
		}
	}
}

// cellUV computes the normalized texture-coordinate box a placement's
// (row, col) cell covers within an imgW x imgH source image, clamped to
// [0, 1] for cells that extend past the image's edge.
func cellUV(row, col, cellW, cellH int, imgW, imgH uint32) (u0, v0, u1, v1 float32) {
	u0 = float32(col*cellW) / float32(imgW)
	v0 = float32(row*cellH) / float32(imgH)
	u1 = float32((col+1)*cellW) / float32(imgW)
	v1 = float32((row+1)*cellH) / float32(imgH)

	if u1 > 1.0 {
		u1 = 1.0
	}
	if v1 > 1.0 {
		v1 = 1.0
	}
	return u0, v0, u1, v1
}
