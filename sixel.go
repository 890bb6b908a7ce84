package vtcore

import "image/color"

// SixelImage is a decoded DEC Sixel raster.
type SixelImage struct {
	Width       uint32
	Height      uint32
	Data        []byte // RGBA
	Transparent bool
}

type point struct{ x, y int }

// sixelParser walks a Sixel byte stream, maintaining a cursor, an active
// 256-slot color register, and a sparse pixel map (the canvas size isn't
// known until parsing finishes, so a dense buffer can't be pre-allocated).
type sixelParser struct {
	palette     [256]color.RGBA
	colorIndex  int
	x, y        int
	maxX, maxY  int
	pixels      map[point]color.RGBA
	transparent bool
}

// ParseSixel decodes a Sixel DCS body. params holds the DCS's P1;P2;P3
// numeric parameters (only P2, background selection, is consulted); data
// is the raw Sixel payload following the 'q' introducer.
func ParseSixel(params []int64, data []byte) (*SixelImage, error) {
	p := &sixelParser{pixels: make(map[point]color.RGBA)}
	p.initDefaultPalette()

	if len(params) >= 2 && params[1] == 1 {
		p.transparent = true
	}

	p.parse(data)
	return p.toImage(), nil
}

// initDefaultPalette loads the standard 16-color VGA set into registers
// 0-15 and a grayscale ramp into the rest, matching what real terminals
// assume before a Sixel stream redefines any registers of its own.
func (p *sixelParser) initDefaultPalette() {
	vga := [16]color.RGBA{
		{0, 0, 0, 255}, {0, 0, 205, 255}, {205, 0, 0, 255}, {205, 0, 205, 255},
		{0, 205, 0, 255}, {0, 205, 205, 255}, {205, 205, 0, 255}, {205, 205, 205, 255},
		{0, 0, 0, 255}, {0, 0, 255, 255}, {255, 0, 0, 255}, {255, 0, 255, 255},
		{0, 255, 0, 255}, {0, 255, 255, 255}, {255, 255, 0, 255}, {255, 255, 255, 255},
	}
	copy(p.palette[:], vga[:])
	for i := 16; i < 256; i++ {
		gray := uint8((i - 16) * 255 / 239)
		p.palette[i] = color.RGBA{R: gray, G: gray, B: gray, A: 255}
	}
}

// parse scans the Sixel command stream one control/data byte at a time.
func (p *sixelParser) parse(data []byte) {
	i := 0
	for i < len(data) {
		b := data[i]
		i++

		switch {
		case b == '$':
			p.x = 0
		case b == '-':
			p.x = 0
			p.y += 6
		case b == '!':
			i = p.handleRepeat(data, i)
		case b == '#':
			i = p.handleColorIntroducer(data, i)
		case b >= '?' && b <= '~':
			p.drawSixel(b, 1)
		case b == '"':
			i = skipRasterAttributes(data, i)
		}
	}
}

// handleRepeat parses "!<count><sixel>" starting at i (just past '!') and
// draws the repeated sixel.
func (p *sixelParser) handleRepeat(data []byte, i int) int {
	count, i := parseSixelNumber(data, i)
	if i >= len(data) {
		return i
	}
	sixel := data[i]
	i++
	if sixel >= '?' && sixel <= '~' {
		p.drawSixel(sixel, int(count))
	}
	return i
}

// handleColorIntroducer parses "#<index>" or the full color-definition
// form "#<index>;<type>;<v1>;<v2>;<v3>" starting at i (just past '#'),
// defining the register if a full form was given, then selecting it.
func (p *sixelParser) handleColorIntroducer(data []byte, i int) int {
	colorNum, i := parseSixelNumber(data, i)

	if fields, next, ok := parseSemicolonFields(data, i, 4); ok {
		i = next
		colorType, v1, v2, v3 := fields[0], fields[1], fields[2], fields[3]
		if colorNum >= 0 && colorNum < 256 {
			if colorType == 1 {
				p.palette[colorNum] = hlsToRGB(int(v1), int(v2), int(v3))
			} else {
				p.palette[colorNum] = color.RGBA{
					R: uint8(v1 * 255 / 100), G: uint8(v2 * 255 / 100), B: uint8(v3 * 255 / 100), A: 255,
				}
			}
		}
	}

	if colorNum >= 0 && colorNum < 256 {
		p.colorIndex = int(colorNum)
	}
	return i
}

// parseSemicolonFields parses up to n ";"-prefixed decimal fields
// starting at i. It only reports ok if every field up through the last
// was present, matching the original parser's all-or-nothing color
// definition grammar.
func parseSemicolonFields(data []byte, i int, n int) ([]int64, int, bool) {
	fields := make([]int64, n)
	for f := 0; f < n; f++ {
		if i >= len(data) || data[i] != ';' {
			return nil, i, false
		}
		i++
		fields[f], i = parseSixelNumber(data, i)
	}
	return fields, i, true
}

func skipRasterAttributes(data []byte, i int) int {
	for i < len(data) && data[i] != '$' && data[i] != '-' &&
		data[i] != '#' && data[i] != '!' &&
		!(data[i] >= '?' && data[i] <= '~') {
		i++
	}
	return i
}

func parseSixelNumber(data []byte, i int) (int64, int) {
	var n int64
	for i < len(data) && data[i] >= '0' && data[i] <= '9' {
		n = n*10 + int64(data[i]-'0')
		i++
	}
	return n, i
}

// drawSixel plots one Sixel data character: each of its 6 low bits is a
// vertical pixel (bit 0 = top), repeated count times moving right.
func (p *sixelParser) drawSixel(b byte, count int) {
	if count <= 0 {
		count = 1
	}
	bits := b - '?'
	c := p.palette[p.colorIndex]

	for r := 0; r < count; r++ {
		for bit := 0; bit < 6; bit++ {
			if bits&(1<<bit) == 0 {
				continue
			}
			py, px := p.y+bit, p.x
			p.pixels[point{px, py}] = c
			if px > p.maxX {
				p.maxX = px
			}
			if py > p.maxY {
				p.maxY = py
			}
		}
		p.x++
	}
}

// toImage renders the sparse pixel set into a dense RGBA buffer sized to
// the bounding box actually touched.
func (p *sixelParser) toImage() *SixelImage {
	if len(p.pixels) == 0 {
		return &SixelImage{}
	}

	width := uint32(p.maxX + 1)
	height := uint32(p.maxY + 1)
	data := make([]byte, width*height*4)

	if !p.transparent {
		bg := p.palette[0]
		for i := uint32(0); i < width*height; i++ {
			data[i*4+0] = bg.R
			data[i*4+1] = bg.G
			data[i*4+2] = bg.B
			data[i*4+3] = bg.A
		}
	}

	for pt, c := range p.pixels {
		if pt.x < 0 || pt.x >= int(width) || pt.y < 0 || pt.y >= int(height) {
			continue
		}
		offset := (uint32(pt.y)*width + uint32(pt.x)) * 4
		data[offset+0] = c.R
		data[offset+1] = c.G
		data[offset+2] = c.B
		data[offset+3] = c.A
	}

	return &SixelImage{Width: width, Height: height, Data: data, Transparent: p.transparent}
}

// hlsToRGB converts Sixel's non-standard HLS (hue 0-360 with blue=0,
// red=120, green=240; lightness and saturation 0-100) to RGB.
func hlsToRGB(h, l, s int) color.RGBA {
	if s == 0 {
		v := uint8(l * 255 / 100)
		return color.RGBA{R: v, G: v, B: v, A: 255}
	}

	hNorm := float64(h) / 360.0
	lNorm := float64(l) / 100.0
	sNorm := float64(s) / 100.0

	// Sixel's wheel puts blue at 0; adding 240 degrees maps it onto the
	// standard red=0 wheel (Sixel 120 -> 0 red, 240 -> 120 green).
	hNorm += 2.0 / 3.0
	if hNorm >= 1.0 {
		hNorm -= 1.0
	}

	var q float64
	if lNorm < 0.5 {
		q = lNorm * (1 + sNorm)
	} else {
		q = lNorm + sNorm - lNorm*sNorm
	}
	pp := 2*lNorm - q

	r := hueToRGB(pp, q, hNorm+1.0/3.0)
	g := hueToRGB(pp, q, hNorm)
	b := hueToRGB(pp, q, hNorm-1.0/3.0)

	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
