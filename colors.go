package vtcore

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ansiColors holds the 16 standard/bright ANSI colors (0-15) that seed
// DefaultPalette; everything above index 15 is derived from them.
var ansiColors = [16]color.RGBA{
	{0, 0, 0, 255}, {205, 49, 49, 255}, {13, 188, 121, 255}, {229, 229, 16, 255},
	{36, 114, 200, 255}, {188, 63, 188, 255}, {17, 168, 205, 255}, {229, 229, 229, 255},
	{102, 102, 102, 255}, {241, 76, 76, 255}, {35, 209, 139, 255}, {245, 245, 67, 255},
	{59, 142, 234, 255}, {214, 112, 214, 255}, {41, 184, 219, 255}, {255, 255, 255, 255},
}

// DefaultPalette is the 256-color xterm palette: ansiColors (0-15), a 6x6x6
// color cube (16-231), and a 24-step grayscale ramp (232-255).
var DefaultPalette = buildDefaultPalette()

func buildDefaultPalette() [256]color.RGBA {
	var p [256]color.RGBA
	copy(p[:16], ansiColors[:])

	idx := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p[idx] = color.RGBA{R: uint8(r * 51), G: uint8(g * 51), B: uint8(b * 51), A: 255}
				idx++
			}
		}
	}

	for step := 0; step < 24; step++ {
		level := uint8(8 + step*10)
		p[232+step] = color.RGBA{R: level, G: level, B: level, A: 255}
	}
	return p
}

// DefaultForeground, DefaultBackground, and DefaultCursorColor are the
// terminal's reset-state colors, used whenever a cell or cursor carries no
// explicit color override.
var (
	DefaultForeground = color.RGBA{229, 229, 229, 255}
	DefaultBackground = color.RGBA{0, 0, 0, 255}
	DefaultCursorColor = color.RGBA{229, 229, 229, 255}
)

// Named color indices, used by NamedColor to refer to a semantic slot
// (the current default fg/bg, the cursor color, or a dimmed variant of one
// of the first eight ANSI colors) rather than a fixed RGBA value.
const (
	NamedColorForeground = 256 + iota
	NamedColorBackground
	NamedColorCursor
	NamedColorDimBlack
	NamedColorDimRed
	NamedColorDimGreen
	NamedColorDimYellow
	NamedColorDimBlue
	NamedColorDimMagenta
	NamedColorDimCyan
	NamedColorDimWhite
	NamedColorBrightForeground
	NamedColorDimForeground
)

// dimFactor is how far a "dim" named color is blended toward black,
// matching the ~66% brightness most terminals use for SGR 2 (faint).
const dimFactor = 0.66

func dim(c color.RGBA) color.RGBA {
	src, _ := colorful.MakeColor(c)
	black, _ := colorful.MakeColor(color.RGBA{A: 255})
	blended := src.BlendRgb(black, 1-dimFactor)
	r, g, b := blended.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// resolveDefaultColor reduces any color.Color a cell might carry — nil, a
// literal color.RGBA, an *IndexedColor, a *NamedColor, or some other
// color.Color implementation — to a concrete RGBA for rendering. fg picks
// the fallback (foreground vs background) used when the color can't be
// resolved to anything more specific.
func resolveDefaultColor(c color.Color, fg bool) color.RGBA {
	switch v := c.(type) {
	case nil:
		return defaultColorFor(fg)
	case color.RGBA:
		return v
	case *IndexedColor:
		if v.Index >= 0 && v.Index < len(DefaultPalette) {
			return DefaultPalette[v.Index]
		}
		return defaultColorFor(fg)
	case *NamedColor:
		return resolveNamedColor(v.Name, fg)
	default:
		r, g, b, a := c.RGBA()
		return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
	}
}

func defaultColorFor(fg bool) color.RGBA {
	if fg {
		return DefaultForeground
	}
	return DefaultBackground
}

// dimNamedColors maps each NamedColorDim* slot to the ANSI palette index it
// dims.
var dimNamedColors = map[int]int{
	NamedColorDimBlack:   0,
	NamedColorDimRed:     1,
	NamedColorDimGreen:   2,
	NamedColorDimYellow:  3,
	NamedColorDimBlue:    4,
	NamedColorDimMagenta: 5,
	NamedColorDimCyan:    6,
	NamedColorDimWhite:   7,
}

// resolveNamedColor resolves a NamedColor's semantic index to RGBA.
func resolveNamedColor(name int, fg bool) color.RGBA {
	switch {
	case name >= 0 && name < 16:
		return DefaultPalette[name]
	case name == NamedColorForeground:
		return DefaultForeground
	case name == NamedColorBackground:
		return DefaultBackground
	case name == NamedColorCursor:
		return DefaultCursorColor
	case name == NamedColorBrightForeground:
		return DefaultPalette[15]
	case name == NamedColorDimForeground:
		return dim(DefaultForeground)
	default:
		if base, ok := dimNamedColors[name]; ok {
			return dim(DefaultPalette[base])
		}
		return defaultColorFor(fg)
	}
}
