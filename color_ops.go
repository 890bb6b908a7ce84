package vtcore

import (
	"fmt"
	"image/color"
)

// SetColor stores a custom color at a palette index (OSC 4) or a named
// dynamic-color slot (OSC 10/11/12), overriding the default for indexed
// color resolution.
func (t *Terminal) SetColor(index int, c color.Color) {
	invoke2(t.mw().SetColor, index, c, t.setColorInternal)
}

func (t *Terminal) setColorInternal(index int, c color.Color) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.colors[index] = c
}

// ResetColor removes a custom color override at index (OSC 104), falling
// back to the built-in default on next resolution.
func (t *Terminal) ResetColor(i int) {
	invoke1(t.mw().ResetColor, i, t.resetColorInternal)
}

func (t *Terminal) resetColorInternal(i int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.colors, i)
}

// SetDynamicColor answers an OSC 10/11/12 color query with the resolved
// "rgb:RR/GG/BB" value for index.
func (t *Terminal) SetDynamicColor(prefix string, index int, terminator string) {
	invoke3(t.mw().SetDynamicColor, prefix, index, terminator, t.setDynamicColorInternal)
}

func (t *Terminal) setDynamicColorInternal(prefix string, index int, terminator string) {
	t.mu.RLock()
	c, hasOverride := t.colors[index]
	t.mu.RUnlock()

	var rgba color.RGBA
	switch {
	case hasOverride:
		rgba = resolveDefaultColor(c, true)
	case index >= 0 && index < 256:
		rgba = DefaultPalette[index]
	case index >= 256:
		rgba = resolveDefaultColor(&NamedColor{Name: index}, true)
	default:
		return
	}

	t.writeResponseString(fmt.Sprintf("\x1b]%s;rgb:%02x/%02x/%02x%s", prefix, rgba.R, rgba.G, rgba.B, terminator))
}
