package vtcore

import "image/color"

// IndexedColor references a color by 256-color palette index; resolution
// to RGBA happens at render time via resolveDefaultColor.
type IndexedColor struct {
	Index int
}

// RGBA implements color.Color with a placeholder value — actual
// resolution happens through resolveDefaultColor, not this method.
func (c *IndexedColor) RGBA() (r, g, b, a uint32) { return 0, 0, 0, 0xffff }

// NamedColor references a color by semantic slot (current foreground,
// background, cursor, etc.); resolution to RGBA happens at render time.
type NamedColor struct {
	Name int
}

// RGBA implements color.Color with a placeholder value — actual
// resolution happens through resolveDefaultColor, not this method.
func (c *NamedColor) RGBA() (r, g, b, a uint32) { return 0, 0, 0, 0xffff }

// underlineAttrFlags maps each underline-style SGR attribute to the flag it
// sets and the sibling underline flags it must clear, since only one
// underline style applies at a time.
var underlineAttrFlags = map[CharAttributeKind]CellFlags{
	CharAttributeUnderline:       CellFlagUnderline,
	CharAttributeDoubleUnderline: CellFlagDoubleUnderline,
	CharAttributeCurlyUnderline:  CellFlagCurlyUnderline,
	CharAttributeDottedUnderline: CellFlagDottedUnderline,
	CharAttributeDashedUnderline: CellFlagDashedUnderline,
}

// plainFlagAttrs dispatches the SGR attributes that do nothing but set or
// clear a fixed CellFlags bit on the template, which is most of them; the
// handful with extra side effects (reset, colors, underline style
// selection) are handled directly in setTerminalCharAttributeInternal.
var plainFlagAttrs = map[CharAttributeKind]struct {
	flag  CellFlags
	clear bool
}{
	CharAttributeBold:            {CellFlagBold, false},
	CharAttributeDim:             {CellFlagDim, false},
	CharAttributeItalic:          {CellFlagItalic, false},
	CharAttributeBlinkSlow:       {CellFlagBlinkSlow, false},
	CharAttributeBlinkFast:       {CellFlagBlinkFast, false},
	CharAttributeReverse:         {CellFlagReverse, false},
	CharAttributeHidden:          {CellFlagHidden, false},
	CharAttributeStrike:          {CellFlagStrike, false},
	CharAttributeCancelBold:      {CellFlagBold, true},
	CharAttributeCancelItalic:    {CellFlagItalic, true},
	CharAttributeCancelBlink:     {CellFlagBlinkSlow | CellFlagBlinkFast, true},
	CharAttributeCancelReverse:   {CellFlagReverse, true},
	CharAttributeCancelHidden:    {CellFlagHidden, true},
	CharAttributeCancelStrike:    {CellFlagStrike, true},
	CharAttributeCancelBoldDim:   {CellFlagBold | CellFlagDim, true},
	CharAttributeCancelUnderline: {underlineFlags, true},
}

// SetTerminalCharAttribute applies one SGR attribute to the cell template
// that subsequently written characters inherit.
func (t *Terminal) SetTerminalCharAttribute(attr TerminalCharAttribute) {
	invoke1(t.mw().SetTerminalCharAttribute, attr, t.setTerminalCharAttributeInternal)
}

func (t *Terminal) setTerminalCharAttributeInternal(attr TerminalCharAttribute) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if flag, ok := underlineAttrFlags[attr.Attr]; ok {
		t.template.ClearFlag(underlineFlags)
		t.template.SetFlag(flag)
		return
	}
	if spec, ok := plainFlagAttrs[attr.Attr]; ok {
		if spec.clear {
			t.template.ClearFlag(spec.flag)
		} else {
			t.template.SetFlag(spec.flag)
		}
		return
	}

	switch attr.Attr {
	case CharAttributeReset:
		t.template = NewCellTemplate()
	case CharAttributeForeground:
		t.template.Fg = t.resolveColor(attr)
	case CharAttributeBackground:
		t.template.Bg = t.resolveColor(attr)
	case CharAttributeUnderlineColor:
		if attr.RGBColor == nil && attr.IndexedColor == nil && attr.NamedColor == nil {
			t.template.UnderlineColor = nil
		} else {
			t.template.UnderlineColor = t.resolveColor(attr)
		}
	}
}

// resolveColor picks the concrete color.Color an attribute's RGB/indexed/
// named payload describes, falling back to the semantic default for its
// kind when none was supplied (SGR 39/49 "default foreground/background").
func (t *Terminal) resolveColor(attr TerminalCharAttribute) color.Color {
	switch {
	case attr.RGBColor != nil:
		return color.RGBA{R: attr.RGBColor.R, G: attr.RGBColor.G, B: attr.RGBColor.B, A: 255}
	case attr.IndexedColor != nil:
		return &IndexedColor{Index: int(attr.IndexedColor.Index)}
	case attr.NamedColor != nil:
		return &NamedColor{Name: int(*attr.NamedColor)}
	case attr.Attr == CharAttributeBackground:
		return &NamedColor{Name: NamedColorBackground}
	default:
		return &NamedColor{Name: NamedColorForeground}
	}
}
