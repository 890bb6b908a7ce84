// Package imagepool implements the terminal's image storage pool: decoded
// RGBA images, their rasterized (resized + aligned) grid projections, and
// the per-cell fragments a renderer slices out of them.
package imagepool

import (
	"image"
	"image/color"
	"sync"
	"sync/atomic"

	colorful "github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"

	"github.com/nox-term/vtcore/lru"
)

// Format is the pixel encoding an Image was decoded from.
type Format int

const (
	FormatRGB Format = iota
	FormatRGBA
	FormatPNG
)

// Resize selects how a rasterized image fits the grid cells it spans.
type Resize int

const (
	ResizeNone Resize = iota
	ResizeToFit
	ResizeToFill
	StretchToFill
)

// Alignment selects where a resized image sits within its cell span when
// it doesn't fully fill it.
type Alignment int

const (
	AlignTopStart Alignment = iota
	AlignTopCenter
	AlignTopEnd
	AlignMiddleStart
	AlignMiddleCenter
	AlignMiddleEnd
	AlignBottomStart
	AlignBottomCenter
	AlignBottomEnd
)

// Stats holds diagnostic counters that are process-wide, shared by every
// Pool. Instances is the number of live Images: it rises when an Image is
// created and falls when its last reference is released. Rasterized and
// Fragments count calls to Rasterize and Fragment; they only grow and do
// not track live RasterizedImages or fragments.
type Stats struct {
	Instances  int64
	Rasterized int64
	Fragments  int64
}

var globalStats Stats

// GlobalStats returns the current values of the process-wide counters.
func GlobalStats() Stats {
	return Stats{
		Instances:  atomic.LoadInt64(&globalStats.Instances),
		Rasterized: atomic.LoadInt64(&globalStats.Rasterized),
		Fragments:  atomic.LoadInt64(&globalStats.Fragments),
	}
}

// Image is a decoded RGBA image held in the pool, reference-counted so its
// removal callback fires deterministically rather than on GC finalization.
type Image struct {
	ID     uint32
	Format Format
	Width  int
	Height int
	Data   []byte // RGBA, width*height*4 bytes

	refs     int32
	onRemove func(*Image)
}

// Retain increments the image's reference count.
func (img *Image) Retain() {
	atomic.AddInt32(&img.refs, 1)
}

// Release decrements the reference count, firing onRemove once it reaches
// zero. Calling Release more times than Retain is a caller bug; it is not
// guarded against, matching the unchecked shared_ptr discipline it mirrors.
func (img *Image) Release() {
	if atomic.AddInt32(&img.refs, -1) == 0 {
		atomic.AddInt64(&globalStats.Instances, -1)
		if img.onRemove != nil {
			img.onRemove(img)
		}
	}
}

func (img *Image) at(x, y int) color.RGBA {
	if x < 0 || y < 0 || x >= img.Width || y >= img.Height {
		return color.RGBA{}
	}
	i := (y*img.Width + x) * 4
	return color.RGBA{R: img.Data[i], G: img.Data[i+1], B: img.Data[i+2], A: img.Data[i+3]}
}

// ColorModel and Bounds/At make Image satisfy image.Image, so it can be
// fed directly to golang.org/x/image/draw scalers.
func (img *Image) ColorModel() color.Model { return color.RGBAModel }
func (img *Image) Bounds() image.Rectangle { return image.Rect(0, 0, img.Width, img.Height) }
func (img *Image) At(x, y int) color.Color { return img.at(x, y) }

// RasterizedImage projects an Image onto a fixed span of grid cells under
// a resize and alignment policy, precomputing the resized pixel buffer
// once so per-cell Fragment calls only copy pixels out of it (blending
// the fill color in where the resized image does not cover the cell).
type RasterizedImage struct {
	image     *Image
	alignment Alignment
	resize    Resize
	fill      color.RGBA

	cellCols, cellRows   int
	cellWidth, cellHeight int

	resized    *image.RGBA
	originX    int
	originY    int
}

// Pool stores images in host memory, vends rasterized projections and
// fragments of them, and keeps a bounded name -> image cache for named
// references (e.g. the Kitty graphics protocol's "a=t,i=N" name links).
type Pool struct {
	mu          sync.Mutex
	nextImageID uint32
	names       *lru.Cache[string, struct{}] // recency/capacity tracking only
	linked      map[string]*Image             // name -> retained image
	onRemove    func(*Image)
}

// New creates a Pool. onRemove, if non-nil, is called once an Image's
// reference count drops to zero. nameCacheCapacity bounds the name-link
// table (0 defaults to 100, matching the reference pool).
func New(onRemove func(*Image), nameCacheCapacity int) *Pool {
	if nameCacheCapacity <= 0 {
		nameCacheCapacity = 100
	}
	return &Pool{
		nextImageID: 1,
		names:       lru.New[string, struct{}](nameCacheCapacity),
		linked:      make(map[string]*Image),
		onRemove:    onRemove,
	}
}

// Create stores RGBA pixel data as a new pooled Image with one reference
// already held by the caller.
func (p *Pool) Create(format Format, width, height int, data []byte) *Image {
	p.mu.Lock()
	id := p.nextImageID
	p.nextImageID++
	p.mu.Unlock()

	atomic.AddInt64(&globalStats.Instances, 1)
	return &Image{
		ID:       id,
		Format:   format,
		Width:    width,
		Height:   height,
		Data:     data,
		refs:     1,
		onRemove: p.onRemove,
	}
}

// Rasterize projects img onto a cellCols x cellRows grid span, each cell
// cellWidth x cellHeight pixels, resolving the resize policy eagerly.
func (p *Pool) Rasterize(img *Image, alignment Alignment, resize Resize, fill color.RGBA, cellCols, cellRows, cellWidth, cellHeight int) *RasterizedImage {
	atomic.AddInt64(&globalStats.Rasterized, 1)

	ri := &RasterizedImage{
		image:      img,
		alignment:  alignment,
		resize:     resize,
		fill:       fill,
		cellCols:   cellCols,
		cellRows:   cellRows,
		cellWidth:  cellWidth,
		cellHeight: cellHeight,
	}
	ri.resolve()
	return ri
}

func (ri *RasterizedImage) targetSize() (w, h int) {
	spanW := ri.cellCols * ri.cellWidth
	spanH := ri.cellRows * ri.cellHeight

	switch ri.resize {
	case ResizeNone:
		return ri.image.Width, ri.image.Height
	case StretchToFill:
		return spanW, spanH
	case ResizeToFit:
		return fitWithin(ri.image.Width, ri.image.Height, spanW, spanH)
	case ResizeToFill:
		return fillOver(ri.image.Width, ri.image.Height, spanW, spanH)
	}
	return ri.image.Width, ri.image.Height
}

func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w == 0 || h == 0 {
		return 0, 0
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	return max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))
}

func fillOver(w, h, minW, minH int) (int, int) {
	if w == 0 || h == 0 {
		return 0, 0
	}
	scale := max(float64(minW)/float64(w), float64(minH)/float64(h))
	return max(1, int(float64(w)*scale)), max(1, int(float64(h)*scale))
}

// resolve scales the source image to its target size with a bilinear
// filter (Catmull-Rom for upscaling, where sharper edges help text-like
// content), then computes the alignment origin within the cell span.
func (ri *RasterizedImage) resolve() {
	w, h := ri.targetSize()
	if w == ri.image.Width && h == ri.image.Height {
		ri.resized = imageToRGBA(ri.image)
	} else {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		scaler := draw.BiLinear
		if w > ri.image.Width || h > ri.image.Height {
			scaler = draw.CatmullRom
		}
		scaler.Scale(dst, dst.Bounds(), ri.image, ri.image.Bounds(), draw.Over, nil)
		ri.resized = dst
	}

	spanW := ri.cellCols * ri.cellWidth
	spanH := ri.cellRows * ri.cellHeight
	ri.originX = alignOffset(ri.alignment, horizontal, w, spanW)
	ri.originY = alignOffset(ri.alignment, vertical, h, spanH)
}

func imageToRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)
	return dst
}

type axis int

const (
	horizontal axis = iota
	vertical
)

func alignOffset(a Alignment, ax axis, size, span int) int {
	gap := span - size
	if gap <= 0 {
		return 0
	}

	switch ax {
	case horizontal:
		switch a {
		case AlignTopStart, AlignMiddleStart, AlignBottomStart:
			return 0
		case AlignTopEnd, AlignMiddleEnd, AlignBottomEnd:
			return gap
		default:
			return gap / 2
		}
	default:
		switch a {
		case AlignTopStart, AlignTopCenter, AlignTopEnd:
			return 0
		case AlignBottomStart, AlignBottomCenter, AlignBottomEnd:
			return gap
		default:
			return gap / 2
		}
	}
}

// Fragment extracts the RGBA bytes for one grid cell of a rasterized
// image, filling any area the resized image doesn't cover with the
// default color, blended toward the nearest resized pixel at the boundary
// so the fill doesn't look like a hard-edged box.
func (ri *RasterizedImage) Fragment(row, col int) []byte {
	atomic.AddInt64(&globalStats.Fragments, 1)

	out := make([]byte, ri.cellWidth*ri.cellHeight*4)
	fill, _ := colorful.MakeColor(ri.fill)

	baseX := col*ri.cellWidth - ri.originX
	baseY := row*ri.cellHeight - ri.originY
	bounds := ri.resized.Bounds()

	i := 0
	for y := 0; y < ri.cellHeight; y++ {
		sy := baseY + y
		for x := 0; x < ri.cellWidth; x++ {
			sx := baseX + x
			if sx >= bounds.Min.X && sx < bounds.Max.X && sy >= bounds.Min.Y && sy < bounds.Max.Y {
				c := ri.resized.RGBAAt(sx, sy)
				out[i], out[i+1], out[i+2], out[i+3] = c.R, c.G, c.B, c.A
			} else {
				c := edgeBlend(fill, ri.resized, sx, sy, bounds)
				r, g, b := c.RGB255()
				out[i], out[i+1], out[i+2], out[i+3] = r, g, b, ri.fill.A
			}
			i += 4
		}
	}
	return out
}

// edgeBlend softens the fill color toward the clamped nearest edge pixel
// of the resized image, so fragment boundaries don't show a hard seam
// between image content and the default-color gutter.
func edgeBlend(fill colorful.Color, img *image.RGBA, x, y int, bounds image.Rectangle) colorful.Color {
	cx := clamp(x, bounds.Min.X, bounds.Max.X-1)
	cy := clamp(y, bounds.Min.Y, bounds.Max.Y-1)
	if cx < bounds.Min.X || cy < bounds.Min.Y {
		return fill
	}
	edge, ok := colorful.MakeColor(img.RGBAAt(cx, cy))
	if !ok {
		return fill
	}
	return fill.BlendRgb(edge, 0.15)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Link associates a name with an image, retaining it for as long as it
// stays in the bounded name cache. Relinking an existing name, or eviction
// of a name to make room for a new one, releases the superseded reference.
func (p *Pool) Link(name string, img *Image) {
	img.Retain()

	p.mu.Lock()
	if old, ok := p.linked[name]; ok {
		delete(p.linked, name)
		defer old.Release()
	}
	evictedKey, evicted := p.names.Insert(name, struct{}{})
	p.linked[name] = img
	var evictedImg *Image
	if evicted {
		evictedImg = p.linked[evictedKey]
		delete(p.linked, evictedKey)
	}
	p.mu.Unlock()

	if evictedImg != nil {
		evictedImg.Release()
	}
}

// FindByName returns the image linked under name, or nil.
func (p *Pool) FindByName(name string) *Image {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.names.Get(name); !ok {
		return nil
	}
	return p.linked[name]
}

// Unlink removes a name's link, releasing the reference Link took.
func (p *Pool) Unlink(name string) {
	p.mu.Lock()
	img, ok := p.linked[name]
	if ok {
		p.names.Remove(name)
		delete(p.linked, name)
	}
	p.mu.Unlock()
	if ok {
		img.Release()
	}
}

// Clear drops all name links, releasing their references.
func (p *Pool) Clear() {
	p.mu.Lock()
	images := make([]*Image, 0, len(p.linked))
	for _, img := range p.linked {
		images = append(images, img)
	}
	p.names.Clear()
	p.linked = make(map[string]*Image)
	p.mu.Unlock()

	for _, img := range images {
		img.Release()
	}
}
