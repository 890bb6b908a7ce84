package vtcore

import (
	"crypto/sha256"
	"sort"
	"sync"
	"time"
)

// ImageFormat is the pixel encoding of an ImageData payload.
type ImageFormat uint8

const (
	ImageFormatRGBA ImageFormat = iota
	ImageFormatRGB
	ImageFormatPNG
)

// ImageData is a stored image: decoded pixels (always normalized to RGBA)
// plus the bookkeeping ImageManager needs for dedup and eviction.
type ImageData struct {
	ID         uint32
	Width      uint32
	Height     uint32
	Data       []byte
	Hash       [32]byte
	CreatedAt  time.Time
	AccessedAt time.Time
}

// ImagePlacement is one displayed instance of an image: where it sits in
// the grid, what source region of the image it shows, and how it layers
// against text.
type ImagePlacement struct {
	ID      uint32
	ImageID uint32

	Row, Col   int
	Cols, Rows int

	SrcX, SrcY uint32
	SrcW, SrcH uint32

	ZIndex int32

	OffsetX, OffsetY uint32
}

// CellImage is the lightweight per-Cell reference to a placement: which
// image and placement it belongs to, and the normalized UV rectangle of
// that image this particular cell should sample.
type CellImage struct {
	PlacementID uint32
	ImageID     uint32

	U0, V0 float32
	U1, V1 float32

	ZIndex int32
}

// ImageManager owns the lifetime of images and placements: content-hash
// deduplication, a byte budget enforced by evicting the least-recently
// accessed unplaced image, and the handful of placement queries the Kitty
// graphics dispatch needs (by position, z-index, row, column).
type ImageManager struct {
	mu sync.RWMutex

	images     map[uint32]*ImageData
	placements map[uint32]*ImagePlacement
	hashToID   map[[32]byte]uint32

	nextImageID     uint32
	nextPlacementID uint32

	maxMemory  int64
	usedMemory int64

	accumulator            []byte
	accumulatorID          uint32
	accumulatorMore        bool
	accumulatorFormat      KittyFormat
	accumulatorWidth       uint32
	accumulatorHeight      uint32
	accumulatorCompression byte
}

const defaultImageMemoryBudget = 320 * 1024 * 1024

// NewImageManager returns an empty manager with the default 320MB memory
// budget.
func NewImageManager() *ImageManager {
	return &ImageManager{
		images:     make(map[uint32]*ImageData),
		placements: make(map[uint32]*ImagePlacement),
		hashToID:   make(map[[32]byte]uint32),
		maxMemory:  defaultImageMemoryBudget,
	}
}

func (m *ImageManager) SetMaxMemory(bytes int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maxMemory = bytes
}

func (m *ImageManager) putLocked(id, width, height uint32, data []byte) {
	hash := sha256.Sum256(data)
	if old, ok := m.images[id]; ok {
		m.usedMemory -= int64(len(old.Data))
		delete(m.hashToID, old.Hash)
	}

	now := time.Now()
	m.images[id] = &ImageData{
		ID: id, Width: width, Height: height, Data: data,
		Hash: hash, CreatedAt: now, AccessedAt: now,
	}
	m.hashToID[hash] = id
	m.usedMemory += int64(len(data))

	if m.usedMemory > m.maxMemory {
		m.pruneLocked()
	}
}

// Store adds image data, returning the ID of an existing identical image
// (by content hash) if one is already stored, or a freshly allocated ID
// otherwise.
func (m *ImageManager) Store(width, height uint32, data []byte) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	hash := sha256.Sum256(data)
	if existingID, ok := m.hashToID[hash]; ok {
		if img, ok := m.images[existingID]; ok {
			img.AccessedAt = time.Now()
			return existingID
		}
	}

	m.nextImageID++
	id := m.nextImageID
	m.putLocked(id, width, height, data)
	return id
}

// StoreWithID stores image data under a caller-chosen ID, as the Kitty
// protocol's explicit image IDs require; it replaces any existing image
// at that ID.
func (m *ImageManager) StoreWithID(id, width, height uint32, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.putLocked(id, width, height, data)
	if id >= m.nextImageID {
		m.nextImageID = id + 1
	}
}

// Image returns the image for id, touching its access time, or nil if no
// such image exists.
func (m *ImageManager) Image(id uint32) *ImageData {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if img, ok := m.images[id]; ok {
		img.AccessedAt = time.Now()
		return img
	}
	return nil
}

// Place registers a placement, assigning it a fresh ID.
func (m *ImageManager) Place(p *ImagePlacement) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextPlacementID++
	p.ID = m.nextPlacementID
	m.placements[p.ID] = p
	return p.ID
}

func (m *ImageManager) Placement(id uint32) *ImagePlacement {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.placements[id]
}

func (m *ImageManager) Placements() []*ImagePlacement {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*ImagePlacement, 0, len(m.placements))
	for _, p := range m.placements {
		result = append(result, p)
	}
	return result
}

func (m *ImageManager) RemovePlacement(id uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.placements, id)
}

// deletePlacementsWhereLocked removes every placement for which match
// returns true, with
// the caller already holding m.mu.
func (m *ImageManager) deletePlacementsWhereLocked(match func(*ImagePlacement) bool) {
	for id, p := range m.placements {
		if match(p) {
			delete(m.placements, id)
		}
	}
}

func (m *ImageManager) RemovePlacementsForImage(imageID uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletePlacementsWhereLocked(func(p *ImagePlacement) bool { return p.ImageID == imageID })
}

// DeleteImage removes an image and every placement referencing it.
func (m *ImageManager) DeleteImage(id uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if img, ok := m.images[id]; ok {
		m.usedMemory -= int64(len(img.Data))
		delete(m.hashToID, img.Hash)
		delete(m.images, id)
	}
	m.deletePlacementsWhereLocked(func(p *ImagePlacement) bool { return p.ImageID == id })
}

func (m *ImageManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.images = make(map[uint32]*ImageData)
	m.placements = make(map[uint32]*ImagePlacement)
	m.hashToID = make(map[[32]byte]uint32)
	m.usedMemory = 0
	m.accumulator = nil
}

func (m *ImageManager) UsedMemory() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.usedMemory
}

func (m *ImageManager) ImageCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.images)
}

func (m *ImageManager) PlacementCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.placements)
}

// pruneLocked evicts images with no placement, oldest-accessed first,
// until usedMemory is back under budget. Caller holds m.mu.
func (m *ImageManager) pruneLocked() {
	referenced := make(map[uint32]bool, len(m.placements))
	for _, p := range m.placements {
		referenced[p.ImageID] = true
	}

	type candidate struct {
		id   uint32
		at   time.Time
		size int64
	}
	var candidates []candidate
	for id, img := range m.images {
		if !referenced[id] {
			candidates = append(candidates, candidate{id, img.AccessedAt, int64(len(img.Data))})
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].at.Before(candidates[j].at) })

	for _, c := range candidates {
		if m.usedMemory <= m.maxMemory {
			break
		}
		if img, ok := m.images[c.id]; ok {
			delete(m.hashToID, img.Hash)
			delete(m.images, c.id)
			m.usedMemory -= c.size
		}
	}
}

func placementCoversCell(p *ImagePlacement, row, col int) bool {
	return row >= p.Row && row < p.Row+p.Rows && col >= p.Col && col < p.Col+p.Cols
}

// DeletePlacementsByPosition removes placements covering cell (row, col).
func (m *ImageManager) DeletePlacementsByPosition(row, col int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletePlacementsWhereLocked(func(p *ImagePlacement) bool { return placementCoversCell(p, row, col) })
}

func (m *ImageManager) DeletePlacementsByZIndex(z int32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletePlacementsWhereLocked(func(p *ImagePlacement) bool { return p.ZIndex == z })
}

func (m *ImageManager) DeletePlacementsInRow(row int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletePlacementsWhereLocked(func(p *ImagePlacement) bool { return row >= p.Row && row < p.Row+p.Rows })
}

func (m *ImageManager) DeletePlacementsInColumn(col int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletePlacementsWhereLocked(func(p *ImagePlacement) bool { return col >= p.Col && col < p.Col+p.Cols })
}

// DeletePlacementsInRowRange removes placements covering any row from start
// through end inclusive.
func (m *ImageManager) DeletePlacementsInRowRange(start, end int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletePlacementsWhereLocked(func(p *ImagePlacement) bool { return p.Row <= end && p.Row+p.Rows > start })
}

// DeletePlacementsBelow removes placements covering row or any row below it.
func (m *ImageManager) DeletePlacementsBelow(row int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletePlacementsWhereLocked(func(p *ImagePlacement) bool { return p.Row+p.Rows > row })
}

// DeletePlacementsAbove removes placements covering row or any row above it.
func (m *ImageManager) DeletePlacementsAbove(row int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletePlacementsWhereLocked(func(p *ImagePlacement) bool { return p.Row <= row })
}
