package vtcore

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"strconv"
	"strings"
)

// KittyAction is the 'a=' control key: what a Kitty graphics command asks
// the terminal to do.
type KittyAction byte

const (
	KittyActionTransmit        KittyAction = 't'
	KittyActionTransmitDisplay KittyAction = 'T'
	KittyActionQuery           KittyAction = 'q'
	KittyActionDisplay         KittyAction = 'p'
	KittyActionDelete          KittyAction = 'd'
	KittyActionFrame           KittyAction = 'f'
	KittyActionAnimate         KittyAction = 'a'
	KittyActionCompose         KittyAction = 'c'
)

// KittyTransmission is the 't=' control key: where the image bytes live.
type KittyTransmission byte

const (
	KittyTransmitDirect    KittyTransmission = 'd'
	KittyTransmitFile      KittyTransmission = 'f'
	KittyTransmitTempFile  KittyTransmission = 't'
	KittyTransmitSharedMem KittyTransmission = 's'
)

// KittyFormat is the 'f=' control key: the pixel encoding of the payload.
type KittyFormat uint32

const (
	KittyFormatRGB  KittyFormat = 24
	KittyFormatRGBA KittyFormat = 32
	KittyFormatPNG  KittyFormat = 100
)

// KittyDelete is the 'd=' control key: the selection rule for a delete
// command.
type KittyDelete byte

const (
	KittyDeleteAll          KittyDelete = 'a'
	KittyDeleteAllWithData  KittyDelete = 'A'
	KittyDeleteByID         KittyDelete = 'i'
	KittyDeleteByIDWithData KittyDelete = 'I'
	KittyDeleteByNumber     KittyDelete = 'n'
	KittyDeleteByNumData    KittyDelete = 'N'
	KittyDeleteAtCursor     KittyDelete = 'c'
	KittyDeleteAtCursorData KittyDelete = 'C'
	KittyDeleteAtPos        KittyDelete = 'p'
	KittyDeleteAtPosData    KittyDelete = 'P'
	KittyDeleteByCol        KittyDelete = 'x'
	KittyDeleteByColData    KittyDelete = 'X'
	KittyDeleteByRow        KittyDelete = 'y'
	KittyDeleteByRowData    KittyDelete = 'Y'
	KittyDeleteByZIndex     KittyDelete = 'z'
	KittyDeleteByZIndexData KittyDelete = 'Z'
)

// KittyCommand is a parsed Kitty graphics protocol APC payload (ESC _ G
// ... ESC \).
type KittyCommand struct {
	Action       KittyAction
	Transmission KittyTransmission
	Format       KittyFormat
	Compression  byte

	ImageID     uint32
	ImageNumber uint32
	PlacementID uint32

	Width  uint32
	Height uint32
	Size   uint32
	Offset uint32
	More   bool

	SrcX, SrcY      uint32
	SrcW, SrcH      uint32
	Cols, Rows      uint32
	CellOffsetX     uint32
	CellOffsetY     uint32
	ZIndex          int32
	DoNotMoveCursor bool

	Delete KittyDelete

	Quiet uint32

	Payload []byte
}

// kittyKeySetters dispatches each single-letter control key to the field
// it fills in, so ParseKittyGraphics's loop doesn't need a 24-case switch.
var kittyKeySetters = map[byte]func(cmd *KittyCommand, value []byte){
	'a': func(c *KittyCommand, v []byte) {
		if len(v) > 0 {
			c.Action = KittyAction(v[0])
		}
	},
	't': func(c *KittyCommand, v []byte) {
		if len(v) > 0 {
			c.Transmission = KittyTransmission(v[0])
		}
	},
	'f': func(c *KittyCommand, v []byte) { c.Format = KittyFormat(parseUint32(v)) },
	'o': func(c *KittyCommand, v []byte) {
		if len(v) > 0 {
			c.Compression = v[0]
		}
	},
	'i': func(c *KittyCommand, v []byte) { c.ImageID = parseUint32(v) },
	'I': func(c *KittyCommand, v []byte) { c.ImageNumber = parseUint32(v) },
	'p': func(c *KittyCommand, v []byte) { c.PlacementID = parseUint32(v) },
	's': func(c *KittyCommand, v []byte) { c.Width = parseUint32(v) },
	'v': func(c *KittyCommand, v []byte) { c.Height = parseUint32(v) },
	'S': func(c *KittyCommand, v []byte) { c.Size = parseUint32(v) },
	'O': func(c *KittyCommand, v []byte) { c.Offset = parseUint32(v) },
	'm': func(c *KittyCommand, v []byte) { c.More = parseUint32(v) == 1 },
	'x': func(c *KittyCommand, v []byte) { c.SrcX = parseUint32(v) },
	'y': func(c *KittyCommand, v []byte) { c.SrcY = parseUint32(v) },
	'w': func(c *KittyCommand, v []byte) { c.SrcW = parseUint32(v) },
	'h': func(c *KittyCommand, v []byte) { c.SrcH = parseUint32(v) },
	'c': func(c *KittyCommand, v []byte) { c.Cols = parseUint32(v) },
	'r': func(c *KittyCommand, v []byte) { c.Rows = parseUint32(v) },
	'X': func(c *KittyCommand, v []byte) { c.CellOffsetX = parseUint32(v) },
	'Y': func(c *KittyCommand, v []byte) { c.CellOffsetY = parseUint32(v) },
	'z': func(c *KittyCommand, v []byte) { c.ZIndex = parseInt32(v) },
	'C': func(c *KittyCommand, v []byte) { c.DoNotMoveCursor = parseUint32(v) == 1 },
	'd': func(c *KittyCommand, v []byte) {
		if len(v) > 0 {
			c.Delete = KittyDelete(v[0])
		}
	},
	'q': func(c *KittyCommand, v []byte) { c.Quiet = parseUint32(v) },
}

// ParseKittyGraphics parses the content of a Kitty graphics APC sequence
// (everything between ESC _ G and the terminating ST, minus the leading
// 'G'). Unrecognized control keys are ignored rather than rejected, since
// the protocol is meant to grow new keys terminals can skip.
func ParseKittyGraphics(data []byte) (*KittyCommand, error) {
	cmd := &KittyCommand{
		Action:       KittyActionTransmitDisplay,
		Transmission: KittyTransmitDirect,
		Format:       KittyFormatRGBA,
	}

	data = bytes.TrimPrefix(data, []byte("G"))

	controlData, payload, _ := bytes.Cut(data, []byte(";"))
	for _, pair := range bytes.Split(controlData, []byte(",")) {
		key, value, ok := bytes.Cut(pair, []byte("="))
		if !ok || len(key) == 0 {
			continue
		}
		if set, known := kittyKeySetters[key[0]]; known {
			set(cmd, value)
		}
	}

	if len(payload) > 0 {
		decoded, err := base64.StdEncoding.DecodeString(string(payload))
		if err != nil {
			decoded, err = base64.RawStdEncoding.DecodeString(string(payload))
			if err != nil {
				return nil, fmt.Errorf("kitty: decode base64 payload: %w", err)
			}
		}
		cmd.Payload = decoded
	}

	return cmd, nil
}

// DecodeImageData inflates (if compressed) and decodes cmd's payload into
// raw RGBA pixels, returning pixel width and height alongside the data.
func (cmd *KittyCommand) DecodeImageData() ([]byte, uint32, uint32, error) {
	data := cmd.Payload
	if cmd.Compression == 'z' && len(data) > 0 {
		inflated, err := inflateZlib(data)
		if err != nil {
			return nil, 0, 0, err
		}
		data = inflated
	}

	switch cmd.Format {
	case KittyFormatPNG:
		return decodePNG(data)
	case KittyFormatRGB:
		return decodeRGB(data, cmd.Width, cmd.Height)
	case KittyFormatRGBA:
		return decodeRGBA(data, cmd.Width, cmd.Height)
	default:
		return nil, 0, 0, fmt.Errorf("kitty: unsupported format %d", cmd.Format)
	}
}

func inflateZlib(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("kitty: open zlib stream: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("kitty: inflate zlib stream: %w", err)
	}
	return out, nil
}

func decodeRGB(data []byte, width, height uint32) ([]byte, uint32, uint32, error) {
	if width == 0 || height == 0 {
		return nil, 0, 0, fmt.Errorf("kitty: RGB format requires width and height")
	}
	expected := int(width * height * 3)
	if len(data) < expected {
		return nil, 0, 0, fmt.Errorf("kitty: insufficient RGB data: got %d, want %d", len(data), expected)
	}
	rgba := make([]byte, width*height*4)
	for i := uint32(0); i < width*height; i++ {
		rgba[i*4+0] = data[i*3+0]
		rgba[i*4+1] = data[i*3+1]
		rgba[i*4+2] = data[i*3+2]
		rgba[i*4+3] = 255
	}
	return rgba, width, height, nil
}

func decodeRGBA(data []byte, width, height uint32) ([]byte, uint32, uint32, error) {
	if width == 0 || height == 0 {
		return nil, 0, 0, fmt.Errorf("kitty: RGBA format requires width and height")
	}
	expected := int(width * height * 4)
	if len(data) < expected {
		return nil, 0, 0, fmt.Errorf("kitty: insufficient RGBA data: got %d, want %d", len(data), expected)
	}
	return data[:expected], width, height, nil
}

// decodePNG decodes a PNG (falling back to the generic image package for
// other container formats some clients mislabel as PNG) into raw RGBA.
func decodePNG(data []byte) ([]byte, uint32, uint32, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		img, _, err = image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, 0, 0, fmt.Errorf("kitty: decode image: %w", err)
		}
	}

	bounds := img.Bounds()
	width, height := uint32(bounds.Dx()), uint32(bounds.Dy())
	rgba := make([]byte, width*height*4)
	for y := 0; y < int(height); y++ {
		for x := 0; x < int(width); x++ {
			r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			offset := (uint32(y)*width + uint32(x)) * 4
			rgba[offset+0] = uint8(r >> 8)
			rgba[offset+1] = uint8(g >> 8)
			rgba[offset+2] = uint8(b >> 8)
			rgba[offset+3] = uint8(a >> 8)
		}
	}
	return rgba, width, height, nil
}

func parseUint32(b []byte) uint32 {
	n, _ := strconv.ParseUint(string(b), 10, 32)
	return uint32(n)
}

func parseInt32(b []byte) int32 {
	n, _ := strconv.ParseInt(string(b), 10, 32)
	return int32(n)
}

// FormatKittyResponse builds a Kitty graphics protocol response APC: an OK
// acknowledgement, or an error message in isError's place.
func FormatKittyResponse(imageID uint32, message string, isError bool) string {
	var sb strings.Builder
	sb.WriteString("\x1b_G")
	if imageID > 0 {
		fmt.Fprintf(&sb, "i=%d", imageID)
	}
	sb.WriteByte(';')
	if isError {
		sb.WriteString(message)
	} else {
		sb.WriteString("OK")
	}
	sb.WriteString("\x1b\\")
	return sb.String()
}
