package png

import "encoding/binary"

type ColorType uint8

const (
	ColorGrayscale      ColorType = 0
	ColorRGB            ColorType = 2
	ColorIndexed        ColorType = 3
	ColorGrayscaleAlpha ColorType = 4
	ColorRGBA           ColorType = 6
)

func (ct ColorType) String() string {
	switch ct {
	case ColorGrayscale:
		return "grayscale"
	case ColorRGB:
		return "rgb"
	case ColorIndexed:
		return "indexed"
	case ColorGrayscaleAlpha:
		return "grayscale+alpha"
	case ColorRGBA:
		return "rgba"
	}
	return "invalid"
}

// Channels is the number of samples per pixel, or 0 for an invalid color type.
func (ct ColorType) Channels() int {
	switch ct {
	case ColorGrayscale, ColorIndexed:
		return 1
	case ColorGrayscaleAlpha:
		return 2
	case ColorRGB:
		return 3
	case ColorRGBA:
		return 4
	}
	return 0
}

// Allowed bit depths per color type.
var allowedDepths = map[ColorType][]uint8{
	ColorGrayscale:      {1, 2, 4, 8, 16},
	ColorRGB:            {8, 16},
	ColorIndexed:        {1, 2, 4, 8},
	ColorGrayscaleAlpha: {8, 16},
	ColorRGBA:           {8, 16},
}

const ihdrLength = 13

type Header struct {
	Width             uint32
	Height            uint32
	BitDepth          uint8
	ColorType         ColorType
	CompressionMethod uint8
	FilterMethod      uint8
	InterlaceMethod   uint8
}

func (h Header) BitsPerPixel() int {
	return int(h.BitDepth) * h.ColorType.Channels()
}

// BytesPerPixel is ceil(bitsPerPixel/8) with a floor of 1. It is both the
// filter stride and the size of one sample in the decoded pixel plane.
func (h Header) BytesPerPixel() int {
	return max(1, (h.BitsPerPixel()+7)/8)
}

// RowBytes is the packed length of one scanline, without its filter byte.
func (h Header) RowBytes() int {
	return (int(h.Width)*h.BitsPerPixel() + 7) / 8
}

// InflatedLen is the exact size of the decompressed IDAT stream.
func (h Header) InflatedLen() int {
	return int(h.Height) * (1 + h.RowBytes())
}

func (h Header) validate() error {
	if h.Width == 0 || h.Height == 0 {
		return formatErrorf("IHDR", "image size must be non-zero, got %dx%d", h.Width, h.Height)
	}
	if h.Width > 1<<31-1 || h.Height > 1<<31-1 {
		return formatErrorf("IHDR", "image size %dx%d exceeds 2^31-1", h.Width, h.Height)
	}
	depths, ok := allowedDepths[h.ColorType]
	if !ok {
		return formatErrorf("IHDR", "invalid color type %d, expected one of 0, 2, 3, 4, 6", h.ColorType)
	}
	validDepth := false
	for _, d := range depths {
		if d == h.BitDepth {
			validDepth = true
		}
	}
	if !validDepth {
		return formatErrorf("IHDR", "bit depth %d is not allowed for color type %d (allowed: %v)", h.BitDepth, h.ColorType, depths)
	}
	if h.CompressionMethod != 0 {
		return formatErrorf("IHDR", "invalid compression method %d, expected 0", h.CompressionMethod)
	}
	if h.FilterMethod != 0 {
		return formatErrorf("IHDR", "invalid filter method %d, expected 0", h.FilterMethod)
	}
	switch h.InterlaceMethod {
	case 0:
	case 1:
		return unsupportedf("IHDR", "interlace method 1 (Adam7)")
	default:
		return formatErrorf("IHDR", "invalid interlace method %d, expected 0 or 1", h.InterlaceMethod)
	}
	return nil
}

func parseHeader(data []byte) (Header, error) {
	if len(data) != ihdrLength {
		return Header{}, formatErrorf("IHDR", "length is %d, expected %d", len(data), ihdrLength)
	}
	h := Header{
		Width:             binary.BigEndian.Uint32(data[0:4]),
		Height:            binary.BigEndian.Uint32(data[4:8]),
		BitDepth:          data[8],
		ColorType:         ColorType(data[9]),
		CompressionMethod: data[10],
		FilterMethod:      data[11],
		InterlaceMethod:   data[12],
	}
	return h, h.validate()
}

func (h Header) marshal() []byte {
	data := make([]byte, ihdrLength)
	binary.BigEndian.PutUint32(data[0:4], h.Width)
	binary.BigEndian.PutUint32(data[4:8], h.Height)
	data[8] = h.BitDepth
	data[9] = byte(h.ColorType)
	data[10] = h.CompressionMethod
	data[11] = h.FilterMethod
	data[12] = h.InterlaceMethod
	return data
}
