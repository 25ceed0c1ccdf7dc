package png

import (
	"pixpal/compression"
	"pixpal/palette"
)

// NoBackground marks a document without a bKGD chunk.
const NoBackground = -1

// Palette entries with alpha below this force a tRNS chunk on encode.
const transparencyThreshold = 128

// Document is a decoded (or to-be-encoded) indexed PNG. Pixels holds one
// palette index per pixel in row-major order.
type Document struct {
	Header          Header
	Palette         palette.Palette
	BackgroundIndex int
	Pixels          []byte
}

type Options struct {
	// Verify the CRC-32 of every chunk while decoding.
	CheckCRC bool

	// Encoding only.
	Compression compression.Level
	Filter      FilterType
}

// NewIndexed builds an 8-bit indexed document ready for Encode.
func NewIndexed(width, height int, pal palette.Palette, pixels []byte) (*Document, error) {
	if width <= 0 || height <= 0 {
		return nil, formatErrorf(chunkIHDR, "image size must be non-zero, got %dx%d", width, height)
	}
	if len(pixels) != width*height {
		return nil, formatErrorf(chunkIDAT, "pixel buffer has %d bytes, expected %d (%dx%d)", len(pixels), width*height, width, height)
	}
	if len(pal) == 0 || len(pal) > palette.MaxEntries {
		return nil, formatErrorf(chunkPLTE, "palette must have 1 to %d entries, got %d", palette.MaxEntries, len(pal))
	}
	return &Document{
		Header: Header{
			Width:     uint32(width),
			Height:    uint32(height),
			BitDepth:  8,
			ColorType: ColorIndexed,
		},
		Palette:         pal.Clone(),
		BackgroundIndex: NoBackground,
		Pixels:          pixels,
	}, nil
}

func (doc *Document) Width() int  { return int(doc.Header.Width) }
func (doc *Document) Height() int { return int(doc.Header.Height) }

// Background returns the background color, if the document has one.
func (doc *Document) Background() (palette.Color, bool) {
	if doc.BackgroundIndex < 0 || doc.BackgroundIndex >= len(doc.Palette) {
		return palette.Color{}, false
	}
	return doc.Palette[doc.BackgroundIndex], true
}

func (doc *Document) checkPixels() error {
	for i, v := range doc.Pixels {
		if int(v) >= len(doc.Palette) {
			return formatErrorf(chunkIDAT, "pixel %d (x=%d, y=%d) uses palette index %d, palette has %d entries",
				i, i%doc.Width(), i/doc.Width(), v, len(doc.Palette))
		}
	}
	return nil
}
