// Package pixel is the in-memory pixel model shared by the PNG codec and the
// blitting code. A Buffer is either indexed (one palette index per pixel) or
// holds direct channel values in the order named by Channels.
package pixel

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"pixpal/palette"
	"pixpal/utils"
)

var (
	RGB  = []string{"R", "G", "B"}
	RGBA = []string{"R", "G", "B", "A"}
)

type Buffer struct {
	Width, Height int
	// Channel layout of a pixel. For indexed buffers this is the layout of
	// a palette entry, always RGBA.
	Channels      []string
	Indexed       bool
	BytesPerPixel int
	Pix           []byte
	Palette       palette.Palette
}

// New creates a direct-channel buffer. A nil pix allocates a zeroed one;
// otherwise pix is owned by the buffer from now on.
func New(width, height int, channels []string, pix []byte) (*Buffer, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("pixel: no channels")
	}
	b := &Buffer{
		Width:         width,
		Height:        height,
		Channels:      append([]string(nil), channels...),
		BytesPerPixel: len(channels),
		Pix:           pix,
	}
	return b, b.validate()
}

// NewIndexed creates an indexed buffer over pal. A nil pix allocates a zeroed one.
func NewIndexed(width, height int, pal palette.Palette, pix []byte) (*Buffer, error) {
	if len(pal) > palette.MaxEntries {
		return nil, fmt.Errorf("pixel: palette has %d entries, at most %d allowed", len(pal), palette.MaxEntries)
	}
	b := &Buffer{
		Width:         width,
		Height:        height,
		Channels:      RGBA,
		Indexed:       true,
		BytesPerPixel: 1,
		Pix:           pix,
		Palette:       pal.Clone(),
	}
	return b, b.validate()
}

func (b *Buffer) validate() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("pixel: invalid size %dx%d", b.Width, b.Height)
	}
	size := b.Width * b.Height * b.BytesPerPixel
	if b.Pix == nil {
		b.Pix = make([]byte, size)
	}
	if len(b.Pix) != size {
		return fmt.Errorf("pixel: buffer has %d bytes, expected %d (%dx%dx%d)", len(b.Pix), size, b.Width, b.Height, b.BytesPerPixel)
	}
	return nil
}

func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

func (b *Buffer) offset(x, y int) int {
	return (y*b.Width + x) * b.BytesPerPixel
}

// At returns the channel values of the pixel at (x, y), resolved through the
// palette for indexed buffers. The slice aliases the buffer or palette.
func (b *Buffer) At(x, y int) ([]byte, error) {
	if !image.Pt(x, y).In(b.Bounds()) {
		return nil, fmt.Errorf("pixel: (%d, %d) outside %dx%d", x, y, b.Width, b.Height)
	}
	i := b.offset(x, y)
	if !b.Indexed {
		return b.Pix[i : i+b.BytesPerPixel], nil
	}
	index := int(b.Pix[i])
	if index >= len(b.Palette) {
		return nil, fmt.Errorf("pixel: (%d, %d) uses palette index %d, palette has %d entries", x, y, index, len(b.Palette))
	}
	return b.Palette[index][:], nil
}

func (b *Buffer) Clone() *Buffer {
	c := *b
	c.Channels = append([]string(nil), b.Channels...)
	c.Pix = bytes.Clone(b.Pix)
	c.Palette = b.Palette.Clone()
	return &c
}

// checkIndices verifies every index inside r is covered by the palette.
func (b *Buffer) checkIndices(r image.Rectangle) error {
	if !b.Indexed {
		return nil
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if v := int(b.Pix[b.offset(x, y)]); v >= len(b.Palette) {
				return fmt.Errorf("pixel: (%d, %d) uses palette index %d, palette has %d entries", x, y, v, len(b.Palette))
			}
		}
	}
	return nil
}

// ToRGBA renders the buffer into a new RGBA buffer, upscaled by nearest
// neighbor. Zero scales mean 1.
func (b *Buffer) ToRGBA(scaleX, scaleY float64) (*Buffer, error) {
	scaleX, scaleY = utils.OrDefault(scaleX, 1), utils.OrDefault(scaleY, 1)
	if !validScale(scaleX) || !validScale(scaleY) {
		return nil, fmt.Errorf("pixel: invalid scale %gx%g", scaleX, scaleY)
	}
	dst, err := New(scaledSize(b.Width, scaleX), scaledSize(b.Height, scaleY), RGBA, nil)
	if err != nil {
		return nil, err
	}
	if err := Blit(dst, b, BlitOptions{ScaleX: scaleX, ScaleY: scaleY}); err != nil {
		return nil, err
	}
	return dst, nil
}

// NRGBA converts the buffer to a standard library image. Palette and channel
// alpha are straight, not premultiplied.
func (b *Buffer) NRGBA() (*image.NRGBA, error) {
	rgba, err := b.ToRGBA(1, 1)
	if err != nil {
		return nil, err
	}
	return &image.NRGBA{
		Pix:    rgba.Pix,
		Stride: 4 * rgba.Width,
		Rect:   rgba.Bounds(),
	}, nil
}

// FromImage copies any image.Image into a new RGBA buffer.
func FromImage(img image.Image) (*Buffer, error) {
	r := img.Bounds()
	b, err := New(r.Dx(), r.Dy(), RGBA, nil)
	if err != nil {
		return nil, err
	}
	i := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = c.R, c.G, c.B, c.A
			i += 4
		}
	}
	return b, nil
}
