package pixel

import (
	"image"
	"image/color"
	"math"
	"testing"

	"pixpal/compositing"
	"pixpal/mapping"
	"pixpal/palette"
	"pixpal/png"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var redGreen = palette.Palette{palette.RGB(255, 0, 0), palette.RGB(0, 255, 0)}

func TestNewValidatesLength(t *testing.T) {
	_, err := New(2, 2, RGBA, make([]byte, 15))
	assert.ErrorContains(t, err, "expected 16")
	_, err = NewIndexed(2, 2, redGreen, make([]byte, 5))
	assert.Error(t, err)
	_, err = New(0, 2, RGB, nil)
	assert.Error(t, err)
	_, err = New(1, 1, nil, nil)
	assert.Error(t, err)

	b, err := New(3, 2, RGB, nil)
	require.NoError(t, err)
	assert.Len(t, b.Pix, 18)
	assert.Equal(t, 3, b.BytesPerPixel)

	ib, err := NewIndexed(3, 2, redGreen, nil)
	require.NoError(t, err)
	assert.Len(t, ib.Pix, 6)
	assert.Equal(t, 1, ib.BytesPerPixel)
}

func TestBlitIndexedUpscale(t *testing.T) {
	src, err := NewIndexed(2, 1, redGreen, []byte{0, 1})
	require.NoError(t, err)
	dst, err := New(4, 1, RGBA, nil)
	require.NoError(t, err)

	require.NoError(t, Blit(dst, src, BlitOptions{ScaleX: 2, ScaleY: 1}))
	assert.Equal(t, []byte{
		255, 0, 0, 255,
		255, 0, 0, 255,
		0, 255, 0, 255,
		0, 255, 0, 255,
	}, dst.Pix)
}

func TestBlitFractionalScale(t *testing.T) {
	src, err := New(3, 1, []string{"Y"}, []byte{10, 20, 30})
	require.NoError(t, err)
	dst, err := New(4, 1, []string{"Y"}, nil)
	require.NoError(t, err)

	// x/1.5 -> 0, 0, 1, 2
	require.NoError(t, Blit(dst, src, BlitOptions{ScaleX: 1.5}))
	assert.Equal(t, []byte{10, 10, 20, 30}, dst.Pix)
}

func TestBlitRegions(t *testing.T) {
	src, err := New(3, 3, []string{"Y"}, []byte{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})
	require.NoError(t, err)
	dst, err := New(4, 4, RGBA, nil)
	require.NoError(t, err)

	err = Blit(dst, src, BlitOptions{
		SrcRect: image.Rect(1, 1, 3, 3),
		DstRect: image.Rect(2, 1, 4, 4),
		Mapping: mapping.GrayCompatibleToRGBA,
	})
	require.NoError(t, err)

	at := func(x, y int) []byte {
		px, err := dst.At(x, y)
		require.NoError(t, err)
		return px
	}
	assert.Equal(t, []byte{5, 5, 5, 255}, at(2, 1))
	assert.Equal(t, []byte{6, 6, 6, 255}, at(3, 1))
	assert.Equal(t, []byte{8, 8, 8, 255}, at(2, 2))
	assert.Equal(t, []byte{9, 9, 9, 255}, at(3, 2))
	assert.Equal(t, []byte{0, 0, 0, 0}, at(1, 1), "outside the destination region")
	assert.Equal(t, []byte{0, 0, 0, 0}, at(2, 3), "source exhausted")
}

func TestBlitCompose(t *testing.T) {
	src, err := New(1, 1, RGBA, []byte{255, 0, 0, 128})
	require.NoError(t, err)
	dst, err := New(1, 1, RGBA, []byte{0, 0, 255, 255})
	require.NoError(t, err)

	require.NoError(t, Blit(dst, src, BlitOptions{Compositing: compositing.Normal}))
	assert.Equal(t, []byte{128, 0, 127, 255}, dst.Pix)
}

func TestBlitErrors(t *testing.T) {
	src, err := NewIndexed(1, 1, redGreen, []byte{5})
	require.NoError(t, err)
	dst, err := New(1, 1, RGBA, nil)
	require.NoError(t, err)
	assert.ErrorContains(t, Blit(dst, src, BlitOptions{}), "palette index 5")

	assert.Error(t, Blit(src, dst, BlitOptions{}), "indexed destination")
	assert.Error(t, Blit(dst, dst, BlitOptions{ScaleX: -1}))
	for _, scale := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.ErrorContains(t, Blit(dst, dst, BlitOptions{ScaleX: scale}), "invalid scale")
		assert.ErrorContains(t, Blit(dst, dst, BlitOptions{ScaleY: scale}), "invalid scale")

		rgba, err := src.ToRGBA(scale, 1)
		assert.Nil(t, rgba)
		assert.ErrorContains(t, err, "invalid scale")
	}

	gray, err := New(1, 1, []string{"Y", "A"}, nil)
	require.NoError(t, err)
	assert.ErrorContains(t, Blit(dst, gray, BlitOptions{Mapping: mapping.RGBCompatibleToRGBA}), "reads 3 channels")
	assert.ErrorContains(t, Blit(gray, dst, BlitOptions{Mapping: mapping.RGBCompatibleToRGBA}), "produces 4 channels")
}

func TestToRGBA(t *testing.T) {
	pal := palette.Palette{palette.RGBA(1, 2, 3, 4), palette.RGB(5, 6, 7)}
	b, err := NewIndexed(2, 1, pal, []byte{1, 0})
	require.NoError(t, err)

	rgba, err := b.ToRGBA(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, rgba.Width)
	assert.Equal(t, 2, rgba.Height)
	assert.Equal(t, []byte{
		5, 6, 7, 255, 1, 2, 3, 4,
		5, 6, 7, 255, 1, 2, 3, 4,
	}, rgba.Pix)

	rgb, err := New(1, 1, RGB, []byte{9, 8, 7})
	require.NoError(t, err)
	rgba, err = rgb.ToRGBA(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 8, 7, 255}, rgba.Pix)

	img, err := b.NRGBA()
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{1, 2, 3, 4}, img.At(1, 0))
}

func TestQuantize(t *testing.T) {
	src, err := New(3, 1, RGB, []byte{
		250, 10, 10,
		0, 200, 30,
		128, 128, 0,
	})
	require.NoError(t, err)
	dst, err := NewIndexed(3, 1, redGreen, nil)
	require.NoError(t, err)

	require.NoError(t, dst.Quantize(src))
	// (128,128,0) is equally far from red and green; lowest index wins.
	assert.Equal(t, []byte{0, 1, 0}, dst.Pix)

	small, err := NewIndexed(1, 1, redGreen, nil)
	require.NoError(t, err)
	assert.Error(t, small.Quantize(src))

	rgbBuf, err := New(3, 1, RGB, nil)
	require.NoError(t, err)
	assert.Error(t, rgbBuf.Quantize(src))
}

func TestFromImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	img.SetNRGBA(5, 5, color.NRGBA{1, 2, 3, 4})
	img.SetNRGBA(6, 5, color.NRGBA{5, 6, 7, 255})

	b, err := FromImage(img)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 255}, b.Pix)
}

func TestPNGRoundTrip(t *testing.T) {
	b, err := NewIndexed(2, 2, redGreen, []byte{0, 1, 1, 0})
	require.NoError(t, err)

	data, err := b.EncodePNG(png.Options{Filter: png.FilterPaeth})
	require.NoError(t, err)

	decoded, err := DecodePNG(data, png.Options{CheckCRC: true})
	require.NoError(t, err)
	assert.Equal(t, b.Pix, decoded.Pix)
	assert.Equal(t, b.Palette, decoded.Palette)
	assert.True(t, decoded.Indexed)

	rgb, err := New(1, 1, RGB, nil)
	require.NoError(t, err)
	_, err = rgb.EncodePNG(png.Options{})
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	b, err := NewIndexed(1, 1, redGreen, []byte{1})
	require.NoError(t, err)
	c := b.Clone()
	c.Pix[0] = 0
	c.Palette[1] = palette.RGB(1, 1, 1)
	assert.Equal(t, byte(1), b.Pix[0])
	assert.Equal(t, palette.RGB(0, 255, 0), b.Palette[1])
}
