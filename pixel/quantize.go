package pixel

import (
	"fmt"
	"slices"

	"pixpal/mapping"
)

// Quantize fills the indexed buffer b from src, picking for each pixel the
// nearest palette entry (squared Euclidean distance over RGBA, ties to the
// lowest index). Sizes must match.
func (b *Buffer) Quantize(src *Buffer) error {
	if !b.Indexed {
		return fmt.Errorf("pixel: quantize target is not indexed")
	}
	if len(b.Palette) == 0 {
		return fmt.Errorf("pixel: quantize target has an empty palette")
	}
	if b.Width != src.Width || b.Height != src.Height {
		return fmt.Errorf("pixel: size mismatch, %dx%d vs %dx%d", b.Width, b.Height, src.Width, src.Height)
	}

	rgba := src
	if src.Indexed || !slices.Equal(src.Channels, RGBA) {
		m, err := mapping.Between(src.Channels, RGBA)
		if err != nil {
			return err
		}
		if rgba, err = New(src.Width, src.Height, RGBA, nil); err != nil {
			return err
		}
		if err := Blit(rgba, src, BlitOptions{Mapping: m}); err != nil {
			return err
		}
	}

	// Images rarely use many distinct colors; remember what was matched.
	matched := make(map[[4]byte]byte)
	for i := range b.Pix {
		var key [4]byte
		copy(key[:], rgba.Pix[4*i:4*i+4])
		index, ok := matched[key]
		if !ok {
			index = byte(b.Palette.Closest(key[:]))
			matched[key] = index
		}
		b.Pix[i] = index
	}
	return nil
}
