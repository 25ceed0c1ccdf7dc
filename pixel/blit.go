package pixel

import (
	"fmt"
	"image"
	"math"

	"pixpal/compositing"
	"pixpal/mapping"
	"pixpal/utils"
)

type BlitOptions struct {
	// Source region. Empty means all of src.
	SrcRect image.Rectangle
	// Destination region. Empty means all of dst. Drawing starts at Min and
	// is clipped to the region.
	DstRect image.Rectangle

	// Nearest-neighbor scale factors, 1 when zero. Fractions are allowed.
	ScaleX, ScaleY float64

	// Defaults to a mapping chosen by channel names.
	Mapping *mapping.Mapping
	// When set and the mapping has an alpha channel, source pixels are
	// composed over the destination instead of replacing it.
	Compositing *compositing.Policy
}

// validScale rejects NaN along with non-positive and infinite factors.
func validScale(scale float64) bool {
	return scale > 0 && !math.IsInf(scale, 0)
}

func scaledSize(n int, scale float64) int {
	return max(1, int(math.Ceil(float64(n)*scale)))
}

// Blit copies a region of src into dst, row by row. Destination pixel
// (x, y) of the region samples source pixel (floor(x/ScaleX), floor(y/ScaleY)).
// Indexed sources are resolved through their palette before mapping.
func Blit(dst, src *Buffer, opts BlitOptions) error {
	if dst.Indexed {
		return fmt.Errorf("pixel: cannot blit into an indexed buffer, quantize instead")
	}
	scaleX, scaleY := utils.OrDefault(opts.ScaleX, 1), utils.OrDefault(opts.ScaleY, 1)
	if !validScale(scaleX) || !validScale(scaleY) {
		return fmt.Errorf("pixel: invalid scale %gx%g", scaleX, scaleY)
	}

	srcRect := opts.SrcRect
	if srcRect.Empty() {
		srcRect = src.Bounds()
	}
	srcRect = srcRect.Intersect(src.Bounds())
	dstRect := opts.DstRect
	if dstRect.Empty() {
		dstRect = dst.Bounds()
	}
	dstRect = dstRect.Intersect(dst.Bounds())
	if srcRect.Empty() || dstRect.Empty() {
		return nil
	}

	m := opts.Mapping
	if m == nil {
		var err error
		if m, err = mapping.Between(src.Channels, dst.Channels); err != nil {
			return err
		}
	}
	if m.DstChannels() != dst.BytesPerPixel {
		return fmt.Errorf("pixel: mapping produces %d channels, destination has %d", m.DstChannels(), dst.BytesPerPixel)
	}
	srcChannels := src.BytesPerPixel
	if src.Indexed {
		srcChannels = len(src.Channels)
	}
	if m.SrcChannels() > srcChannels {
		return fmt.Errorf("pixel: mapping reads %d channels, source has %d", m.SrcChannels(), srcChannels)
	}
	if err := src.checkIndices(srcRect); err != nil {
		return err
	}

	width := min(dstRect.Dx(), scaledSize(srcRect.Dx(), scaleX))
	height := min(dstRect.Dy(), scaledSize(srcRect.Dy(), scaleY))

	for yOffset := 0; yOffset < height; yOffset++ {
		sy := srcRect.Min.Y + min(int(float64(yOffset)/scaleY), srcRect.Dy()-1)
		for xOffset := 0; xOffset < width; xOffset++ {
			sx := srcRect.Min.X + min(int(float64(xOffset)/scaleX), srcRect.Dx()-1)

			si := src.offset(sx, sy)
			var px []byte
			if src.Indexed {
				px = src.Palette[src.Pix[si]][:]
			} else {
				px = src.Pix[si : si+src.BytesPerPixel]
			}

			di := dst.offset(dstRect.Min.X+xOffset, dstRect.Min.Y+yOffset)
			m.Compose(dst.Pix[di:di+dst.BytesPerPixel], px, opts.Compositing)
		}
	}
	return nil
}
