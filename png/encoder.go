package png

import (
	"pixpal/compression"
	"pixpal/palette"
)

// Encode serializes an 8-bit indexed document. Every row uses opts.Filter,
// FilterNone by default. The output is deterministic for a given document
// and options.
func (doc *Document) Encode(opts Options) ([]byte, error) {
	h := doc.Header
	if h.ColorType != ColorIndexed || h.BitDepth != 8 {
		return nil, unsupportedf(chunkIHDR, "encoding %s images at bit depth %d, only 8-bit indexed is supported", h.ColorType, h.BitDepth)
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	if len(doc.Palette) == 0 || len(doc.Palette) > palette.MaxEntries {
		return nil, formatErrorf(chunkPLTE, "palette must have 1 to %d entries, got %d", palette.MaxEntries, len(doc.Palette))
	}
	if expected := int(h.Width) * int(h.Height); len(doc.Pixels) != expected {
		return nil, formatErrorf(chunkIDAT, "pixel buffer has %d bytes, expected %d", len(doc.Pixels), expected)
	}
	if err := doc.checkPixels(); err != nil {
		return nil, err
	}

	idat, err := doc.encodeIDAT(opts)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(Magic)+len(idat)+4*len(doc.Palette)+64)
	out = append(out, Magic...)
	out = AppendChunk(out, chunkIHDR, h.marshal())
	out = AppendChunk(out, chunkPLTE, doc.plteData())
	if doc.Palette.HasAlphaBelow(transparencyThreshold) {
		out = AppendChunk(out, chunkTRNS, doc.trnsData())
	}
	if doc.BackgroundIndex != NoBackground {
		if doc.BackgroundIndex < 0 || doc.BackgroundIndex >= len(doc.Palette) {
			return nil, formatErrorf(chunkBKGD, "background index %d outside palette of %d entries", doc.BackgroundIndex, len(doc.Palette))
		}
		out = AppendChunk(out, chunkBKGD, []byte{byte(doc.BackgroundIndex)})
	}
	out = AppendChunk(out, chunkIDAT, idat)
	out = append(out, iendTrailer...)
	return out, nil
}

func (doc *Document) plteData() []byte {
	data := make([]byte, 0, 3*len(doc.Palette))
	for _, c := range doc.Palette {
		data = append(data, c[0], c[1], c[2])
	}
	return data
}

// trnsData lists alpha values up to the last non-opaque entry.
func (doc *Document) trnsData() []byte {
	last := -1
	for i, c := range doc.Palette {
		if !c.Opaque() {
			last = i
		}
	}
	data := make([]byte, last+1)
	for i := range data {
		data[i] = doc.Palette[i][3]
	}
	return data
}

func (doc *Document) encodeIDAT(opts Options) ([]byte, error) {
	h := doc.Header
	width, height := int(h.Width), int(h.Height)
	stride := 1 + h.RowBytes()
	raw := make([]byte, h.InflatedLen())

	var prev []byte
	for y := 0; y < height; y++ {
		row := doc.Pixels[y*width : (y+1)*width]
		line := raw[y*stride : (y+1)*stride]
		line[0] = byte(opts.Filter)
		if err := Filter(opts.Filter, line[1:], row, prev, h.BytesPerPixel()); err != nil {
			return nil, err
		}
		prev = row
	}

	compressed, err := compression.DeflateData(raw, opts.Compression)
	if err != nil {
		return nil, err
	}
	return compressed, nil
}
