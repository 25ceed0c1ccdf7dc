package png

import (
	"bytes"
	"errors"
	"io"

	"pixpal/compression"
	"pixpal/logging"
	"pixpal/palette"
)

// Decoding stage. IHDR comes first, then PLTE/tRNS/bKGD, then consecutive
// IDAT chunks, then IEND.
const (
	dsStart = iota
	dsSeenIHDR
	dsSeenIDAT
	dsAfterIDAT
	dsSeenIEND
)

// decoder is the state threaded through the chunk handlers of one Decode call.
type decoder struct {
	doc   *Document
	stage int
	idat  [][]byte
}

type chunkHandler func(d *decoder, data []byte) error

var chunkHandlers = map[string]chunkHandler{
	chunkIHDR: (*decoder).parseIHDR,
	chunkPLTE: (*decoder).parsePLTE,
	chunkTRNS: (*decoder).parseTRNS,
	chunkBKGD: (*decoder).parseBKGD,
	chunkIDAT: (*decoder).parseIDAT,
	chunkIEND: (*decoder).parseIEND,
}

// Decode parses an indexed PNG held in data. Nothing is returned on error.
// data must not be modified while Decode runs.
func Decode(data []byte, opts Options) (*Document, error) {
	r, err := NewChunkReader(data, opts.CheckCRC)
	if err != nil {
		return nil, err
	}

	d := &decoder{
		doc: &Document{BackgroundIndex: NoBackground},
	}
	for {
		chunk, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		logging.Trace().
			Str("type", chunk.Type).
			Int("length", len(chunk.Data)).
			Uint32("crc", chunk.CRC).
			Msg("found chunk")

		if d.stage == dsStart && chunk.Type != chunkIHDR {
			return nil, formatErrorf(chunk.Type, "first chunk must be IHDR")
		}
		if d.stage == dsSeenIDAT && chunk.Type != chunkIDAT {
			d.stage = dsAfterIDAT
		}

		handler, ok := chunkHandlers[chunk.Type]
		if !ok {
			if chunk.Critical() {
				logging.Warn().Str("type", chunk.Type).Msg("skipping unknown critical chunk")
			} else {
				logging.Debug().Str("type", chunk.Type).Msg("skipping unknown chunk")
			}
			continue
		}
		if err := handler(d, chunk.Data); err != nil {
			return nil, err
		}
	}

	if !r.SawIEND() {
		return nil, formatErrorf("", "missing IEND chunk")
	}
	if err := d.materialize(); err != nil {
		return nil, err
	}
	return d.doc, nil
}

func (d *decoder) parseIHDR(data []byte) error {
	if d.stage != dsStart {
		return formatErrorf(chunkIHDR, "duplicate IHDR")
	}
	h, err := parseHeader(data)
	if err != nil {
		return err
	}
	d.doc.Header = h
	d.stage = dsSeenIHDR
	return nil
}

func (d *decoder) requireIndexedBeforeIDAT(chunk string) error {
	if d.doc.Header.ColorType != ColorIndexed {
		return formatErrorf(chunk, "%s chunk present with color type %d (%s)", chunk, d.doc.Header.ColorType, d.doc.Header.ColorType)
	}
	if d.stage >= dsSeenIDAT {
		return formatErrorf(chunk, "%s chunk after IDAT", chunk)
	}
	return nil
}

func (d *decoder) parsePLTE(data []byte) error {
	if err := d.requireIndexedBeforeIDAT(chunkPLTE); err != nil {
		return err
	}
	if d.doc.Palette != nil {
		return formatErrorf(chunkPLTE, "duplicate PLTE")
	}
	if len(data)%3 != 0 || len(data) == 0 {
		return formatErrorf(chunkPLTE, "length %d is not a non-zero multiple of 3", len(data))
	}
	n := len(data) / 3
	if maxEntries := 1 << d.doc.Header.BitDepth; n > maxEntries {
		return formatErrorf(chunkPLTE, "%d entries exceed the %d allowed at bit depth %d", n, maxEntries, d.doc.Header.BitDepth)
	}

	pal := make(palette.Palette, n)
	for i := range pal {
		pal[i] = palette.RGB(data[3*i], data[3*i+1], data[3*i+2])
	}
	d.doc.Palette = pal
	return nil
}

func (d *decoder) parseTRNS(data []byte) error {
	if err := d.requireIndexedBeforeIDAT(chunkTRNS); err != nil {
		return err
	}
	if d.doc.Palette == nil {
		return formatErrorf(chunkTRNS, "tRNS before PLTE")
	}
	if len(data) > len(d.doc.Palette) {
		return formatErrorf(chunkTRNS, "%d alpha values for a palette of %d entries", len(data), len(d.doc.Palette))
	}
	for i, alpha := range data {
		d.doc.Palette[i][3] = alpha
	}
	return nil
}

func (d *decoder) parseBKGD(data []byte) error {
	if err := d.requireIndexedBeforeIDAT(chunkBKGD); err != nil {
		return err
	}
	if len(data) != 1 {
		return formatErrorf(chunkBKGD, "length is %d, expected 1", len(data))
	}
	if d.doc.Palette == nil {
		return formatErrorf(chunkBKGD, "bKGD before PLTE")
	}
	if int(data[0]) >= len(d.doc.Palette) {
		return formatErrorf(chunkBKGD, "background index %d outside palette of %d entries", data[0], len(d.doc.Palette))
	}
	d.doc.BackgroundIndex = int(data[0])
	return nil
}

func (d *decoder) parseIDAT(data []byte) error {
	if d.stage == dsAfterIDAT {
		return formatErrorf(chunkIDAT, "IDAT chunks are not consecutive")
	}
	if ct := d.doc.Header.ColorType; ct != ColorIndexed {
		return unsupportedf(chunkIDAT, "color type %d (%s), only indexed images are decoded", ct, ct)
	}
	d.idat = append(d.idat, data)
	d.stage = dsSeenIDAT
	return nil
}

func (d *decoder) parseIEND(data []byte) error {
	if len(d.idat) == 0 {
		return formatErrorf(chunkIEND, "no IDAT chunk before IEND")
	}
	d.stage = dsSeenIEND
	return nil
}

// materialize inflates the IDAT stream, undoes the row filters and expands
// packed samples into the pixel plane.
func (d *decoder) materialize() error {
	h := d.doc.Header
	if d.doc.Palette == nil {
		return formatErrorf(chunkPLTE, "indexed image without PLTE")
	}

	raw, err := compression.InflateData(bytes.Join(d.idat, nil), h.InflatedLen())
	if err != nil {
		var lenErr *compression.LengthError
		if errors.As(err, &lenErr) {
			if lenErr.Actual > lenErr.Expected {
				return formatErrorf(chunkIDAT, "decompressed data is longer than the expected %d bytes", lenErr.Expected)
			}
			return formatErrorf(chunkIDAT, "expected %d decompressed bytes, got %d", lenErr.Expected, lenErr.Actual)
		}
		return formatErrorf(chunkIDAT, "corrupt deflate stream: %v", err)
	}

	width, height := int(h.Width), int(h.Height)
	stride := 1 + h.RowBytes()
	bpp := h.BytesPerPixel()
	pixels := make([]byte, width*height*bpp)

	var prev []byte
	for y := 0; y < height; y++ {
		line := raw[y*stride : (y+1)*stride]
		ft, row := FilterType(line[0]), line[1:]
		if ft > FilterPaeth {
			return badFilterf("filter type %d on row %d", ft, y)
		}
		if err := Defilter(ft, row, prev, bpp); err != nil {
			return err
		}
		UnpackRow(pixels[y*width*bpp:(y+1)*width*bpp], row, width, int(h.BitDepth))
		prev = row
	}

	d.doc.Pixels = pixels
	return d.doc.checkPixels()
}
