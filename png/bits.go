package png

var bitMask = [9]byte{0, 0b1, 0b11, 0b111, 0b1111, 0b11111, 0b111111, 0b1111111, 0b11111111}

// ExtractSample reads a bitDepth-wide sample starting bitOffset bits from the
// most significant bit of b.
func ExtractSample(b byte, bitOffset, bitDepth int) byte {
	return (b >> (8 - bitOffset - bitDepth)) & bitMask[bitDepth]
}

// UnpackRow expands width packed samples of row into one byte each in dst.
// Only depths 1, 2, 4 and 8 are handled.
func UnpackRow(dst, row []byte, width, bitDepth int) {
	if bitDepth == 8 {
		copy(dst[:width], row)
		return
	}
	for x := 0; x < width; x++ {
		bit := x * bitDepth
		dst[x] = ExtractSample(row[bit/8], bit%8, bitDepth)
	}
}

// PackRow is the inverse of UnpackRow; the final byte is zero-padded.
func PackRow(dst, samples []byte, bitDepth int) {
	if bitDepth == 8 {
		copy(dst, samples)
		return
	}
	clear(dst[:(len(samples)*bitDepth+7)/8])
	for x, s := range samples {
		bit := x * bitDepth
		dst[bit/8] |= (s & bitMask[bitDepth]) << (8 - bit%8 - bitDepth)
	}
}
