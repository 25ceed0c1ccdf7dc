package compression

import (
	"bytes"
	"io"

	"pixpal/oops"

	"github.com/klauspost/compress/zlib"
)

// Level trades compression speed for size. Positive values are numeric zlib
// levels (1-9).
type Level int

const (
	DefaultCompression Level = 0
	NoCompression      Level = -1
	BestSpeed          Level = -2
	BestCompression    Level = -3
)

func (l Level) zlib() int {
	switch {
	case l == DefaultCompression:
		return zlib.DefaultCompression
	case l == NoCompression:
		return zlib.NoCompression
	case l == BestSpeed:
		return zlib.BestSpeed
	case l == BestCompression:
		return zlib.BestCompression
	default:
		return int(l)
	}
}

// LengthError reports an inflated stream whose size differs from what the caller expected.
type LengthError struct {
	Expected int
	Actual   int // Expected+1 means "at least one byte too many"
}

func (e *LengthError) Error() string {
	if e.Actual > e.Expected {
		return "inflated data is longer than expected"
	}
	return "inflated data is shorter than expected"
}

// Headers can claim any size; don't trust them for the initial allocation.
const maxPrealloc = 16 << 20

// InflateData decompresses a zlib stream that must expand to exactly expectedLen bytes.
func InflateData(compressedData []byte, expectedLen int) ([]byte, error) {
	reader := bytes.NewReader(compressedData)

	zlibReader, err := zlib.NewReader(reader)
	if err != nil {
		return nil, oops.New(err, "failed to open zlib stream")
	}
	defer zlibReader.Close()

	decompressedData := bytes.NewBuffer(make([]byte, 0, min(expectedLen, maxPrealloc)))
	// One extra byte so an overlong stream is detected without inflating all of it.
	n, err := io.Copy(decompressedData, io.LimitReader(zlibReader, int64(expectedLen)+1))
	if err != nil {
		return nil, oops.New(err, "failed to inflate data")
	}
	if int(n) != expectedLen {
		return nil, &LengthError{Expected: expectedLen, Actual: int(n)}
	}
	return decompressedData.Bytes(), nil
}

// DeflateData compresses raw into a zlib stream at the given level.
func DeflateData(raw []byte, level Level) ([]byte, error) {
	var compressedData bytes.Buffer

	zlibWriter, err := zlib.NewWriterLevel(&compressedData, level.zlib())
	if err != nil {
		return nil, oops.New(err, "invalid compression level %d", level)
	}
	if _, err := zlibWriter.Write(raw); err != nil {
		return nil, oops.New(err, "failed to deflate data")
	}
	if err := zlibWriter.Close(); err != nil {
		return nil, oops.New(err, "failed to finish zlib stream")
	}
	return compressedData.Bytes(), nil
}
