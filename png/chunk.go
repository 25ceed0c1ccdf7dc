package png

import (
	"encoding/binary"
	"hash/crc32"
	"io"
)

// Magic is the signature every PNG datastream starts with.
const Magic = "\x89PNG\r\n\x1a\n"

const (
	chunkIHDR = "IHDR"
	chunkPLTE = "PLTE"
	chunkTRNS = "tRNS"
	chunkBKGD = "bKGD"
	chunkIDAT = "IDAT"
	chunkIEND = "IEND"
)

// iendTrailer is a complete IEND chunk. It carries no data, so its CRC never changes.
var iendTrailer = []byte{0, 0, 0, 0, 'I', 'E', 'N', 'D', 0xae, 0x42, 0x60, 0x82}

func isPNG(data []byte) bool {
	return len(data) >= len(Magic) && string(data[:len(Magic)]) == Magic
}

type Chunk struct {
	Type string
	Data []byte // a view into the reader's buffer
	CRC  uint32 // as stored in the file
}

// Critical chunks have an uppercase first letter.
func (c Chunk) Critical() bool {
	return len(c.Type) == 4 && c.Type[0] >= 'A' && c.Type[0] <= 'Z'
}

// ChunkReader walks the chunks of an in-memory PNG, one at a time.
type ChunkReader struct {
	data     []uint8
	idx      int
	checkCRC bool
	finished bool
}

// NewChunkReader verifies the magic bytes and positions the reader at the first chunk.
func NewChunkReader(data []byte, checkCRC bool) (*ChunkReader, error) {
	if !isPNG(data) {
		return nil, formatErrorf("", "not a PNG, missing magic bytes")
	}
	return &ChunkReader{
		data:     data,
		idx:      len(Magic),
		checkCRC: checkCRC,
	}, nil
}

// SawIEND reports whether the stream was terminated by an IEND chunk.
func (p *ChunkReader) SawIEND() bool {
	return p.finished
}

// Next returns the next chunk, or io.EOF once IEND was read or the buffer is
// exhausted. Anything after IEND is an error.
func (p *ChunkReader) Next() (Chunk, error) {
	if p.finished {
		if p.idx < len(p.data) {
			return Chunk{}, formatErrorf(chunkIEND, "chunk after IEND (%d trailing bytes)", len(p.data)-p.idx)
		}
		return Chunk{}, io.EOF
	}
	if p.idx == len(p.data) {
		return Chunk{}, io.EOF
	}

	header, err := p.tryAdvance(8)
	if err != nil {
		return Chunk{}, formatErrorf("", "truncated chunk header at offset %d", p.idx)
	}
	length := binary.BigEndian.Uint32(header[:4])
	typ := string(header[4:8])
	if length > 0x7fffffff {
		return Chunk{}, formatErrorf(typ, "bad chunk length %d", length)
	}

	data, err := p.tryAdvance(int(length))
	if err != nil {
		return Chunk{}, formatErrorf(typ, "truncated chunk data, want %d bytes, have %d", length, len(p.data)-p.idx)
	}
	crc, err := p.tryAdvance(4)
	if err != nil {
		return Chunk{}, formatErrorf(typ, "truncated chunk CRC")
	}

	chunk := Chunk{
		Type: typ,
		Data: data,
		CRC:  binary.BigEndian.Uint32(crc),
	}
	if p.checkCRC {
		if computed := chunkCRC(header[4:8], data); computed != chunk.CRC {
			return Chunk{}, &IntegrityError{Chunk: typ, Expected: chunk.CRC, Actual: computed}
		}
	}
	if typ == chunkIEND {
		p.finished = true
	}
	return chunk, nil
}

func (p *ChunkReader) tryAdvance(length int) ([]uint8, error) {
	if length > len(p.data)-p.idx {
		return nil, io.ErrUnexpectedEOF
	}

	p.idx += length
	return p.data[p.idx-length : p.idx], nil
}

func chunkCRC(typ, data []byte) uint32 {
	crc := crc32.NewIEEE()
	crc.Write(typ)
	crc.Write(data)
	return crc.Sum32()
}

// AppendChunk appends a framed chunk (length, type, data, CRC-32) to dst.
func AppendChunk(dst []byte, typ string, data []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(data)))
	dst = append(dst, typ...)
	dst = append(dst, data...)
	return binary.BigEndian.AppendUint32(dst, chunkCRC([]byte(typ), data))
}

func WriteChunk(w io.Writer, typ string, data []byte) error {
	if len(typ) != 4 {
		return formatErrorf(typ, "chunk type must be 4 bytes")
	}
	_, err := w.Write(AppendChunk(make([]byte, 0, 12+len(data)), typ, data))
	return err
}
