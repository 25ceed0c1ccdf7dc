package png

import (
	"errors"
	"fmt"
)

var (
	ErrFormat      = errors.New("png: invalid format")
	ErrUnsupported = errors.New("png: unsupported feature")
	ErrIntegrity   = errors.New("png: integrity check failed")
)

// FormatError reports a malformed container.
type FormatError struct {
	Chunk string // empty when the problem isn't tied to one chunk
	Msg   string
}

func (e *FormatError) Error() string {
	if e.Chunk == "" {
		return "png: invalid format: " + e.Msg
	}
	return fmt.Sprintf("png: invalid format in %s: %s", e.Chunk, e.Msg)
}

func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// UnsupportedFormatError reports a valid PNG outside what this package handles.
type UnsupportedFormatError struct {
	Chunk string
	Msg   string
	// Set for filter types outside 0..4, which are also malformed data and
	// match ErrFormat as well.
	Malformed bool
}

func (e *UnsupportedFormatError) Error() string {
	if e.Chunk == "" {
		return "png: unsupported: " + e.Msg
	}
	return fmt.Sprintf("png: unsupported %s: %s", e.Chunk, e.Msg)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupported || (e.Malformed && target == ErrFormat)
}

// IntegrityError reports a CRC-32 mismatch.
type IntegrityError struct {
	Chunk    string
	Expected uint32 // stored in the file
	Actual   uint32 // computed
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("png: bad CRC-32 for chunk %s: stored %08x, computed %08x", e.Chunk, e.Expected, e.Actual)
}

func (e *IntegrityError) Is(target error) bool { return target == ErrIntegrity }

func formatErrorf(chunk, format string, args ...interface{}) error {
	return &FormatError{Chunk: chunk, Msg: fmt.Sprintf(format, args...)}
}

func unsupportedf(chunk, format string, args ...interface{}) error {
	return &UnsupportedFormatError{Chunk: chunk, Msg: fmt.Sprintf(format, args...)}
}

func badFilterf(format string, args ...interface{}) error {
	return &UnsupportedFormatError{Chunk: chunkIDAT, Msg: fmt.Sprintf(format, args...), Malformed: true}
}
