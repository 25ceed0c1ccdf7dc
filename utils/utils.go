package utils

import (
	"fmt"
	"io"

	"pixpal/oops"
)

// Returns the provided value, or a default value if the input was zero.
func OrDefault[T comparable](v T, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// Panics if err is non-nil. Only for values known to be valid at init time.
func Must1[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func Clamp(min, t, max int) int {
	if t < min {
		return min
	}
	if t > max {
		return max
	}
	return t
}

// EncodePPM writes a binary (P6) PPM. rgb holds width*height packed RGB triples.
func EncodePPM(w io.Writer, width, height int, rgb []byte) error {
	if len(rgb) != width*height*3 {
		return oops.New(nil, "ppm: expected %d bytes of RGB data, got %d", width*height*3, len(rgb))
	}
	if _, err := fmt.Fprintf(w, "P6\n%d %d\n255\n", width, height); err != nil {
		return oops.New(err, "failed to write PPM header")
	}
	if _, err := w.Write(rgb); err != nil {
		return oops.New(err, "failed to write PPM pixels")
	}
	return nil
}
