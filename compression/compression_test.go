package compression

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte{0, 1, 2, 3, 4, 5, 6, 7}, 100)

	for _, level := range []Level{DefaultCompression, NoCompression, BestSpeed, BestCompression, 5} {
		compressed, err := DeflateData(raw, level)
		require.NoError(t, err)

		inflated, err := InflateData(compressed, len(raw))
		require.NoError(t, err)
		assert.Equal(t, raw, inflated)
	}
}

func TestDeterministic(t *testing.T) {
	raw := []byte("the same bytes twice")
	a, err := DeflateData(raw, DefaultCompression)
	require.NoError(t, err)
	b, err := DeflateData(raw, DefaultCompression)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLengthMismatch(t *testing.T) {
	compressed, err := DeflateData([]byte{1, 2, 3, 4}, DefaultCompression)
	require.NoError(t, err)

	t.Run("too short", func(t *testing.T) {
		_, err := InflateData(compressed, 5)
		var lenErr *LengthError
		require.True(t, errors.As(err, &lenErr))
		assert.Equal(t, 5, lenErr.Expected)
		assert.Equal(t, 4, lenErr.Actual)
	})
	t.Run("too long", func(t *testing.T) {
		_, err := InflateData(compressed, 3)
		var lenErr *LengthError
		require.True(t, errors.As(err, &lenErr))
		assert.Equal(t, 4, lenErr.Actual)
	})
}

func TestBadStream(t *testing.T) {
	_, err := InflateData([]byte{0xde, 0xad, 0xbe, 0xef}, 4)
	assert.Error(t, err)
}

func TestBadLevel(t *testing.T) {
	_, err := DeflateData([]byte{1}, 42)
	assert.Error(t, err)
}
