// Package mapping describes how the channels of one pixel layout are derived
// from the channels of another.
//
// A Mapping is immutable once built and can be shared by any number of
// concurrent blits.
package mapping

import (
	"fmt"
	"math"

	"pixpal/compositing"
	"pixpal/utils"
)

type Kind int

const (
	// Each destination channel is one source channel.
	DirectCopy Kind = iota
	// Each destination channel is one source channel or a constant.
	CopyWithDefault
	// Each destination channel is a weighted sum of the source channels plus a bias.
	LinearMatrix
)

func (k Kind) String() string {
	switch k {
	case DirectCopy:
		return "direct"
	case CopyWithDefault:
		return "with-default"
	case LinearMatrix:
		return "matrix"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// NoAlpha disables compose mode.
const NoAlpha = -1

// Source is one destination channel of a CopyWithDefault mapping.
type Source struct {
	Channel int
	Fixed   bool // use Value instead of Channel
	Value   uint8
}

func From(channel int) Source { return Source{Channel: channel} }
func Const(value uint8) Source { return Source{Fixed: true, Value: value} }

type Mapping struct {
	kind  Kind
	alpha int // destination alpha channel, or NoAlpha

	direct  []int       // DirectCopy
	sources []Source    // CopyWithDefault
	matrix  [][]float64 // LinearMatrix, srcUsed weights followed by the bias per row
	srcUsed int         // LinearMatrix

	srcChannels int
}

func NewDirect(channels []int, alpha int) (*Mapping, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("mapping: no destination channels")
	}
	m := &Mapping{kind: DirectCopy, direct: append([]int(nil), channels...)}
	for i, c := range channels {
		if c < 0 {
			return nil, fmt.Errorf("mapping: destination channel %d uses source channel %d", i, c)
		}
		m.srcChannels = max(m.srcChannels, c+1)
	}
	return m, m.setAlpha(alpha)
}

func NewWithDefault(sources []Source, alpha int) (*Mapping, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("mapping: no destination channels")
	}
	m := &Mapping{kind: CopyWithDefault, sources: append([]Source(nil), sources...)}
	for i, s := range sources {
		if s.Fixed {
			continue
		}
		if s.Channel < 0 {
			return nil, fmt.Errorf("mapping: destination channel %d uses source channel %d", i, s.Channel)
		}
		m.srcChannels = max(m.srcChannels, s.Channel+1)
	}
	return m, m.setAlpha(alpha)
}

// NewMatrix builds a LinearMatrix mapping. Each row holds srcUsed weights and
// then a bias; results are rounded half-up and clamped to [0, 255].
func NewMatrix(rows [][]float64, srcUsed int, alpha int) (*Mapping, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("mapping: no destination channels")
	}
	if srcUsed < 0 {
		return nil, fmt.Errorf("mapping: negative source channel count %d", srcUsed)
	}
	m := &Mapping{kind: LinearMatrix, srcUsed: srcUsed, srcChannels: srcUsed}
	for i, row := range rows {
		if len(row) != srcUsed+1 {
			return nil, fmt.Errorf("mapping: matrix row %d has %d entries, expected %d", i, len(row), srcUsed+1)
		}
		m.matrix = append(m.matrix, append([]float64(nil), row...))
	}
	return m, m.setAlpha(alpha)
}

func (m *Mapping) setAlpha(alpha int) error {
	if alpha != NoAlpha && (alpha < 0 || alpha >= m.DstChannels()) {
		return fmt.Errorf("mapping: alpha channel %d outside the %d destination channels", alpha, m.DstChannels())
	}
	m.alpha = alpha
	return nil
}

func (m *Mapping) Kind() Kind { return m.kind }

// Alpha is the destination alpha channel used in compose mode, or NoAlpha.
func (m *Mapping) Alpha() int { return m.alpha }

func (m *Mapping) DstChannels() int {
	switch m.kind {
	case DirectCopy:
		return len(m.direct)
	case CopyWithDefault:
		return len(m.sources)
	default:
		return len(m.matrix)
	}
}

// SrcChannels is the number of source channels a pixel must have at least.
func (m *Mapping) SrcChannels() int { return m.srcChannels }

// value is destination channel c in byte scale, before rounding. Only matrix
// rows can fall outside [0, 255].
func (m *Mapping) value(src []byte, c int) float64 {
	switch m.kind {
	case DirectCopy:
		return float64(src[m.direct[c]])
	case CopyWithDefault:
		s := m.sources[c]
		if s.Fixed {
			return float64(s.Value)
		}
		return float64(src[s.Channel])
	default:
		row := m.matrix[c]
		v := row[m.srcUsed]
		for i := 0; i < m.srcUsed; i++ {
			v += float64(src[i]) * row[i]
		}
		return v
	}
}

// Map writes the mapped pixel into dst. src is one source pixel, dst one
// destination pixel.
func (m *Mapping) Map(dst, src []byte) {
	switch m.kind {
	case DirectCopy:
		for c, s := range m.direct {
			dst[c] = src[s]
		}
	case CopyWithDefault:
		for c, s := range m.sources {
			if s.Fixed {
				dst[c] = s.Value
			} else {
				dst[c] = src[s.Channel]
			}
		}
	default:
		for c := range m.matrix {
			dst[c] = toByte(m.value(src, c))
		}
	}
}

// Compose blends src over dst with policy. Without an alpha channel or a
// policy the source simply overwrites the destination.
func (m *Mapping) Compose(dst, src []byte, policy *compositing.Policy) {
	if m.alpha == NoAlpha || policy == nil {
		m.Map(dst, src)
		return
	}

	alphaSrc := unit(m.value(src, m.alpha))
	alphaDst := float64(dst[m.alpha]) / 255
	alphaRes := policy.Alpha(alphaSrc, alphaDst)

	for c := 0; c < m.DstChannels(); c++ {
		if c == m.alpha {
			continue
		}
		v := policy.Channel(alphaSrc, alphaDst, alphaRes, unit(m.value(src, c)), float64(dst[c])/255)
		dst[c] = toByte(v * 255)
	}
	dst[m.alpha] = toByte(alphaRes * 255)
}

func unit(v float64) float64 {
	return math.Max(0, math.Min(1, v/255))
}

func toByte(v float64) byte {
	return byte(utils.Clamp(0, int(math.Floor(v+0.5)), 255))
}

// Built-in mappings. "Compatible" sources start with the named channels and
// may carry more after them.
var (
	RGBACompatibleToRGBA = utils.Must1(NewDirect([]int{0, 1, 2, 3}, 3))

	RGBCompatibleToRGBA = utils.Must1(NewWithDefault([]Source{From(0), From(1), From(2), Const(255)}, 3))

	GrayAlphaCompatibleToRGBA = utils.Must1(NewDirect([]int{0, 0, 0, 1}, 3))

	GrayCompatibleToRGBA = utils.Must1(NewWithDefault([]Source{From(0), From(0), From(0), Const(255)}, 3))

	RGBACompatibleToGrayAlpha = utils.Must1(NewMatrix([][]float64{
		{1.0 / 3, 1.0 / 3, 1.0 / 3, 0, 0},
		{0, 0, 0, 1, 0},
	}, 4, 1))

	RGBCompatibleToGrayAlpha = utils.Must1(NewMatrix([][]float64{
		{1.0 / 3, 1.0 / 3, 1.0 / 3, 0},
		{0, 0, 0, 255},
	}, 3, 1))
)

// Between builds a mapping by channel name. Destination channels missing
// from src default to 255 for "A" and 0 otherwise. The destination "A"
// channel, if any, becomes the compose alpha.
func Between(src, dst []string) (*Mapping, error) {
	if len(dst) == 0 {
		return nil, fmt.Errorf("mapping: no destination channels")
	}
	index := make(map[string]int, len(src))
	for i, name := range src {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	alpha := NoAlpha
	complete := true
	sources := make([]Source, len(dst))
	for i, name := range dst {
		if name == "A" && alpha == NoAlpha {
			alpha = i
		}
		if c, ok := index[name]; ok {
			sources[i] = From(c)
			continue
		}
		complete = false
		if name == "A" {
			sources[i] = Const(255)
		} else {
			sources[i] = Const(0)
		}
	}

	if complete {
		channels := make([]int, len(sources))
		for i, s := range sources {
			channels[i] = s.Channel
		}
		return NewDirect(channels, alpha)
	}
	return NewWithDefault(sources, alpha)
}
