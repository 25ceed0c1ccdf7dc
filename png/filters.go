package png

import "fmt"

type FilterType byte

const (
	FilterNone FilterType = iota
	FilterSub
	FilterUp
	FilterAverage
	FilterPaeth
)

func (ft FilterType) String() string {
	switch ft {
	case FilterNone:
		return "none"
	case FilterSub:
		return "sub"
	case FilterUp:
		return "up"
	case FilterAverage:
		return "average"
	case FilterPaeth:
		return "paeth"
	}
	return "invalid"
}

// ParseFilterType accepts a filter name ("none", "sub", "up", "average",
// "paeth") or its number.
func ParseFilterType(name string) (FilterType, error) {
	for ft := FilterNone; ft <= FilterPaeth; ft++ {
		if name == ft.String() || name == string('0'+byte(ft)) {
			return ft, nil
		}
	}
	return 0, fmt.Errorf("unknown filter type %q", name)
}

// Paeth returns whichever of a (left), b (up) or c (up-left) is closest to
// a+b-c. Ties prefer a, then b.
func Paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))

	if pa <= pb && pa <= pc {
		return a
	} else if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Defilter reconstructs row in place. prev is the previous reconstructed row,
// or nil for the first row. bytesPerPixel is the distance to the left neighbor.
func Defilter(ft FilterType, row, prev []byte, bytesPerPixel int) error {
	if prev == nil {
		prev = make([]byte, len(row))
	}

	switch ft {
	case FilterNone:
	case FilterSub:
		for i := bytesPerPixel; i < len(row); i++ {
			row[i] += row[i-bytesPerPixel]
		}
	case FilterUp:
		for i, above := range prev[:len(row)] {
			row[i] += above
		}
	case FilterAverage:
		for i := 0; i < len(row); i++ {
			var left int
			if i >= bytesPerPixel {
				left = int(row[i-bytesPerPixel])
			}
			row[i] += byte((left + int(prev[i])) / 2)
		}
	case FilterPaeth:
		for i := 0; i < len(row); i++ {
			var left, upperLeft byte
			if i >= bytesPerPixel {
				left = row[i-bytesPerPixel]
				upperLeft = prev[i-bytesPerPixel]
			}
			row[i] += Paeth(left, prev[i], upperLeft)
		}
	default:
		return badFilterf("filter type %d", ft)
	}
	return nil
}

// Filter writes the filtered form of row into dst (same length). prev is the
// previous unfiltered row, or nil for the first row.
func Filter(ft FilterType, dst, row, prev []byte, bytesPerPixel int) error {
	if prev == nil {
		prev = make([]byte, len(row))
	}

	switch ft {
	case FilterNone:
		copy(dst, row)
	case FilterSub:
		for i := range row {
			var left byte
			if i >= bytesPerPixel {
				left = row[i-bytesPerPixel]
			}
			dst[i] = row[i] - left
		}
	case FilterUp:
		for i := range row {
			dst[i] = row[i] - prev[i]
		}
	case FilterAverage:
		for i := range row {
			var left int
			if i >= bytesPerPixel {
				left = int(row[i-bytesPerPixel])
			}
			dst[i] = row[i] - byte((left+int(prev[i]))/2)
		}
	case FilterPaeth:
		for i := range row {
			var left, upperLeft byte
			if i >= bytesPerPixel {
				left = row[i-bytesPerPixel]
				upperLeft = prev[i-bytesPerPixel]
			}
			dst[i] = row[i] - Paeth(left, prev[i], upperLeft)
		}
	default:
		return badFilterf("filter type %d", ft)
	}
	return nil
}
