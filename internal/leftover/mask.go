// Package leftover turns segmentation output into a leftover ratio:
// leftover area divided by the whole tray area (plate plus leftover).
package leftover

import "math"

// Mask is a binary image stored row-major.
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask returns an all-false mask of the given size.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Mask{Width: width, Height: height, Bits: make([]bool, width*height)}
}

// At reports whether (x, y) is set. Out-of-range coordinates are false.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Bits[y*m.Width+x]
}

// Set sets (x, y) to v.
func (m *Mask) Set(x, y int, v bool) {
	m.Bits[y*m.Width+x] = v
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Or sets every pixel that is set in o. Both masks must be the same size.
func (m *Mask) Or(o *Mask) {
	for i, b := range o.Bits {
		if b {
			m.Bits[i] = true
		}
	}
}

// ResizeMask scales m to width x height using bilinear interpolation and keeps
// pixels whose interpolated coverage is at least one half.
func ResizeMask(m *Mask, width, height int) *Mask {
	out := NewMask(width, height)
	if m.Width == 0 || m.Height == 0 || width == 0 || height == 0 {
		return out
	}
	if m.Width == width && m.Height == height {
		copy(out.Bits, m.Bits)
		return out
	}

	sx := float64(m.Width) / float64(width)
	sy := float64(m.Height) / float64(height)
	val := func(x, y int) float64 {
		if m.Bits[y*m.Width+x] {
			return 1
		}
		return 0
	}

	for y := 0; y < height; y++ {
		fy := (float64(y)+0.5)*sy - 0.5
		y0, wy := splitCoord(fy, m.Height)
		y1 := min(y0+1, m.Height-1)
		for x := 0; x < width; x++ {
			fx := (float64(x)+0.5)*sx - 0.5
			x0, wx := splitCoord(fx, m.Width)
			x1 := min(x0+1, m.Width-1)

			top := val(x0, y0)*(1-wx) + val(x1, y0)*wx
			bottom := val(x0, y1)*(1-wx) + val(x1, y1)*wx
			if top*(1-wy)+bottom*wy >= 0.5 {
				out.Bits[y*width+x] = true
			}
		}
	}
	return out
}

// splitCoord clamps a source coordinate into [0, n-1] and returns its integer
// cell and fractional weight toward the next cell.
func splitCoord(f float64, n int) (int, float64) {
	if f <= 0 {
		return 0, 0
	}
	if f >= float64(n-1) {
		return n - 1, 0
	}
	i := int(math.Floor(f))
	return i, f - float64(i)
}
