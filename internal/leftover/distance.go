package leftover

import "math"

// 3x3 chamfer weights for the L2 metric in 16.16 fixed point:
// round(0.955 * 2^16) for horizontal/vertical steps and round(1.3693 * 2^16) for diagonals.
const (
	chamferShift = 16
	chamferHV    = 62587
	chamferDiag  = 89738

	chamferFar = int64(1) << 50
)

// DistanceTransform returns, for each pixel of m, the approximate Euclidean
// distance to the nearest unset pixel. Unset pixels map to 0. When m has no
// unset pixel at all, every distance is +Inf. Pixels outside the image are
// treated as far away, not as unset.
//
// It is the two-pass 3x3 chamfer transform with weights 0.955 and 1.3693, the
// same approximation OpenCV uses for DIST_L2 with a 3x3 mask.
func DistanceTransform(m *Mask) []float64 {
	w, h := m.Width, m.Height
	out := make([]float64, w*h)
	if w == 0 || h == 0 {
		return out
	}

	// one cell of padding on every side so neighbour lookups never leave buf
	pw := w + 2
	buf := make([]int64, pw*(h+2))
	for i := range buf {
		buf[i] = chamferFar
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y+1)*pw + x + 1
			if !m.Bits[y*w+x] {
				buf[i] = 0
				continue
			}
			up := i - pw
			buf[i] = min(
				buf[up-1]+chamferDiag,
				buf[up]+chamferHV,
				buf[up+1]+chamferDiag,
				buf[i-1]+chamferHV,
			)
		}
	}

	scale := 1 / float64(int64(1)<<chamferShift)
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			i := (y+1)*pw + x + 1
			down := i + pw
			d := min(
				buf[i],
				buf[down+1]+chamferDiag,
				buf[down]+chamferHV,
				buf[down-1]+chamferDiag,
				buf[i+1]+chamferHV,
			)
			buf[i] = d
			if d >= chamferFar/2 {
				out[y*w+x] = math.Inf(1)
				continue
			}
			out[y*w+x] = float64(d) * scale
		}
	}
	return out
}
