package leftover

import (
	"encoding/json"
	"math"
)

// Gate failure reasons.
const (
	ReasonOK                 = "ok"
	ReasonNoPlate            = "no_plate"
	ReasonPlateTooSmallPx    = "plate_too_small_px"
	ReasonPlateTooSmallArea  = "plate_too_small_area"
	ReasonCroppedBySideTouch = "cropped_by_side_touch"
	ReasonCroppedByTouch     = "cropped_by_touch_ratio"
)

// eps keeps ratios finite for degenerate sizes.
const eps = 1e-6

// LabelMap is a per-pixel class index map produced by a semantic segmentation model.
type LabelMap struct {
	Width  int
	Height int
	Labels []uint8
}

// Diagnostics explains the shot quality gate decision.
// Fields the gate did not reach before deciding stay zero and are left out of the JSON form.
type Diagnostics struct {
	Reason         string  `json:"reason"`
	PlatePixels    int     `json:"plate_pixels"`
	PlateAreaRatio float64 `json:"plate_area_ratio"`
	MaxSideTouch   float64 `json:"max_side_touch"`
	TouchRatio     float64 `json:"touch_ratio"`
	TotalAreaRatio float64 `json:"total_area_ratio"`
}

type diagnosticsJSON struct {
	Reason         string   `json:"reason"`
	PlatePixels    *int     `json:"plate_pixels,omitempty"`
	PlateAreaRatio *float64 `json:"plate_area_ratio,omitempty"`
	MaxSideTouch   *float64 `json:"max_side_touch,omitempty"`
	TouchRatio     *float64 `json:"touch_ratio,omitempty"`
	TotalAreaRatio *float64 `json:"total_area_ratio,omitempty"`
}

// MarshalJSON emits only the measurements taken for the decided reason.
func (d Diagnostics) MarshalJSON() ([]byte, error) {
	out := diagnosticsJSON{Reason: d.Reason}
	switch d.Reason {
	case ReasonNoPlate, ReasonPlateTooSmallPx:
		out.PlatePixels = &d.PlatePixels
	case ReasonPlateTooSmallArea:
		out.PlateAreaRatio = &d.PlateAreaRatio
	case ReasonCroppedBySideTouch, ReasonCroppedByTouch:
		out.PlateAreaRatio = &d.PlateAreaRatio
		out.MaxSideTouch = &d.MaxSideTouch
		out.TouchRatio = &d.TouchRatio
	default:
		out.PlatePixels = &d.PlatePixels
		out.PlateAreaRatio = &d.PlateAreaRatio
		out.MaxSideTouch = &d.MaxSideTouch
		out.TouchRatio = &d.TouchRatio
		out.TotalAreaRatio = &d.TotalAreaRatio
	}
	return json.Marshal(out)
}

// ShotQualityGate rejects frames where the plate is missing, too small, or cut off
// by the image border. A rejected frame should be photographed again.
func ShotQualityGate(lm *LabelMap, p Params) (bool, Diagnostics) {
	w, h := lm.Width, lm.Height
	area := float64(w * h)

	var platePx, trayPx int
	for _, l := range lm.Labels {
		if l == p.PlateClass {
			platePx++
			trayPx++
		} else if l == p.LeftoverClass {
			trayPx++
		}
	}

	diag := Diagnostics{
		PlatePixels:    platePx,
		PlateAreaRatio: float64(platePx) / (area + eps),
	}

	if platePx == 0 {
		diag.Reason = ReasonNoPlate
		return false, diag
	}
	if platePx < p.MinPlatePixels {
		diag.Reason = ReasonPlateTooSmallPx
		return false, diag
	}
	if diag.PlateAreaRatio < p.MinPlateAreaRatio {
		diag.Reason = ReasonPlateTooSmallArea
		return false, diag
	}

	top, bottom, left, right := borderTouch(lm, p.PlateClass, p.Border)
	b := float64(max(p.Border, 0))
	diag.MaxSideTouch = math.Max(
		math.Max(float64(top)/(b*float64(w)+eps), float64(bottom)/(b*float64(w)+eps)),
		math.Max(float64(left)/(b*float64(h)+eps), float64(right)/(b*float64(h)+eps)),
	)
	diag.TouchRatio = float64(top+bottom+left+right) / (float64(platePx) + eps)

	if diag.MaxSideTouch > p.MaxSideTouch {
		diag.Reason = ReasonCroppedBySideTouch
		return false, diag
	}
	if diag.TouchRatio > p.TouchRatio && diag.MaxSideTouch > p.MaxSideTouch*0.8 {
		diag.Reason = ReasonCroppedByTouch
		return false, diag
	}

	diag.TotalAreaRatio = float64(trayPx) / (area + eps)
	diag.Reason = ReasonOK
	return true, diag
}

// borderTouch counts plate pixels inside each border strip of width b.
// Corner pixels count toward both adjoining strips.
func borderTouch(lm *LabelMap, plate uint8, b int) (top, bottom, left, right int) {
	w, h := lm.Width, lm.Height
	bh := min(max(b, 0), h)
	bw := min(max(b, 0), w)
	for y := 0; y < h; y++ {
		inTop := y < bh
		inBottom := y >= h-bh
		row := lm.Labels[y*w : (y+1)*w]
		for x, l := range row {
			if l != plate {
				continue
			}
			if inTop {
				top++
			}
			if inBottom {
				bottom++
			}
			if x < bw {
				left++
			}
			if x >= w-bw {
				right++
			}
		}
	}
	return top, bottom, left, right
}

// UnweightedRatio is leftover pixels over plate plus leftover pixels.
func UnweightedRatio(lm *LabelMap, p Params) float64 {
	var plate, leftover int
	for _, l := range lm.Labels {
		switch l {
		case p.PlateClass:
			plate++
		case p.LeftoverClass:
			leftover++
		}
	}
	if plate+leftover == 0 {
		return 0
	}
	return float64(leftover) / float64(plate+leftover)
}

// WeightedRatio discounts thin leftover regions such as sauce smears.
// Each leftover pixel weighs clip(dist/DistTau, 0, 1), floored at WeightEps,
// where dist is its distance to the nearest non-leftover pixel.
func WeightedRatio(lm *LabelMap, p Params) float64 {
	leftover := NewMask(lm.Width, lm.Height)
	denom := 0
	for i, l := range lm.Labels {
		switch l {
		case p.LeftoverClass:
			leftover.Bits[i] = true
			denom++
		case p.PlateClass:
			denom++
		}
	}
	if denom == 0 {
		return 0
	}

	dist := DistanceTransform(leftover)
	var numer float64
	for i, set := range leftover.Bits {
		if !set {
			continue
		}
		wt := 1.0
		if p.DistTau > 0 {
			wt = math.Min(math.Max(dist[i]/p.DistTau, 0), 1)
		}
		numer += math.Max(p.WeightEps, wt)
	}
	return numer / float64(denom)
}

// EstimateLabelMap runs the quality gate and, when it passes, the configured ratio.
func EstimateLabelMap(lm *LabelMap, p Params) Estimate {
	ok, diag := ShotQualityGate(lm, p)
	if !ok {
		return Estimate{Status: StatusRetake, Diag: &diag}
	}
	ratio := UnweightedRatio(lm, p)
	if p.Weighted {
		ratio = WeightedRatio(lm, p)
	}
	return Estimate{Status: StatusOK, Ratio: ratio, Diag: &diag}
}
