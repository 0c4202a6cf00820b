package leftover

// Status tells whether a shot was usable.
type Status string

const (
	StatusOK     Status = "OK"
	StatusRetake Status = "RETAKE"
)

// Class names emitted by the instance segmentation model.
const (
	ClassDishes    = "dishes"
	ClassLeftovers = "leftovers"
)

// Params tunes both estimation strategies.
type Params struct {
	// LeftoverMinConfidence drops leftover instances below this score. Dishes are always kept.
	LeftoverMinConfidence float64

	PlateClass    uint8
	LeftoverClass uint8

	MinPlateAreaRatio float64
	MinPlatePixels    int
	Border            int
	MaxSideTouch      float64
	TouchRatio        float64

	Weighted  bool
	DistTau   float64
	WeightEps float64
}

// DefaultParams returns the values the production models were tuned with.
func DefaultParams() Params {
	return Params{
		LeftoverMinConfidence: 0.4,
		PlateClass:            1,
		LeftoverClass:         2,
		MinPlateAreaRatio:     0.25,
		MinPlatePixels:        5000,
		Border:                6,
		MaxSideTouch:          0.35,
		TouchRatio:            0.08,
		Weighted:              true,
		DistTau:               12,
		WeightEps:             0.08,
	}
}

// Estimate is the outcome of one analysis.
type Estimate struct {
	Status Status       `json:"status"`
	Ratio  float64      `json:"leftover_ratio"`
	Diag   *Diagnostics `json:"diag,omitempty"`
}

// LegacyRatio is the ratio reported by endpoints that have no notion of a retake: 0 for rejected shots.
func (e Estimate) LegacyRatio() float64 {
	if e.Status != StatusOK {
		return 0
	}
	return e.Ratio
}
