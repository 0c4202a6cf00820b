package segmentation

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"leftoverapi/internal/leftover"
)

// ModelEstimator combines a Segmenter with the leftover computation for the configured mode.
type ModelEstimator struct {
	seg       Segmenter
	mode      Mode
	params    leftover.Params
	estimates *prometheus.CounterVec
}

var _ Estimator = (*ModelEstimator)(nil)

// NewModelEstimator wires a Segmenter to the ratio computation. reg may be nil to skip metrics.
func NewModelEstimator(seg Segmenter, mode Mode, params leftover.Params, reg prometheus.Registerer) (*ModelEstimator, error) {
	e := &ModelEstimator{
		seg:    seg,
		mode:   mode,
		params: params,
		estimates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leftover_estimates_total",
				Help: "Leftover estimates produced, by outcome status.",
			},
			[]string{"mode", "status"},
		),
	}
	if reg != nil {
		if err := reg.Register(e.estimates); err != nil {
			return nil, fmt.Errorf("register estimator metrics: %w", err)
		}
	}
	return e, nil
}

// Estimate segments the image and computes its leftover ratio.
func (e *ModelEstimator) Estimate(ctx context.Context, image []byte, contentType string) (leftover.Estimate, error) {
	res, err := e.seg.Segment(ctx, image, contentType)
	if err != nil {
		e.estimates.WithLabelValues(string(e.mode), "error").Inc()
		return leftover.Estimate{}, fmt.Errorf("segment image: %w", err)
	}

	var est leftover.Estimate
	switch e.mode {
	case ModeSemantic:
		if res.LabelMap == nil {
			e.estimates.WithLabelValues(string(e.mode), "error").Inc()
			return leftover.Estimate{}, ErrNoLabelMap
		}
		est = leftover.EstimateLabelMap(res.LabelMap, e.params)
	default:
		est = leftover.EstimateInstances(res.Width, res.Height, res.Instances, e.params)
	}

	e.estimates.WithLabelValues(string(e.mode), string(est.Status)).Inc()
	return est, nil
}
