// Package segmentation talks to the model server that runs the segmentation
// network and turns its output into leftover estimates.
package segmentation

import (
	"context"
	"errors"
	"fmt"

	"leftoverapi/internal/leftover"
)

// Mode selects which model output drives the estimate.
type Mode string

const (
	// ModeInstance uses per-object masks with class names and confidences (YOLO-seg).
	ModeInstance Mode = "instance"
	// ModeSemantic uses a per-pixel class map (Mask2Former).
	ModeSemantic Mode = "semantic"
)

var (
	ErrNoLabelMap  = errors.New("model server returned no label map")
	ErrBadResponse = errors.New("malformed model server response")
)

// ParseMode validates a configured mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeInstance, ModeSemantic:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown segmenter mode %q", s)
	}
}

// Result is the decoded output of one segmentation call.
type Result struct {
	Width     int
	Height    int
	Instances []leftover.Instance
	LabelMap  *leftover.LabelMap
}

// Segmenter runs a segmentation model over an encoded image.
type Segmenter interface {
	// Segment sends the encoded image to the model and returns its decoded masks.
	Segment(ctx context.Context, image []byte, contentType string) (*Result, error)
	// Ping checks that the model server is reachable and ready.
	Ping(ctx context.Context) error
}

// Estimator produces a leftover estimate for an encoded image.
type Estimator interface {
	Estimate(ctx context.Context, image []byte, contentType string) (leftover.Estimate, error)
}
