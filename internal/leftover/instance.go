package leftover

// Instance is one detected object with its segmentation mask.
// The mask may be at model resolution; it is rescaled to the image size.
type Instance struct {
	ClassName  string
	Confidence float64
	Mask       *Mask
}

// EstimateInstances computes the ratio from instance masks.
//
// Dish pixels covered by leftovers count as leftover only, so the denominator is
// the union of both classes.
func EstimateInstances(width, height int, instances []Instance, p Params) Estimate {
	if width <= 0 || height <= 0 || len(instances) == 0 {
		return Estimate{Status: StatusOK}
	}

	leftover := NewMask(width, height)
	dish := NewMask(width, height)

	for _, inst := range instances {
		if inst.Mask == nil {
			continue
		}
		var target *Mask
		switch {
		case inst.ClassName == ClassDishes:
			target = dish
		case inst.ClassName == ClassLeftovers && inst.Confidence >= p.LeftoverMinConfidence:
			target = leftover
		default:
			continue
		}
		target.Or(ResizeMask(inst.Mask, width, height))
	}

	var leftoverPx, dishPx int
	for i := range leftover.Bits {
		switch {
		case leftover.Bits[i]:
			leftoverPx++
		case dish.Bits[i]:
			dishPx++
		}
	}

	total := leftoverPx + dishPx
	if total == 0 {
		return Estimate{Status: StatusOK}
	}
	return Estimate{Status: StatusOK, Ratio: float64(leftoverPx) / float64(total)}
}
