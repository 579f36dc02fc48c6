package tracking

import "math"

// =============================================================================
// ROUNDING - Quantize minutes to a policy step
// =============================================================================

// RoundMinutes quantizes minutes to the given step under the chosen mode.
// A step of zero or less is a no-op. Rounding is idempotent: feeding an
// already-rounded value back through the same step and mode returns it
// unchanged.
func RoundMinutes(minutes, step int, mode RoundingMode) int {
	if step <= 0 {
		return minutes
	}
	ratio := float64(minutes) / float64(step)
	var rounded float64
	switch mode {
	case RoundUp:
		rounded = math.Ceil(ratio)
	case RoundDown:
		rounded = math.Floor(ratio)
	default: // RoundNearest, half away from zero
		rounded = math.Round(ratio)
	}
	return int(rounded) * step
}
