// Package analysis derives display data from an immutable reading sequence:
// gap interpolation, trailing trends, per-parameter statistics and the
// latest-reading snapshot. Every function is pure and leaves its input as is.
package analysis

import "github.com/tristmeister/ems-jade2/internal/modules/waterquality/types"

// InterpolatedReading is a reading whose gaps may have been filled from its
// direct neighbours. Interpolated marks the parameters that were fill
// candidates.
type InterpolatedReading struct {
	types.Reading
	Interpolated [types.ParameterCount]bool
}

// IsInterpolated reports whether p was synthesized for this reading.
func (r InterpolatedReading) IsInterpolated(p types.Parameter) bool {
	return p.Valid() && r.Interpolated[p]
}

// Interpolate fills every missing parameter of an interior reading with the
// mean of the previous and next reading's original values. Boundary readings
// are returned unchanged, and a gap next to another gap stays missing.
func Interpolate(readings []types.Reading) []InterpolatedReading {
	out := make([]InterpolatedReading, len(readings))
	for i, r := range readings {
		out[i] = InterpolatedReading{Reading: r}
		if i == 0 || i == len(readings)-1 {
			continue
		}
		prev, next := readings[i-1], readings[i+1]
		for _, p := range types.Parameters() {
			if r.Get(p).Valid {
				continue
			}
			out[i].Values[p] = midpoint(prev.Get(p), next.Get(p))
			out[i].Interpolated[p] = true
		}
	}
	return out
}

func midpoint(a, b types.Value) types.Value {
	if !a.Valid || !b.Valid {
		return types.Missing
	}
	return types.Some((a.Float + b.Float) / 2)
}
