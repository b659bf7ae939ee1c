package analysis

import (
	"errors"
	"fmt"

	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/types"
)

// TrendWindow is the number of readings, current one included, that a trend
// value averages.
const TrendWindow = 3

var ErrInvalidWindow = errors.New("trend window must be at least 1")

// TrendReading is a reading plus the trailing average of each selected parameter.
type TrendReading struct {
	types.Reading
	Trend map[types.Parameter]types.Value
}

// Trends computes, for every reading and selected parameter, the mean of the
// non-missing values among the reading and up to window-1 predecessors. The
// window shrinks at the start of the sequence and never looks ahead.
func Trends(readings []types.Reading, selected []types.Parameter, window int) ([]TrendReading, error) {
	if window < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWindow, window)
	}
	params := uniqueParameters(selected)

	out := make([]TrendReading, len(readings))
	for i, r := range readings {
		out[i] = TrendReading{Reading: r, Trend: make(map[types.Parameter]types.Value, len(params))}
		start := max(0, i-window+1)
		for _, p := range params {
			out[i].Trend[p] = meanOf(readings[start:i+1], p)
		}
	}
	return out, nil
}

// TrendValue returns the trend of p, or Missing if p was not selected.
func (r TrendReading) TrendValue(p types.Parameter) types.Value {
	return r.Trend[p]
}

func meanOf(readings []types.Reading, p types.Parameter) types.Value {
	var sum float64
	n := 0
	for _, r := range readings {
		if v := r.Get(p); v.Valid {
			sum += v.Float
			n++
		}
	}
	if n == 0 {
		return types.Missing
	}
	return types.Some(sum / float64(n))
}

func uniqueParameters(params []types.Parameter) []types.Parameter {
	var seen [types.ParameterCount]bool
	out := make([]types.Parameter, 0, len(params))
	for _, p := range params {
		if !p.Valid() || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}
