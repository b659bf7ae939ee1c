package analysis

import (
	"errors"
	"fmt"

	"github.com/montanaflynn/stats"

	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/types"
)

// ErrInsufficientData is returned when a parameter has no measured value in
// the whole sequence, so min, max and mean are undefined.
var ErrInsufficientData = errors.New("insufficient data")

// Stats summarizes the measured values of one parameter.
type Stats struct {
	Parameter types.Parameter
	Min       float64
	Max       float64
	Mean      float64
	Count     int
}

// Summary pairs a parameter with its Stats or the reason they are undefined.
type Summary struct {
	Parameter types.Parameter
	Stats     Stats
	Err       error
}

// HasData reports whether Stats is usable.
func (s Summary) HasData() bool { return s.Err == nil }

// Summarize returns min, max and mean of p over all non-missing values.
func Summarize(readings []types.Reading, p types.Parameter) (Stats, error) {
	values := make(stats.Float64Data, 0, len(readings))
	for _, r := range readings {
		if v := r.Get(p); v.Valid {
			values = append(values, v.Float)
		}
	}
	if len(values) == 0 {
		return Stats{Parameter: p}, fmt.Errorf("%s: %w", p.Key(), ErrInsufficientData)
	}

	lo, err := values.Min()
	if err != nil {
		return Stats{Parameter: p}, fmt.Errorf("%s min: %w", p.Key(), err)
	}
	hi, err := values.Max()
	if err != nil {
		return Stats{Parameter: p}, fmt.Errorf("%s max: %w", p.Key(), err)
	}
	mean, err := values.Mean()
	if err != nil {
		return Stats{Parameter: p}, fmt.Errorf("%s mean: %w", p.Key(), err)
	}
	return Stats{Parameter: p, Min: lo, Max: hi, Mean: mean, Count: len(values)}, nil
}

// SummarizeAll summarizes each parameter in the given order.
func SummarizeAll(readings []types.Reading, params []types.Parameter) []Summary {
	out := make([]Summary, 0, len(params))
	for _, p := range params {
		s, err := Summarize(readings, p)
		out = append(out, Summary{Parameter: p, Stats: s, Err: err})
	}
	return out
}
