package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/dataset"
	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/types"
)

var day0 = time.Date(2024, 8, 27, 0, 0, 0, 0, time.UTC)

// series builds one reading per value for parameter p; nil means missing.
func series(p types.Parameter, values ...*float64) []types.Reading {
	out := make([]types.Reading, len(values))
	for i, v := range values {
		out[i] = types.Reading{
			Date:        day0.AddDate(0, 0, 14*i),
			Temperature: float64(10 + i),
			PrevDayTemp: float64(9 + i),
			Notes:       "note",
		}.With(p, types.FromPtr(v))
	}
	return out
}

func f(v float64) *float64 { return &v }

func approxEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func sampleReadings(t *testing.T) []types.Reading {
	t.Helper()
	readings, err := dataset.Default()
	if err != nil {
		t.Fatalf("dataset.Default(): %v", err)
	}
	return readings
}
