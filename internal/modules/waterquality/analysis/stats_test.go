package analysis

import (
	"errors"
	"strings"
	"testing"

	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/types"
)

func TestSummarize(t *testing.T) {
	readings := series(types.Nitrat, f(1), nil, f(3), f(5))

	got, err := Summarize(readings, types.Nitrat)
	if err != nil {
		t.Fatalf("Summarize() = %v; want nil", err)
	}
	if got.Min != 1 || got.Max != 5 || !approxEqual(got.Mean, 3) || got.Count != 3 {
		t.Errorf("Summarize() = %+v; want min 1 max 5 mean 3 count 3", got)
	}
	if got.Parameter != types.Nitrat {
		t.Errorf("Parameter = %v; want nitrat", got.Parameter)
	}
}

func TestSummarize_allMissing(t *testing.T) {
	readings := series(types.Nitrat, nil, nil)

	got, err := Summarize(readings, types.Nitrat)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("Summarize() err = %v; want ErrInsufficientData", err)
	}
	if !strings.Contains(err.Error(), "nitrat") {
		t.Errorf("err = %q; want parameter key in message", err.Error())
	}
	if got.Count != 0 || got.Min != 0 || got.Max != 0 || got.Mean != 0 {
		t.Errorf("Summarize() = %+v; want zero stats", got)
	}

	if _, err := Summarize(nil, types.PH); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("Summarize(nil) = %v; want ErrInsufficientData", err)
	}
}

func TestSummarize_ignoresOtherParameters(t *testing.T) {
	readings := series(types.PH, f(7))
	readings[0] = readings[0].With(types.Nitrat, types.Some(100))

	got, err := Summarize(readings, types.PH)
	if err != nil {
		t.Fatalf("Summarize() = %v", err)
	}
	if got.Max != 7 {
		t.Errorf("Max = %v; want 7", got.Max)
	}
}

func TestSummarizeAll(t *testing.T) {
	readings := sampleReadings(t)
	params := []types.Parameter{types.Nitrat, types.Phosphat, types.PH}

	got := SummarizeAll(readings, params)

	if len(got) != len(params) {
		t.Fatalf("len = %d; want %d", len(got), len(params))
	}
	for i, s := range got {
		if s.Parameter != params[i] {
			t.Errorf("[%d] parameter = %v; want %v", i, s.Parameter, params[i])
		}
		if !s.HasData() {
			t.Errorf("[%d] err = %v; want data", i, s.Err)
		}
	}
	nitrat := got[0].Stats
	if nitrat.Min != 0.42 || nitrat.Max != 1.9 || nitrat.Count != 7 {
		t.Errorf("nitrat stats = %+v; want min 0.42 max 1.9 count 7", nitrat)
	}
	ph := got[2].Stats
	if ph.Min != 6.5 || ph.Max != 7.5 || ph.Count != 9 {
		t.Errorf("ph stats = %+v; want min 6.5 max 7.5 count 9", ph)
	}
}
