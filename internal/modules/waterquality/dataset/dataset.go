// Package dataset decodes the compiled-in sample readings of the canal
// monitoring project. A TOML file with the same layout can replace them.
package dataset

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/types"
)

//go:embed readings.toml
var embeddedReadings []byte

// ErrEmpty is returned for a document without readings.
var ErrEmpty = errors.New("dataset has no readings")

type datasetFile struct {
	Reading []readingEntry `toml:"reading"`
}

type readingEntry struct {
	Date         string   `toml:"date"`
	Temperature  *float64 `toml:"temperature"`
	PrevDayTemp  *float64 `toml:"prevDayTemp"`
	Nitrat       *float64 `toml:"nitrat"`
	Nitrit       *float64 `toml:"nitrit"`
	Phosphat     *float64 `toml:"phosphat"`
	PH           *float64 `toml:"ph"`
	Sauerstoff   *float64 `toml:"sauerstoff"`
	Carbonhearte *float64 `toml:"carbonhearte"`
	Ammonium     *float64 `toml:"ammonium"`
	Notes        string   `toml:"notes"`
}

// Default returns the compiled-in sample readings.
func Default() ([]types.Reading, error) {
	return Load(bytes.NewReader(embeddedReadings))
}

// LoadFile reads a dataset from path.
func LoadFile(path string) ([]types.Reading, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	readings, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return readings, nil
}

// Load decodes readings and checks that dates are strictly ascending.
func Load(r io.Reader) ([]types.Reading, error) {
	var f datasetFile
	md, err := toml.NewDecoder(r).Decode(&f)
	if err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("dataset: unknown fields: %s", strings.Join(keys, ", "))
	}
	if len(f.Reading) == 0 {
		return nil, ErrEmpty
	}

	out := make([]types.Reading, 0, len(f.Reading))
	for i, e := range f.Reading {
		rd, err := e.toReading()
		if err != nil {
			return nil, fmt.Errorf("reading %d: %w", i, err)
		}
		if i > 0 && !rd.Date.After(out[i-1].Date) {
			return nil, fmt.Errorf("reading %d: date %s is not after %s", i, rd.DateString(), out[i-1].DateString())
		}
		out = append(out, rd)
	}
	return out, nil
}

func (e readingEntry) toReading() (types.Reading, error) {
	date, err := time.Parse(types.DateLayout, strings.TrimSpace(e.Date))
	if err != nil {
		return types.Reading{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", e.Date)
	}
	if e.Temperature == nil {
		return types.Reading{}, fmt.Errorf("%s: temperature is required", e.Date)
	}
	if e.PrevDayTemp == nil {
		return types.Reading{}, fmt.Errorf("%s: prevDayTemp is required", e.Date)
	}

	r := types.Reading{
		Date:        date,
		Temperature: *e.Temperature,
		PrevDayTemp: *e.PrevDayTemp,
		Notes:       e.Notes,
	}
	r.Values[types.Nitrat] = types.FromPtr(e.Nitrat)
	r.Values[types.Nitrit] = types.FromPtr(e.Nitrit)
	r.Values[types.Phosphat] = types.FromPtr(e.Phosphat)
	r.Values[types.PH] = types.FromPtr(e.PH)
	r.Values[types.Sauerstoff] = types.FromPtr(e.Sauerstoff)
	r.Values[types.Carbonhearte] = types.FromPtr(e.Carbonhearte)
	r.Values[types.Ammonium] = types.FromPtr(e.Ammonium)
	return r, nil
}
