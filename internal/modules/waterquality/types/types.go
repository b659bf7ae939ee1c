package types

import "time"

// DateLayout is the calendar date format used by the dataset and in URLs.
const DateLayout = "2006-01-02"

// Reading is one calendar day's measurement set.
type Reading struct {
	Date        time.Time             `json:"date"`
	Temperature float64               `json:"temperature"`
	PrevDayTemp float64               `json:"prevDayTemp"`
	Values      [ParameterCount]Value `json:"-"`
	Notes       string                `json:"notes"`
}

// Get returns the value of p for this reading.
func (r Reading) Get(p Parameter) Value {
	if !p.Valid() {
		return Missing
	}
	return r.Values[p]
}

// With returns a copy of r with p set to v.
func (r Reading) With(p Parameter, v Value) Reading {
	if p.Valid() {
		r.Values[p] = v
	}
	return r
}

// DateString renders the reading date as YYYY-MM-DD.
func (r Reading) DateString() string {
	return r.Date.Format(DateLayout)
}

// ParameterInfo is the static metadata for one tracked parameter.
type ParameterInfo struct {
	Parameter Parameter `json:"key"`
	Label     string    `json:"label"`
	Unit      string    `json:"unit"`
	Alert     float64   `json:"alert"`
	Warning   float64   `json:"warning"`
	Color     string    `json:"color"`
}

// Level is the threshold classification of a value.
type Level string

const (
	LevelUnknown Level = "unknown"
	LevelOK      Level = "ok"
	LevelWarning Level = "warning"
	LevelAlert   Level = "alert"
)

// Level classifies v against the thresholds. When Alert is below Warning
// (oxygen), low values are the bad ones.
func (i ParameterInfo) Level(v Value) Level {
	if !v.Valid {
		return LevelUnknown
	}
	if i.Alert >= i.Warning {
		switch {
		case v.Float >= i.Alert:
			return LevelAlert
		case v.Float >= i.Warning:
			return LevelWarning
		}
		return LevelOK
	}
	switch {
	case v.Float <= i.Alert:
		return LevelAlert
	case v.Float <= i.Warning:
		return LevelWarning
	}
	return LevelOK
}

// FormatWithUnit renders "1.90 mg/L", or "N/A" when missing.
func (i ParameterInfo) FormatWithUnit(v Value) string {
	if !v.Valid || i.Unit == "" {
		return v.Format()
	}
	return v.Format() + " " + i.Unit
}
