package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is a measurement that may be absent for a given day.
// A missing value is never the same as zero.
type Value struct {
	Float float64
	Valid bool
}

// Missing is the absent measurement.
var Missing = Value{}

// Some wraps a measured number.
func Some(f float64) Value {
	return Value{Float: f, Valid: true}
}

// Ptr returns nil for a missing value.
func (v Value) Ptr() *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float
	return &f
}

// FromPtr is the inverse of Ptr.
func FromPtr(f *float64) Value {
	if f == nil {
		return Missing
	}
	return Some(*f)
}

// Format renders the value with two decimals, or "N/A" when missing.
func (v Value) Format() string {
	if !v.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(v.Float, 'f', 2, 64)
}

func (v Value) String() string { return v.Format() }

func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Missing
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Some(f)
	return nil
}

// Scan implements sql.Scanner; NULL becomes Missing.
func (v *Value) Scan(src any) error {
	switch t := src.(type) {
	case nil:
		*v = Missing
	case float64:
		*v = Some(t)
	case int64:
		*v = Some(float64(t))
	case []byte:
		f, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return fmt.Errorf("scan value %q: %w", t, err)
		}
		*v = Some(f)
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return fmt.Errorf("scan value %q: %w", t, err)
		}
		*v = Some(f)
	default:
		return fmt.Errorf("scan value: unsupported type %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (v Value) Value() (driver.Value, error) {
	if !v.Valid {
		return nil, nil
	}
	return v.Float, nil
}
