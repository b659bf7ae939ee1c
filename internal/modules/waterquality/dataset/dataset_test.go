package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/types"
)

func TestDefault(t *testing.T) {
	readings, err := Default()
	if err != nil {
		t.Fatalf("Default() = %v; want nil", err)
	}
	if len(readings) != 9 {
		t.Fatalf("len(Default()) = %d; want 9", len(readings))
	}

	first := readings[0]
	if first.DateString() != "2024-08-27" {
		t.Errorf("first date = %s; want 2024-08-27", first.DateString())
	}
	if first.Temperature != 17 || first.PrevDayTemp != 16 {
		t.Errorf("first temperatures = %v/%v; want 17/16", first.Temperature, first.PrevDayTemp)
	}
	if first.Get(types.Nitrat).Valid {
		t.Errorf("first nitrat = %v; want missing", first.Get(types.Nitrat))
	}
	if got := first.Get(types.Nitrit); got != types.Some(0.05) {
		t.Errorf("first nitrit = %+v; want 0.05", got)
	}
	if first.Notes != "Enten :)" {
		t.Errorf("first notes = %q", first.Notes)
	}

	last := readings[len(readings)-1]
	if last.DateString() != "2025-01-28" {
		t.Errorf("last date = %s; want 2025-01-28", last.DateString())
	}
	if got := last.Get(types.Sauerstoff); got != types.Some(7.7) {
		t.Errorf("last sauerstoff = %+v; want 7.7", got)
	}
}

func TestLoad_errors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{name: "empty", doc: "", wantErr: ErrEmpty.Error()},
		{name: "bad date", doc: "[[reading]]\ndate = \"27.08.2024\"\ntemperature = 1.0\nprevDayTemp = 1.0\n", wantErr: "invalid date"},
		{name: "missing temperature", doc: "[[reading]]\ndate = \"2024-08-27\"\nprevDayTemp = 1.0\n", wantErr: "temperature is required"},
		{name: "missing prev day", doc: "[[reading]]\ndate = \"2024-08-27\"\ntemperature = 1.0\n", wantErr: "prevDayTemp is required"},
		{name: "unknown field", doc: "[[reading]]\ndate = \"2024-08-27\"\ntemperature = 1.0\nprevDayTemp = 1.0\nlead = 0.1\n", wantErr: "unknown fields"},
		{
			name: "duplicate date",
			doc: "[[reading]]\ndate = \"2024-08-27\"\ntemperature = 1.0\nprevDayTemp = 1.0\n" +
				"[[reading]]\ndate = \"2024-08-27\"\ntemperature = 2.0\nprevDayTemp = 1.0\n",
			wantErr: "is not after",
		},
		{
			name: "descending dates",
			doc: "[[reading]]\ndate = \"2024-09-10\"\ntemperature = 1.0\nprevDayTemp = 1.0\n" +
				"[[reading]]\ndate = \"2024-08-27\"\ntemperature = 2.0\nprevDayTemp = 1.0\n",
			wantErr: "is not after",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatalf("Load() = nil; want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() = %q; want error containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "readings.toml")
	doc := "[[reading]]\ndate = \"2025-02-11\"\ntemperature = 4.0\nprevDayTemp = 3.0\nph = 7.1\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	readings, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() = %v; want nil", err)
	}
	if len(readings) != 1 || readings[0].Get(types.PH) != types.Some(7.1) {
		t.Errorf("LoadFile() = %+v; want one reading with ph 7.1", readings)
	}

	_, err = LoadFile(filepath.Join(dir, "missing.toml"))
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile(missing) = %v; want os.ErrNotExist", err)
	}
}
