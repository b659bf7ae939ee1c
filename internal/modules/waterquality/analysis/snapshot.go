package analysis

import (
	"time"

	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/types"
)

// SnapshotEntry is the latest value of one parameter with its threshold level.
type SnapshotEntry struct {
	Info  types.ParameterInfo
	Value types.Value
	Level types.Level
}

// Snapshot is the overview of the most recent reading.
type Snapshot struct {
	Date        time.Time
	Temperature float64
	Entries     []SnapshotEntry
}

// Catalog is the metadata lookup the snapshot needs.
type Catalog interface {
	All() []types.ParameterInfo
}

// Latest builds the snapshot of the last reading. ok is false for an empty
// sequence.
func Latest(readings []types.Reading, catalog Catalog) (snap Snapshot, ok bool) {
	if len(readings) == 0 {
		return Snapshot{}, false
	}
	last := readings[len(readings)-1]
	infos := catalog.All()
	snap = Snapshot{
		Date:        last.Date,
		Temperature: last.Temperature,
		Entries:     make([]SnapshotEntry, 0, len(infos)),
	}
	for _, info := range infos {
		v := last.Get(info.Parameter)
		snap.Entries = append(snap.Entries, SnapshotEntry{
			Info:  info,
			Value: v,
			Level: info.Level(v),
		})
	}
	return snap, true
}
