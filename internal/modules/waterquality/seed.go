package waterquality

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/dataset"
	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/repository"
	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/types"
)

// LoadReadings returns the compiled-in sample readings, or the readings of
// the TOML file at path when path is set.
func LoadReadings(path string) ([]types.Reading, error) {
	if path == "" {
		return dataset.Default()
	}
	return dataset.LoadFile(path)
}

// Seed replaces the stored readings with the dataset selected by path.
func Seed(ctx context.Context, repo repository.ReadingRepository, path string) error {
	readings, err := LoadReadings(path)
	if err != nil {
		return fmt.Errorf("load readings: %w", err)
	}
	if err := repo.Seed(ctx, readings); err != nil {
		return fmt.Errorf("seed readings: %w", err)
	}
	stored, err := repo.GetReadingsCount(ctx)
	if err != nil {
		return fmt.Errorf("count seeded readings: %w", err)
	}
	if stored != len(readings) {
		return fmt.Errorf("seed readings: stored %d of %d", stored, len(readings))
	}

	source := path
	if source == "" {
		source = "embedded"
	}
	slog.Info("readings seeded",
		"count", stored,
		"source", source,
		"first", readings[0].DateString(),
		"last", readings[len(readings)-1].DateString(),
	)
	return nil
}
