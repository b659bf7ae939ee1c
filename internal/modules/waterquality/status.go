package waterquality

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/analysis"
	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/repository"
	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/types"
)

// StatusPublisher sends one message to the broker.
type StatusPublisher interface {
	Publish(ctx context.Context, topic string, payload []byte, retained bool) error
}

type Status struct {
	Date        string        `json:"date"`
	Temperature float64       `json:"temperature"`
	Parameters  []StatusEntry `json:"parameters"`
}

type StatusEntry struct {
	Key   string      `json:"key"`
	Label string      `json:"label"`
	Value types.Value `json:"value"`
	Unit  string      `json:"unit"`
	Level types.Level `json:"level"`
}

// BuildStatus encodes the latest reading with its threshold levels.
func BuildStatus(readings []types.Reading, catalog analysis.Catalog) ([]byte, error) {
	snap, ok := analysis.Latest(readings, catalog)
	if !ok {
		return nil, fmt.Errorf("build status: %w", analysis.ErrInsufficientData)
	}

	status := Status{
		Date:        snap.Date.Format(types.DateLayout),
		Temperature: snap.Temperature,
		Parameters:  make([]StatusEntry, 0, len(snap.Entries)),
	}
	for _, e := range snap.Entries {
		status.Parameters = append(status.Parameters, StatusEntry{
			Key:   e.Info.Parameter.Key(),
			Label: e.Info.Label,
			Value: e.Value,
			Unit:  e.Info.Unit,
			Level: e.Level,
		})
	}
	return json.Marshal(status)
}

// PublishStatus publishes the current status as a retained message on topic.
func PublishStatus(ctx context.Context, pub StatusPublisher, topic string, repo repository.ReadingRepository, catalog analysis.Catalog) error {
	readings, err := repo.GetReadings(ctx)
	if err != nil {
		return fmt.Errorf("get readings: %w", err)
	}
	payload, err := BuildStatus(readings, catalog)
	if err != nil {
		return err
	}
	if err := pub.Publish(ctx, topic, payload, true); err != nil {
		return err
	}
	slog.Info("status published", "topic", topic, "date", readings[len(readings)-1].DateString())
	return nil
}
