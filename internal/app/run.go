package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tristmeister/ems-jade2/internal/config"
	"github.com/tristmeister/ems-jade2/internal/db"
	"github.com/tristmeister/ems-jade2/internal/httpapi"
	"github.com/tristmeister/ems-jade2/internal/migrate"
	"github.com/tristmeister/ems-jade2/internal/modules/waterquality"
	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/catalog"
	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/repository"
	"github.com/tristmeister/ems-jade2/internal/modules/waterquality/views"
	"github.com/tristmeister/ems-jade2/internal/mqtt"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"staticDir", cfg.StaticDir,
		"dbDriver", cfg.DBDriver,
		"sqlitePath", cfg.SQLitePath,
		"dbMaxOpenConns", cfg.DBMaxOpenConns,
		"dbMaxIdleConns", cfg.DBMaxIdleConns,
		"dbConnMaxLifetime", cfg.DBConnMaxLifetime,
		"dbLogQueries", cfg.DBLogQueries,
		"datasetPath", cfg.DatasetPath,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
	)

	dbConn, err := db.Open(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	applied, err := migrate.Run(ctx, dbConn)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	slog.Info("migrations applied", "count", applied)

	cat, err := catalog.Default()
	if err != nil {
		return err
	}
	repo := repository.NewRepository(dbConn)
	if err := waterquality.Seed(ctx, repo, cfg.DatasetPath); err != nil {
		return err
	}

	if err := views.LoadTemplates(); err != nil {
		return err
	}
	mux := httpapi.NewMux(dbConn, cfg.StaticDir)
	waterquality.RegisterFeature(mux, repo, cat)

	var publisher *mqtt.Publisher
	if cfg.MQTTEnabled() {
		publisher = mqtt.NewPublisher(cfg, slog.Default())
		publishStatus(ctx, cfg, publisher, repo, cat)
	}

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if publisher != nil {
		slog.Info("mqtt disconnecting")
		publisher.Disconnect()
	}

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// publishStatus never fails startup: the dashboard keeps serving when the
// broker is unreachable.
func publishStatus(ctx context.Context, cfg config.Config, publisher *mqtt.Publisher, repo repository.ReadingRepository, cat *catalog.Catalog) {
	connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
	defer connectCancel()

	if err := publisher.Connect(connectCtx); err != nil {
		slog.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		return
	}
	if err := waterquality.PublishStatus(connectCtx, publisher, cfg.MQTTTopic, repo, cat); err != nil {
		slog.Warn("mqtt status publish failed", "topic", cfg.MQTTTopic, "error", err)
	}
}
