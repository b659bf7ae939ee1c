package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// StaticDir is the absolute path of the directory served at /static/.
	// Relative STATIC_DIR values are resolved against the working directory.
	StaticDir string

	DBDriver          string
	DBDSN             string
	SQLitePath        string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBLogQueries      bool

	// DatasetPath replaces the compiled-in readings when set.
	DatasetPath string

	// MQTTBroker enables the status publisher when set.
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string
}

// MQTTEnabled reports whether a broker was configured.
func (c Config) MQTTEnabled() bool { return c.MQTTBroker != "" }

func LoadFromEnv() (Config, error) {
	appEnv := env("APP_ENV", "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(env("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}

	staticDir, err := filepath.Abs(env("STATIC_DIR", "static"))
	if err != nil {
		return Config{}, fmt.Errorf("STATIC_DIR %q: %w", env("STATIC_DIR", "static"), err)
	}

	cfg := Config{
		AppEnv:       appEnv,
		LogLevel:     level,
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		StaticDir:    staticDir,
		DBDriver:     env("DB_DRIVER", "sqlite3"),
		DBDSN:        env("DB_DSN", ""),
		SQLitePath:   env("SQLITE_PATH", ":memory:"),
		DatasetPath:  env("DATASET_PATH", ""),
		MQTTBroker:   env("MQTT_BROKER", ""),
		MQTTClientID: env("MQTT_CLIENT_ID", "ems-jade-dashboard"),
		MQTTTopic:    env("MQTT_TOPIC", "ems-jade/status"),
	}

	if cfg.DBMaxOpenConns, err = envInt("DB_MAX_OPEN_CONNS", 1); err != nil {
		return Config{}, err
	}
	if cfg.DBMaxIdleConns, err = envInt("DB_MAX_IDLE_CONNS", 1); err != nil {
		return Config{}, err
	}
	lifetime := env("DB_CONN_MAX_LIFETIME", "0s")
	if cfg.DBConnMaxLifetime, err = time.ParseDuration(lifetime); err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", lifetime, err)
	}
	logQueries := env("DB_LOG_QUERIES", "false")
	if cfg.DBLogQueries, err = strconv.ParseBool(logQueries); err != nil {
		return Config{}, fmt.Errorf("invalid DB_LOG_QUERIES %q: %w", logQueries, err)
	}

	if cfg.MQTTPort, err = envInt("MQTT_PORT", 1883); err != nil {
		return Config{}, err
	}
	if cfg.MQTTPort < 1 || cfg.MQTTPort > 65535 {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %d (allowed: 1-65535)", cfg.MQTTPort)
	}

	return cfg, nil
}

// env returns the trimmed variable or def when it is unset or blank.
func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	s := env(key, strconv.Itoa(def))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
