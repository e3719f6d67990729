package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage engines.
const (
	StorageEngineMemory   = "memory"
	StorageEnginePostgres = "postgres"
)

// Postgres adapter types.
const (
	AdapterTypePGXPool = "pgx.pool"
	AdapterTypeSQLDB   = "sql.db"
	AdapterTypeSQLX    = "sqlx.db"
)

const (
	keyHTTPAddr        = "http.addr"
	keyDatabaseURL     = "database.url"
	keyStorageEngine   = "storage.engine"
	keyAdapterType     = "storage.adapter_type"
	keyLogLevel        = "log.level"
	keyOverdueSchedule = "overdue.schedule"
	keyRunMigrations   = "database.run_migrations"
	keyShutdownTimeout = "http.shutdown_timeout"
)

var (
	// ErrUnknownStorageEngine is returned when STORAGE_ENGINE is neither memory nor postgres.
	ErrUnknownStorageEngine = errors.New("unknown storage engine")

	// ErrUnknownAdapterType is returned when ADAPTER_TYPE is not a supported postgres adapter.
	ErrUnknownAdapterType = errors.New("unknown adapter type")

	// ErrMissingDatabaseURL is returned when the postgres engine is selected without DATABASE_URL.
	ErrMissingDatabaseURL = errors.New("database url must be set for the postgres storage engine")
)

// AppConfig is the configuration of the libracore server.
type AppConfig struct {
	HTTPAddr        string
	DatabaseURL     string
	StorageEngine   string
	AdapterType     string
	LogLevel        slog.Level
	OverdueSchedule string
	RunMigrations   bool
	ShutdownTimeout time.Duration
}

// Load reads the configuration from defaults, an optional env file and the environment.
// Variables already present in the environment win over the env file.
func Load(envFile string) (AppConfig, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return AppConfig{}, err
		}
	}

	v := viper.New()

	v.SetDefault(keyHTTPAddr, ":8080")
	v.SetDefault(keyStorageEngine, StorageEngineMemory)
	v.SetDefault(keyAdapterType, AdapterTypePGXPool)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyOverdueSchedule, "@every 1h")
	v.SetDefault(keyRunMigrations, true)
	v.SetDefault(keyShutdownTimeout, 10*time.Second)

	bindings := map[string]string{
		keyHTTPAddr:        "HTTP_ADDR",
		keyDatabaseURL:     "DATABASE_URL",
		keyStorageEngine:   "STORAGE_ENGINE",
		keyAdapterType:     "ADAPTER_TYPE",
		keyLogLevel:        "LOG_LEVEL",
		keyOverdueSchedule: "OVERDUE_SCHEDULE",
		keyRunMigrations:   "RUN_MIGRATIONS",
		keyShutdownTimeout: "SHUTDOWN_TIMEOUT",
	}

	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return AppConfig{}, err
		}
	}

	cfg := AppConfig{
		HTTPAddr:        v.GetString(keyHTTPAddr),
		DatabaseURL:     v.GetString(keyDatabaseURL),
		StorageEngine:   strings.ToLower(v.GetString(keyStorageEngine)),
		AdapterType:     strings.ToLower(v.GetString(keyAdapterType)),
		LogLevel:        ParseLogLevel(v.GetString(keyLogLevel)),
		OverdueSchedule: v.GetString(keyOverdueSchedule),
		RunMigrations:   v.GetBool(keyRunMigrations),
		ShutdownTimeout: v.GetDuration(keyShutdownTimeout),
	}

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

// Validate checks the storage selection.
func (c AppConfig) Validate() error {
	switch c.StorageEngine {
	case StorageEngineMemory:
		return nil

	case StorageEnginePostgres:
		if c.DatabaseURL == "" {
			return ErrMissingDatabaseURL
		}

	default:
		return errors.Join(ErrUnknownStorageEngine, errors.New(c.StorageEngine))
	}

	switch c.AdapterType {
	case AdapterTypePGXPool, AdapterTypeSQLDB, AdapterTypeSQLX:
		return nil
	default:
		return errors.Join(ErrUnknownAdapterType, errors.New(c.AdapterType))
	}
}

// ParseLogLevel maps debug, info, warn and error to a slog.Level. Anything else is info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
