package config

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationName = "libracore"

// PostgresPGXPoolConfig creates a pgxpool.Config for the given DSN.
// Pool limits are fixed, an application_name from the DSN wins over the default one.
func PostgresPGXPoolConfig(dsn string) (*pgxpool.Config, error) {
	const (
		maxConns          = int32(8)
		minConns          = int32(2)
		maxConnLifetime   = time.Hour
		maxConnIdleTime   = 5 * time.Minute
		healthCheckPeriod = time.Minute
		connectTimeout    = 5 * time.Second
	)

	dbConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	dbConfig.MaxConns = maxConns
	dbConfig.MinConns = minConns
	dbConfig.MaxConnLifetime = maxConnLifetime
	dbConfig.MaxConnIdleTime = maxConnIdleTime
	dbConfig.HealthCheckPeriod = healthCheckPeriod
	dbConfig.ConnConfig.ConnectTimeout = connectTimeout

	if _, ok := dbConfig.ConnConfig.RuntimeParams["application_name"]; !ok {
		dbConfig.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	return dbConfig, nil
}
