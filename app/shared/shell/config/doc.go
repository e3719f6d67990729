// Package config provides configuration for the lending application.
//
// It contains factory functions for PostgreSQL connections using the supported drivers
// (pgx.Pool, sql.DB, sqlx.DB) and the application configuration loaded with viper.
package config
