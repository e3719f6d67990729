// Package postgreswrapper creates postgresengine stores over the adapter selected by ADAPTER_TYPE
// (pgx.pool, sql.db or sqlx.db) for integration tests against a real PostgreSQL database.
//
// Tests using it are skipped unless LIBRACORE_POSTGRES_TESTS=1. The DSN defaults to a local
// test database and can be overridden with LIBRACORE_TEST_DSN.
package postgreswrapper
