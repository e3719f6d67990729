// Package adapters hides the differences between pgxpool, database/sql and sqlx
// behind one small interface for queries, statements and transactions.
package adapters
