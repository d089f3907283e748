// Package postgresengine persists SeaFlow cruise results in PostgreSQL.
//
// It stores cruise metadata, SFL ship log rows, particle filtering
// parameters, and the registry of decoded raw event files. The store runs
// over any of three database adapters (pgx pool, database/sql, sqlx) and
// builds all SQL with goqu's postgres dialect. Table names take an optional
// prefix so several result sets can share one database.
package postgresengine
