package postgresengine

import (
	"github.com/ctberthiaume/seaflowpy/db"
)

// Option defines a functional option for configuring a Store.
type Option func(*Store) error

// WithTablePrefix prepends a prefix to every table name used by the Store,
// e.g. a prefix of "seaflow_" stores SFL rows in seaflow_sfl.
func WithTablePrefix(prefix string) Option {
	return func(s *Store) error {
		if prefix == "" {
			return db.ErrEmptyTablePrefix
		}

		s.tablePrefix = prefix

		return nil
	}
}

// WithLogger sets the logger for the Store.
//
// Debug level: SQL queries with execution timing (development use)
// Info level: row counts and durations (production-safe)
// Warn level: non-critical issues like cleanup failures
// Error level: failures that abort an operation.
func WithLogger(logger db.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}
