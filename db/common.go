package db

import (
	"errors"
)

var ErrNilDatabaseConnection = errors.New("nil database connection supplied")
var ErrEmptyTablePrefix = errors.New("empty table prefix supplied")
var ErrBuildingQueryFailed = errors.New("failed to build query")
var ErrQueryFailed = errors.New("database query execution failed")
var ErrExecFailed = errors.New("database execution failed")
var ErrScanningDBRowFailed = errors.New("failed to scan database row")
var ErrGettingRowsAffectedFailed = errors.New("failed to get rows affected count")
var ErrNoMetadata = errors.New("no metadata row in database")

// Logger interface for SQL query logging, operational metrics, warnings,
// and error reporting. *slog.Logger satisfies it directly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
