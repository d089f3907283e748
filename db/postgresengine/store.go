package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect import
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/ctberthiaume/seaflowpy/db"
	"github.com/ctberthiaume/seaflowpy/db/postgresengine/internal/adapters"
)

const (
	metadataTableName = "metadata"
	sflTableName      = "sfl"
	filterTableName   = "filter"
	rawFileTableName  = "raw_file"

	dialectPostgres = "postgres"

	colCruise         = "cruise"
	colSerial         = "inst"
	colFile           = "file"
	colDate           = "date"
	colFileDuration   = "file_duration"
	colLat            = "lat"
	colLon            = "lon"
	colConductivity   = "conductivity"
	colSalinity       = "salinity"
	colOceanTmp       = "ocean_tmp"
	colPar            = "par"
	colBulkRed        = "bulk_red"
	colStreamPressure = "stream_pressure"
	colFlowRate       = "flow_rate"
	colEventRate      = "event_rate"
	colID             = "id"
	colQuantile       = "quantile"
	colBeadsFscSmall  = "beads_fsc_small"
	colBeadsD1        = "beads_d1"
	colBeadsD2        = "beads_d2"
	colWidth          = "width"
	colNotchSmallD1   = "notch_small_d1"
	colNotchSmallD2   = "notch_small_d2"
	colNotchLargeD1   = "notch_large_d1"
	colNotchLargeD2   = "notch_large_d2"
	colOffsetSmallD1  = "offset_small_d1"
	colOffsetSmallD2  = "offset_small_d2"
	colOffsetLargeD1  = "offset_large_d1"
	colOffsetLargeD2  = "offset_large_d2"
	colYear           = "year"
	colDay            = "day"
	colEventCount     = "event_count"

	logMsgBuildQueryFailed = "failed to build query"
	logMsgQueryFailed      = "database query execution failed"
	logMsgExecFailed       = "database execution failed"
	logMsgCloseRowsFailed  = "failed to close database rows"
	logMsgScanRowFailed    = "failed to scan database row"
	logMsgRowsSaved        = "store operation: rows saved"
	logMsgRowsLoaded       = "store operation: rows loaded"
	logMsgSQLExecuted      = "executed sql"
	logAttrError           = "error"
	logAttrQuery           = "query"
	logAttrTable           = "table"
	logAttrRowCount        = "row_count"
	logAttrDurationMS      = "duration_ms"
)

// Store persists SeaFlow cruise results in PostgreSQL.
// It is safe for concurrent use; all state is the connection pool held by
// the adapter.
type Store struct {
	db          adapters.DBAdapter
	tablePrefix string
	logger      db.Logger
}

// NewStoreFromPGXPool creates a Store over a pgx connection pool.
func NewStoreFromPGXPool(pool *pgxpool.Pool, options ...Option) (Store, error) {
	if pool == nil {
		return Store{}, db.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(pool), options...)
}

// NewStoreFromSQLDB creates a Store over a database/sql pool,
// e.g. one opened with the lib/pq driver.
func NewStoreFromSQLDB(sqlDB *sql.DB, options ...Option) (Store, error) {
	if sqlDB == nil {
		return Store{}, db.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(sqlDB), options...)
}

// NewStoreFromSQLX creates a Store over a sqlx pool.
func NewStoreFromSQLX(sqlxDB *sqlx.DB, options ...Option) (Store, error) {
	if sqlxDB == nil {
		return Store{}, db.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(sqlxDB), options...)
}

func newStore(adapter adapters.DBAdapter, options ...Option) (Store, error) {
	s := Store{db: adapter}

	for _, option := range options {
		if err := option(&s); err != nil {
			return Store{}, err
		}
	}

	return s, nil
}

// SaveMetadata replaces the database's single metadata row.
func (s Store) SaveMetadata(ctx context.Context, meta db.Metadata) error {
	table := s.tableName(metadataTableName)
	builder := goqu.Dialect(dialectPostgres)

	deleteSQL, _, deleteErr := builder.Delete(table).ToSQL()
	if deleteErr != nil {
		return s.buildError(deleteErr, table)
	}

	insertSQL, _, insertErr := builder.Insert(table).
		Rows(goqu.Record{colCruise: meta.Cruise, colSerial: meta.Serial}).
		ToSQL()
	if insertErr != nil {
		return s.buildError(insertErr, table)
	}

	if _, err := s.exec(ctx, deleteSQL); err != nil {
		return err
	}

	if _, err := s.exec(ctx, insertSQL); err != nil {
		return err
	}

	s.logOperation(logMsgRowsSaved, logAttrTable, table, logAttrRowCount, 1)

	return nil
}

// Metadata returns the database's metadata row.
// It fails with db.ErrNoMetadata when none has been saved.
func (s Store) Metadata(ctx context.Context) (db.Metadata, error) {
	table := s.tableName(metadataTableName)

	querySQL, _, buildErr := goqu.Dialect(dialectPostgres).
		From(table).
		Select(colCruise, colSerial).
		Limit(1).
		ToSQL()
	if buildErr != nil {
		return db.Metadata{}, s.buildError(buildErr, table)
	}

	rows, queryErr := s.query(ctx, querySQL)
	if queryErr != nil {
		return db.Metadata{}, queryErr
	}
	defer s.closeRows(rows)

	if !rows.Next() {
		return db.Metadata{}, db.ErrNoMetadata
	}

	var meta db.Metadata
	if scanErr := rows.Scan(&meta.Cruise, &meta.Serial); scanErr != nil {
		return db.Metadata{}, s.scanError(scanErr)
	}

	return meta, nil
}

// SaveSFL replaces the SFL rows stored for a cruise.
func (s Store) SaveSFL(ctx context.Context, cruise string, sflRows []db.SFLRow) error {
	if cruise == "" {
		return db.ErrMissingCruise
	}

	table := s.tableName(sflTableName)
	builder := goqu.Dialect(dialectPostgres)

	deleteSQL, _, deleteErr := builder.Delete(table).
		Where(goqu.Ex{colCruise: cruise}).
		ToSQL()
	if deleteErr != nil {
		return s.buildError(deleteErr, table)
	}

	if _, err := s.exec(ctx, deleteSQL); err != nil {
		return err
	}

	if len(sflRows) == 0 {
		return nil
	}

	records := make([]any, len(sflRows))
	for i, row := range sflRows {
		records[i] = goqu.Record{
			colCruise:         cruise,
			colFile:           row.File,
			colDate:           row.Date,
			colFileDuration:   nullableFloat(row.FileDuration),
			colLat:            nullableFloat(row.Lat),
			colLon:            nullableFloat(row.Lon),
			colConductivity:   nullableFloat(row.Conductivity),
			colSalinity:       nullableFloat(row.Salinity),
			colOceanTmp:       nullableFloat(row.OceanTmp),
			colPar:            nullableFloat(row.Par),
			colBulkRed:        nullableFloat(row.BulkRed),
			colStreamPressure: nullableFloat(row.StreamPressure),
			colFlowRate:       nullableFloat(row.FlowRate),
			colEventRate:      nullableFloat(row.EventRate),
		}
	}

	insertSQL, _, insertErr := builder.Insert(table).Rows(records...).ToSQL()
	if insertErr != nil {
		return s.buildError(insertErr, table)
	}

	if _, err := s.exec(ctx, insertSQL); err != nil {
		return err
	}

	s.logOperation(logMsgRowsSaved, logAttrTable, table, logAttrRowCount, len(sflRows))

	return nil
}

// SaveFilterParams appends filtering parameter sets. Every set is validated
// before anything is written.
func (s Store) SaveFilterParams(ctx context.Context, params []db.FilterParams) error {
	for _, p := range params {
		if validateErr := db.ValidateFilterParams(p); validateErr != nil {
			return validateErr
		}
	}

	if len(params) == 0 {
		return nil
	}

	table := s.tableName(filterTableName)

	records := make([]any, len(params))
	for i, p := range params {
		records[i] = goqu.Record{
			colID:            p.ID.String(),
			colCruise:        p.Cruise,
			colDate:          p.Date,
			colQuantile:      p.Quantile,
			colBeadsFscSmall: p.BeadsFscSmall,
			colBeadsD1:       p.BeadsD1,
			colBeadsD2:       p.BeadsD2,
			colWidth:         p.Width,
			colNotchSmallD1:  p.NotchSmallD1,
			colNotchSmallD2:  p.NotchSmallD2,
			colNotchLargeD1:  p.NotchLargeD1,
			colNotchLargeD2:  p.NotchLargeD2,
			colOffsetSmallD1: p.OffsetSmallD1,
			colOffsetSmallD2: p.OffsetSmallD2,
			colOffsetLargeD1: p.OffsetLargeD1,
			colOffsetLargeD2: p.OffsetLargeD2,
		}
	}

	insertSQL, _, insertErr := goqu.Dialect(dialectPostgres).
		Insert(table).
		Rows(records...).
		ToSQL()
	if insertErr != nil {
		return s.buildError(insertErr, table)
	}

	if _, err := s.exec(ctx, insertSQL); err != nil {
		return err
	}

	s.logOperation(logMsgRowsSaved, logAttrTable, table, logAttrRowCount, len(params))

	return nil
}

// SaveRawFiles replaces the raw file registry rows for the given records,
// keyed by cruise and canonical file identity.
func (s Store) SaveRawFiles(ctx context.Context, cruise string, fileRecords []db.RawFileRecord) error {
	if cruise == "" {
		return db.ErrMissingCruise
	}

	if len(fileRecords) == 0 {
		return nil
	}

	table := s.tableName(rawFileTableName)
	builder := goqu.Dialect(dialectPostgres)

	fileIDs := make([]string, len(fileRecords))
	records := make([]any, len(fileRecords))

	for i, rec := range fileRecords {
		fileIDs[i] = rec.FileID
		records[i] = goqu.Record{
			colCruise:     cruise,
			colFile:       rec.FileID,
			colYear:       rec.Year,
			colDay:        rec.Day,
			colEventCount: rec.EventCount,
		}
	}

	deleteSQL, _, deleteErr := builder.Delete(table).
		Where(goqu.Ex{colCruise: cruise, colFile: fileIDs}).
		ToSQL()
	if deleteErr != nil {
		return s.buildError(deleteErr, table)
	}

	insertSQL, _, insertErr := builder.Insert(table).Rows(records...).ToSQL()
	if insertErr != nil {
		return s.buildError(insertErr, table)
	}

	if _, err := s.exec(ctx, deleteSQL); err != nil {
		return err
	}

	if _, err := s.exec(ctx, insertSQL); err != nil {
		return err
	}

	s.logOperation(logMsgRowsSaved, logAttrTable, table, logAttrRowCount, len(fileRecords))

	return nil
}

// RawFiles lists a cruise's registered raw files in chronological order.
func (s Store) RawFiles(ctx context.Context, cruise string) ([]db.RawFileRecord, error) {
	table := s.tableName(rawFileTableName)

	querySQL, _, buildErr := goqu.Dialect(dialectPostgres).
		From(table).
		Select(colFile, colYear, colDay, colEventCount).
		Where(goqu.Ex{colCruise: cruise}).
		Order(goqu.I(colYear).Asc(), goqu.I(colDay).Asc(), goqu.I(colFile).Asc()).
		ToSQL()
	if buildErr != nil {
		return nil, s.buildError(buildErr, table)
	}

	rows, queryErr := s.query(ctx, querySQL)
	if queryErr != nil {
		return nil, queryErr
	}
	defer s.closeRows(rows)

	fileRecords := make([]db.RawFileRecord, 0)

	for rows.Next() {
		var rec db.RawFileRecord

		if scanErr := rows.Scan(&rec.FileID, &rec.Year, &rec.Day, &rec.EventCount); scanErr != nil {
			return nil, s.scanError(scanErr)
		}

		fileRecords = append(fileRecords, rec)
	}

	s.logOperation(logMsgRowsLoaded, logAttrTable, table, logAttrRowCount, len(fileRecords))

	return fileRecords, nil
}

func (s Store) tableName(base string) string {
	return s.tablePrefix + base
}

// query executes a SQL query with debug timing.
func (s Store) query(ctx context.Context, querySQL string) (adapters.DBRows, error) {
	start := time.Now()
	rows, queryErr := s.db.Query(ctx, querySQL)
	s.logQueryWithDuration(querySQL, time.Since(start))

	if queryErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgQueryFailed, logAttrError, queryErr.Error(), logAttrQuery, querySQL)
		}

		return nil, errors.Join(db.ErrQueryFailed, queryErr)
	}

	return rows, nil
}

// exec executes a SQL statement with debug timing.
func (s Store) exec(ctx context.Context, execSQL string) (int64, error) {
	start := time.Now()
	result, execErr := s.db.Exec(ctx, execSQL)
	s.logQueryWithDuration(execSQL, time.Since(start))

	if execErr != nil {
		if s.logger != nil {
			s.logger.Error(logMsgExecFailed, logAttrError, execErr.Error(), logAttrQuery, execSQL)
		}

		return 0, errors.Join(db.ErrExecFailed, execErr)
	}

	rowsAffected, affectedErr := result.RowsAffected()
	if affectedErr != nil {
		return 0, errors.Join(db.ErrGettingRowsAffectedFailed, affectedErr)
	}

	return rowsAffected, nil
}

// closeRows safely closes database rows and logs any errors.
func (s Store) closeRows(rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		if s.logger != nil {
			s.logger.Warn(logMsgCloseRowsFailed, logAttrError, closeErr.Error())
		}
	}
}

func (s Store) buildError(cause error, table string) error {
	if s.logger != nil {
		s.logger.Error(logMsgBuildQueryFailed, logAttrError, cause.Error(), logAttrTable, table)
	}

	return errors.Join(db.ErrBuildingQueryFailed, cause)
}

func (s Store) scanError(cause error) error {
	if s.logger != nil {
		s.logger.Error(logMsgScanRowFailed, logAttrError, cause.Error())
	}

	return errors.Join(db.ErrScanningDBRowFailed, cause)
}

func (s Store) logQueryWithDuration(querySQL string, duration time.Duration) {
	if s.logger != nil {
		s.logger.Debug(logMsgSQLExecuted, logAttrDurationMS, durationToMilliseconds(duration), logAttrQuery, querySQL)
	}
}

func (s Store) logOperation(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds
// with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}

	return *v
}
