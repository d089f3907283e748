// Package sfl reads, validates, repairs, and writes SFL ship log files.
//
// An SFL file is tab-delimited metadata recorded alongside EVT acquisition,
// one row per event file: position, conductivity, stream pressure, event
// rate, and so on. File column headers ("OCEAN TEMP") map to the canonical
// field names used by the database tables ("ocean_tmp"); this package works
// in canonical names throughout and converts at the file boundary.
package sfl

import (
	"encoding/csv"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ctberthiaume/seaflowpy/seaflowfile"
)

var ErrEmptySFL = errors.New("sfl file has no header row")

// Delimiter separates SFL fields.
const Delimiter = '\t'

// Canonical field names.
const (
	FieldFile           = "file"
	FieldDate           = "date"
	FieldFileDuration   = "file_duration"
	FieldLat            = "lat"
	FieldLon            = "lon"
	FieldConductivity   = "conductivity"
	FieldSalinity       = "salinity"
	FieldOceanTmp       = "ocean_tmp"
	FieldPar            = "par"
	FieldBulkRed        = "bulk_red"
	FieldStreamPressure = "stream_pressure"
	FieldFlowRate       = "flow_rate"
	FieldEventRate      = "event_rate"
)

// NumericColumns lists the canonical fields holding numeric values.
var NumericColumns = []string{
	FieldFileDuration, FieldLat, FieldLon, FieldConductivity, FieldSalinity,
	FieldOceanTmp, FieldPar, FieldBulkRed, FieldStreamPressure, FieldEventRate,
}

// OutputColumns is the column set and order written by WriteFile unless all
// columns are requested.
var OutputColumns = []string{
	FieldFile, FieldDate, FieldFileDuration, FieldLat, FieldLon,
	FieldConductivity, FieldSalinity, FieldOceanTmp, FieldPar, FieldBulkRed,
	FieldStreamPressure, FieldEventRate,
}

// tableColumns is every canonical field a database import expects.
var tableColumns = []string{
	FieldFile, FieldDate, FieldFileDuration, FieldLat, FieldLon,
	FieldConductivity, FieldSalinity, FieldOceanTmp, FieldPar, FieldBulkRed,
	FieldStreamPressure, FieldFlowRate, FieldEventRate,
}

// Acceptance limits for numeric fields.
const (
	MinFileDuration   = 0.0
	MinLat, MaxLat    = -90.0, 90.0
	MinLon, MaxLon    = -180.0, 180.0
	MinStreamPressure = 1e-4
	MinEventRate      = 0.0
)

// File is one parsed SFL file: the canonical column names in file order and
// the data rows in file order.
type File struct {
	Columns []string
	Records []Record
}

// Record is one SFL data row. Line is the 1-based line number in the source
// file, where the header is line 1. Fields maps canonical column names to
// raw cell values.
type Record struct {
	Line   int
	Fields map[string]string
}

// Value returns the raw cell for a column and whether the cell holds data;
// empty and NA-like cells report false.
func (rec Record) Value(column string) (string, bool) {
	v := rec.Fields[column]
	if isNA(v) {
		return v, false
	}

	return v, true
}

// Float parses a column as a number; ok is false for missing or
// unparseable cells.
func (rec Record) Float(column string) (float64, bool) {
	v, present := rec.Value(column)
	if !present {
		return 0, false
	}

	f, parseErr := strconv.ParseFloat(v, 64)
	if parseErr != nil {
		return 0, false
	}

	return f, true
}

// HasColumn reports whether the file carries a column.
func (f *File) HasColumn(column string) bool {
	for _, c := range f.Columns {
		if c == column {
			return true
		}
	}

	return false
}

// naValues are the cell values treated as missing data.
var naValues = map[string]struct{}{
	"": {}, "NA": {}, "NaN": {}, "nan": {}, "null": {}, "n/a": {},
}

func isNA(v string) bool {
	_, ok := naValues[v]
	return ok
}

// canonicalByHeader maps SFL file column headers to canonical field names.
var canonicalByHeader = map[string]string{
	"FILE":            FieldFile,
	"DATE":            FieldDate,
	"FILE DURATION":   FieldFileDuration,
	"LAT":             FieldLat,
	"LON":             FieldLon,
	"CONDUCTIVITY":    FieldConductivity,
	"SALINITY":        FieldSalinity,
	"OCEAN TEMP":      FieldOceanTmp, // not a typo
	"PAR":             FieldPar,
	"BULK RED":        FieldBulkRed,
	"STREAM PRESSURE": FieldStreamPressure,
	"FLOW RATE":       FieldFlowRate,
	"EVENT RATE":      FieldEventRate,
}

// headerByCanonical is the reverse mapping, for writing.
var headerByCanonical = func() map[string]string {
	m := make(map[string]string, len(canonicalByHeader))
	for header, canonical := range canonicalByHeader {
		m[canonical] = header
	}
	return m
}()

// Read parses SFL data into a File. Column headers matching the SFL file
// convention are renamed to canonical field names; unknown headers are kept
// as given.
func Read(r io.Reader) (*File, error) {
	cr := csv.NewReader(r)
	cr.Comma = Delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, headerErr := cr.Read()
	if headerErr != nil {
		if errors.Is(headerErr, io.EOF) {
			return nil, ErrEmptySFL
		}

		return nil, headerErr
	}

	columns := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if canonical, ok := canonicalByHeader[h]; ok {
			columns[i] = canonical
		} else {
			columns[i] = h
		}
	}

	f := &File{Columns: columns}
	line := 1

	for {
		row, rowErr := cr.Read()
		if rowErr != nil {
			if errors.Is(rowErr, io.EOF) {
				break
			}

			return nil, rowErr
		}

		line++
		fields := make(map[string]string, len(columns))

		for i, column := range columns {
			if i < len(row) {
				fields[column] = row[i]
			}
		}

		f.Records = append(f.Records, Record{Line: line, Fields: fields})
	}

	return f, nil
}

// Write serializes a File as tab-delimited text with SFL file column
// headers, NA for missing cells, and numeric cells formatted to four decimal
// places. Unless allColumns is set, only OutputColumns are written.
func Write(w io.Writer, f *File, allColumns bool) error {
	columns := OutputColumns
	if allColumns {
		columns = f.Columns
	}

	cw := csv.NewWriter(w)
	cw.Comma = Delimiter

	header := make([]string, len(columns))
	for i, column := range columns {
		if fileHeader, ok := headerByCanonical[column]; ok {
			header[i] = fileHeader
		} else {
			header[i] = column
		}
	}

	if writeErr := cw.Write(header); writeErr != nil {
		return writeErr
	}

	numeric := make(map[string]struct{}, len(NumericColumns))
	for _, column := range NumericColumns {
		numeric[column] = struct{}{}
	}

	for _, rec := range f.Records {
		row := make([]string, len(columns))

		for i, column := range columns {
			v, present := rec.Value(column)
			if !present {
				row[i] = "NA"
				continue
			}

			if _, isNumeric := numeric[column]; isNumeric {
				if parsed, parseErr := strconv.ParseFloat(v, 64); parseErr == nil {
					row[i] = strconv.FormatFloat(parsed, 'f', 4, 64)
					continue
				}
			}

			row[i] = v
		}

		if writeErr := cw.Write(row); writeErr != nil {
			return writeErr
		}
	}

	cw.Flush()

	return cw.Error()
}

// Fix returns a copy of f prepared for database import:
//
//   - a date column is added when absent, filled from filename datestamps
//   - file values are rewritten to canonical identity strings
//   - stream pressure values at or below zero become MinStreamPressure
//   - any missing database columns are added, empty
func Fix(f *File) *File {
	fixed := cloneFile(f)

	if !fixed.HasColumn(FieldDate) {
		fixed.Columns = append(fixed.Columns, FieldDate)

		for i := range fixed.Records {
			date := ""
			if identity, err := seaflowfile.Identify(fixed.Records[i].Fields[FieldFile]); err == nil {
				date = identity.Filename.RFC3339()
			}
			fixed.Records[i].Fields[FieldDate] = date
		}
	}

	for i := range fixed.Records {
		rec := &fixed.Records[i]

		// Leave the file value alone when it cannot be parsed; the
		// validation pass reports it.
		if identity, err := seaflowfile.Identify(rec.Fields[FieldFile]); err == nil {
			rec.Fields[FieldFile] = identity.ID
		}

		if pressure, ok := rec.Float(FieldStreamPressure); ok && pressure <= 0 {
			rec.Fields[FieldStreamPressure] = strconv.FormatFloat(MinStreamPressure, 'g', -1, 64)
		}
	}

	for _, column := range tableColumns {
		if !fixed.HasColumn(column) {
			fixed.Columns = append(fixed.Columns, column)
		}
	}

	return fixed
}

// FixEventRates returns a copy of f with event_rate recomputed from per-file
// event counts, keyed by canonical file identity. Rows without a usable
// count or duration keep their recorded rate.
func FixEventRates(f *File, eventCounts map[string]int64) *File {
	fixed := cloneFile(f)

	for i := range fixed.Records {
		rec := &fixed.Records[i]

		duration, ok := rec.Float(FieldFileDuration)
		if !ok {
			continue
		}

		count, found := eventCounts[rec.Fields[FieldFile]]
		if !found {
			continue
		}

		rate := 0.0
		if duration != 0 {
			rate = float64(count) / duration
		}

		rec.Fields[FieldEventRate] = strconv.FormatFloat(rate, 'g', -1, 64)
	}

	return fixed
}

// DuplicateFile reports one file value that occurred more than once.
type DuplicateFile struct {
	File  string
	Count int
}

// Dedup removes every row whose file value is duplicated, reporting each
// duplicated value once, in order of first occurrence.
func Dedup(f *File) ([]DuplicateFile, *File) {
	counts := make(map[string]int)
	order := make([]string, 0)

	for _, rec := range f.Records {
		v := rec.Fields[FieldFile]
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	dups := make([]DuplicateFile, 0)
	for _, v := range order {
		if counts[v] > 1 {
			dups = append(dups, DuplicateFile{File: v, Count: counts[v]})
		}
	}

	deduped := cloneFile(f)
	deduped.Records = deduped.Records[:0]

	for _, rec := range f.Records {
		if counts[rec.Fields[FieldFile]] == 1 {
			deduped.Records = append(deduped.Records, cloneRecord(rec))
		}
	}

	return dups, deduped
}

// FindFiles walks root and returns every path with an .sfl extension,
// sorted lexically.
func FindFiles(root string) ([]string, error) {
	paths := make([]string, 0)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(d.Name(), ".sfl") {
			paths = append(paths, path)
		}

		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Strings(paths)

	return paths, nil
}

// sflNamePattern captures cruise and instrument serial from an SFL filename
// of the form <cruise>_<serial>.sfl.
var sflNamePattern = regexp.MustCompile(`^(.+)_([^_]+)\.sfl$`)

// ParseFilename extracts the cruise name and instrument serial embedded in
// an SFL filename. ok is false when the name does not follow the
// <cruise>_<serial>.sfl convention.
func ParseFilename(path string) (cruise string, serial string, ok bool) {
	m := sflNamePattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return "", "", false
	}

	return m[1], m[2], true
}

func cloneFile(f *File) *File {
	clone := &File{
		Columns: append([]string(nil), f.Columns...),
		Records: make([]Record, len(f.Records)),
	}

	for i, rec := range f.Records {
		clone.Records[i] = cloneRecord(rec)
	}

	return clone
}

func cloneRecord(rec Record) Record {
	fields := make(map[string]string, len(rec.Fields))
	for k, v := range rec.Fields {
		fields[k] = v
	}

	return Record{Line: rec.Line, Fields: fields}
}
