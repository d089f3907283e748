package sfl

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ctberthiaume/seaflowpy/seaflowfile"
)

// Check validates an SFL file and returns every issue found, in a fixed
// order: numeric field checks first, then file name checks, then date
// checks. Each check builds its own ordered issue list; nothing is shared
// across checks.
func Check(f *File) []Issue {
	issues := make([]Issue, 0)

	issues = append(issues, CheckNumeric(f, FieldFileDuration, NumericRange{Min: floatPtr(MinFileDuration), RequireAll: true})...)
	issues = append(issues, CheckNumeric(f, FieldLat, NumericRange{Min: floatPtr(MinLat), Max: floatPtr(MaxLat), RequireAll: true})...)
	issues = append(issues, CheckNumeric(f, FieldLon, NumericRange{Min: floatPtr(MinLon), Max: floatPtr(MaxLon), RequireAll: true})...)
	issues = append(issues, CheckNumeric(f, FieldConductivity, NumericRange{})...)
	issues = append(issues, CheckNumeric(f, FieldSalinity, NumericRange{})...)
	issues = append(issues, CheckNumeric(f, FieldOceanTmp, NumericRange{})...)
	issues = append(issues, CheckNumeric(f, FieldPar, NumericRange{})...)
	issues = append(issues, CheckNumeric(f, FieldBulkRed, NumericRange{})...)
	issues = append(issues, CheckNumeric(f, FieldStreamPressure, NumericRange{Min: floatPtr(MinStreamPressure), RequireAll: true})...)
	issues = append(issues, CheckNumeric(f, FieldEventRate, NumericRange{Min: floatPtr(MinEventRate), RequireAll: true})...)
	issues = append(issues, CheckFiles(f)...)
	issues = append(issues, CheckDates(f)...)

	return issues
}

// NumericRange configures CheckNumeric. Nil bounds are not enforced.
// RequireAll flags columns where every row must carry a value.
type NumericRange struct {
	Min        *float64
	Max        *float64
	RequireAll bool
}

// CheckNumeric validates one numeric column: the column must exist, present
// values must parse and fall inside the configured range, and missing values
// are errors for required columns. An entirely empty optional column is
// reported as a warning.
func CheckNumeric(f *File, column string, bounds NumericRange) []Issue {
	issues := make([]Issue, 0)

	if !f.HasColumn(column) {
		issues = append(issues, fileIssue(column, column+" column is missing"))
		return issues
	}

	missing := 0

	for _, rec := range f.Records {
		v, present := rec.Value(column)
		if !present {
			missing++

			if bounds.RequireAll {
				issues = append(issues, rowIssue(column, "Missing required data", rec.Line, v))
			}

			continue
		}

		parsed, parseErr := strconv.ParseFloat(v, 64)
		if parseErr != nil ||
			(bounds.Min != nil && parsed < *bounds.Min) ||
			(bounds.Max != nil && parsed > *bounds.Max) {
			issues = append(issues, rowIssue(column, "Invalid "+column, rec.Line, v))
		}
	}

	if !bounds.RequireAll && len(f.Records) > 0 && missing == len(f.Records) {
		issues = append(issues, warningIssue(column, column+" column has no data"))
	}

	return issues
}

// CheckFiles validates the file column: every value must resolve to an
// identity with a day-of-year bucket in the path, values must be unique,
// rows must be in chronological order, and new-style file datestamps must
// agree with the row's date value.
func CheckFiles(f *File) []Issue {
	issues := make([]Issue, 0)

	if !f.HasColumn(FieldFile) {
		issues = append(issues, fileIssue(FieldFile, "file column is missing"))
		return issues
	}

	good := make([]Record, 0, len(f.Records))

	for _, rec := range f.Records {
		if identityWithBucket(rec.Fields[FieldFile]) {
			good = append(good, rec)
		} else {
			issues = append(issues, rowIssue(FieldFile, "Invalid file name", rec.Line, rec.Fields[FieldFile]))
		}
	}

	issues = append(issues, checkDuplicateFiles(f)...)
	issues = append(issues, checkFileOrder(good)...)

	if f.HasColumn(FieldDate) {
		issues = append(issues, checkFileDateAgreement(good)...)
	}

	return issues
}

func identityWithBucket(path string) bool {
	identity, err := seaflowfile.Identify(path)
	if err != nil {
		return false
	}

	return identity.PathBucket != ""
}

func checkDuplicateFiles(f *File) []Issue {
	issues := make([]Issue, 0)

	counts := make(map[string]int, len(f.Records))
	for _, rec := range f.Records {
		counts[rec.Fields[FieldFile]]++
	}

	for _, rec := range f.Records {
		if counts[rec.Fields[FieldFile]] > 1 {
			issues = append(issues, rowIssue(FieldFile, "Duplicate file", rec.Line, rec.Fields[FieldFile]))
		}
	}

	return issues
}

// checkFileOrder reports the first row whose file is out of chronological
// order, comparing the recorded order against the canonical sort.
func checkFileOrder(good []Record) []Issue {
	issues := make([]Issue, 0)

	recorded := make([]string, len(good))
	for i, rec := range good {
		recorded[i] = rec.Fields[FieldFile]
	}

	inOrder := seaflowfile.SortChronological(recorded)

	for i := range recorded {
		if recorded[i] != inOrder[i] {
			issues = append(issues, rowIssue(
				FieldFile,
				"Files out of order",
				good[i].Line,
				fmt.Sprintf("First out of order file %s", recorded[i]),
			))
			break
		}
	}

	return issues
}

func checkFileDateAgreement(good []Record) []Issue {
	issues := make([]Issue, 0)

	for _, rec := range good {
		identity, err := seaflowfile.Identify(rec.Fields[FieldFile])
		if err != nil || !identity.Filename.HasTimestamp() {
			continue
		}

		date := rec.Fields[FieldDate]
		if identity.Filename.RFC3339() != date {
			issues = append(issues, rowIssue(
				"file/date",
				"File and date don't match",
				rec.Line,
				fmt.Sprintf("%s %s", rec.Fields[FieldFile], date),
			))
		}
	}

	return issues
}

// CheckDates validates the date column. Every row must carry an RFC 3339
// datestamp in UTC with an explicit +00:00 or -00:00 offset and integer
// seconds.
func CheckDates(f *File) []Issue {
	issues := make([]Issue, 0)

	if !f.HasColumn(FieldDate) {
		issues = append(issues, fileIssue(FieldDate, "date column is missing"))
		return issues
	}

	for _, rec := range f.Records {
		if !validDateString(rec.Fields[FieldDate]) {
			issues = append(issues, rowIssue(FieldDate, "Invalid date format", rec.Line, rec.Fields[FieldDate]))
		}
	}

	return issues
}

const dateLayout = "2006-01-02T15:04:05-07:00"

// validDateString accepts RFC 3339 strings pinned to UTC with a numeric
// offset. time.Parse tolerates fractional seconds not present in the
// layout, so those are rejected explicitly.
func validDateString(date string) bool {
	if !strings.HasSuffix(date, "+00:00") && !strings.HasSuffix(date, "-00:00") {
		return false
	}

	if strings.ContainsRune(date, '.') {
		return false
	}

	_, parseErr := time.Parse(dateLayout, date)

	return parseErr == nil
}

func floatPtr(v float64) *float64 {
	return &v
}
