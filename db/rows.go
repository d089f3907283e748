package db

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/ctberthiaume/seaflowpy/seaflowfile"
	"github.com/ctberthiaume/seaflowpy/sfl"
)

var ErrMissingCruise = errors.New("empty cruise name supplied")
var ErrMissingSerial = errors.New("empty instrument serial supplied")
var ErrInvalidQuantile = errors.New("quantile must be 2.5, 50, or 97.5")

// Metadata identifies the cruise a database belongs to.
// Exactly one metadata row exists per database.
type Metadata struct {
	Cruise string
	Serial string
}

// BuildMetadata is a factory method for Metadata.
// Both the cruise name and the instrument serial are required.
func BuildMetadata(cruise string, serial string) (Metadata, error) {
	if cruise == "" {
		return Metadata{}, ErrMissingCruise
	}

	if serial == "" {
		return Metadata{}, ErrMissingSerial
	}

	return Metadata{Cruise: cruise, Serial: serial}, nil
}

// SFLRow is one SFL metadata row as persisted. Optional numeric fields are
// nil when the source cell held no data.
type SFLRow struct {
	File           string
	Date           string
	FileDuration   *float64
	Lat            *float64
	Lon            *float64
	Conductivity   *float64
	Salinity       *float64
	OceanTmp       *float64
	Par            *float64
	BulkRed        *float64
	StreamPressure *float64
	FlowRate       *float64
	EventRate      *float64
}

// SFLRowsFromFile converts parsed SFL records into storage rows,
// preserving record order.
func SFLRowsFromFile(f *sfl.File) []SFLRow {
	rows := make([]SFLRow, len(f.Records))

	for i, rec := range f.Records {
		rows[i] = SFLRow{
			File:           rec.Fields[sfl.FieldFile],
			Date:           rec.Fields[sfl.FieldDate],
			FileDuration:   optionalFloat(rec, sfl.FieldFileDuration),
			Lat:            optionalFloat(rec, sfl.FieldLat),
			Lon:            optionalFloat(rec, sfl.FieldLon),
			Conductivity:   optionalFloat(rec, sfl.FieldConductivity),
			Salinity:       optionalFloat(rec, sfl.FieldSalinity),
			OceanTmp:       optionalFloat(rec, sfl.FieldOceanTmp),
			Par:            optionalFloat(rec, sfl.FieldPar),
			BulkRed:        optionalFloat(rec, sfl.FieldBulkRed),
			StreamPressure: optionalFloat(rec, sfl.FieldStreamPressure),
			FlowRate:       optionalFloat(rec, sfl.FieldFlowRate),
			EventRate:      optionalFloat(rec, sfl.FieldEventRate),
		}
	}

	return rows
}

func optionalFloat(rec sfl.Record, column string) *float64 {
	v, ok := rec.Float(column)
	if !ok {
		return nil
	}

	return &v
}

// FilterParams is one quantile's particle filtering parameter set.
// A parameter set is identified by a generated UUID; the three quantile rows
// of one filtering run share that id.
type FilterParams struct {
	ID            uuid.UUID
	Cruise        string
	Date          time.Time
	Quantile      float64
	BeadsFscSmall float64
	BeadsD1       float64
	BeadsD2       float64
	Width         float64
	NotchSmallD1  float64
	NotchSmallD2  float64
	NotchLargeD1  float64
	NotchLargeD2  float64
	OffsetSmallD1 float64
	OffsetSmallD2 float64
	OffsetLargeD1 float64
	OffsetLargeD2 float64
}

// quantiles the filtering pipeline produces parameters for.
var validQuantiles = []float64{2.5, 50, 97.5}

// ValidateFilterParams checks the invariants shared by every parameter set:
// a cruise name and one of the three supported quantiles.
func ValidateFilterParams(params FilterParams) error {
	if params.Cruise == "" {
		return ErrMissingCruise
	}

	for _, q := range validQuantiles {
		if params.Quantile == q {
			return nil
		}
	}

	return ErrInvalidQuantile
}

// NewFilterParamsID returns a fresh parameter set id.
func NewFilterParamsID() uuid.UUID {
	return uuid.New()
}

// RawFileRecord registers one decoded event file: its canonical identity,
// the calendar position used for chronological listing, and the particle
// count found by the decoder.
type RawFileRecord struct {
	FileID     string
	Year       int
	Day        int
	EventCount int64
}

// BuildRawFileRecord is a factory method for RawFileRecord. It derives the
// canonical identity and calendar position from the file path and fails
// when the path cannot be resolved to a SeaFlow file identity.
func BuildRawFileRecord(path string, eventCount int64) (RawFileRecord, error) {
	identity, identifyErr := seaflowfile.Identify(path)
	if identifyErr != nil {
		return RawFileRecord{}, identifyErr
	}

	key := identity.SortKey()

	return RawFileRecord{
		FileID:     identity.ID,
		Year:       key.Year,
		Day:        key.Day,
		EventCount: eventCount,
	}, nil
}
