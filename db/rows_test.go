package db

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctberthiaume/seaflowpy/seaflowfile"
	"github.com/ctberthiaume/seaflowpy/sfl"
)

func Test_BuildMetadata(t *testing.T) {
	meta, err := BuildMetadata("KOK1606", "740")
	require.NoError(t, err)
	assert.Equal(t, Metadata{Cruise: "KOK1606", Serial: "740"}, meta)

	_, err = BuildMetadata("", "740")
	assert.ErrorIs(t, err, ErrMissingCruise)

	_, err = BuildMetadata("KOK1606", "")
	assert.ErrorIs(t, err, ErrMissingSerial)
}

func Test_SFLRowsFromFile(t *testing.T) {
	data := "FILE\tDATE\tFILE DURATION\tLAT\tPAR\n" +
		"2014_142/1.evt\t2014-05-22T00:00:00+00:00\t180\t47.6\tNA\n" +
		"2014_142/2.evt\t2014-05-22T00:03:00+00:00\t180\tNA\t0.1\n"

	f, err := sfl.Read(strings.NewReader(data))
	require.NoError(t, err)

	rows := SFLRowsFromFile(f)
	require.Len(t, rows, 2)

	assert.Equal(t, "2014_142/1.evt", rows[0].File)
	assert.Equal(t, "2014-05-22T00:00:00+00:00", rows[0].Date)

	require.NotNil(t, rows[0].FileDuration)
	assert.InDelta(t, 180, *rows[0].FileDuration, 1e-9)
	require.NotNil(t, rows[0].Lat)
	assert.InDelta(t, 47.6, *rows[0].Lat, 1e-9)
	assert.Nil(t, rows[0].Par)

	assert.Nil(t, rows[1].Lat)
	require.NotNil(t, rows[1].Par)
	assert.InDelta(t, 0.1, *rows[1].Par, 1e-9)

	// Columns the file never carried stay nil.
	assert.Nil(t, rows[0].FlowRate)
}

func Test_ValidateFilterParams(t *testing.T) {
	valid := FilterParams{ID: NewFilterParamsID(), Cruise: "KOK1606", Quantile: 50}
	assert.NoError(t, ValidateFilterParams(valid))

	for _, q := range []float64{2.5, 50, 97.5} {
		valid.Quantile = q
		assert.NoError(t, ValidateFilterParams(valid))
	}

	noCruise := valid
	noCruise.Cruise = ""
	assert.ErrorIs(t, ValidateFilterParams(noCruise), ErrMissingCruise)

	badQuantile := valid
	badQuantile.Quantile = 25
	assert.ErrorIs(t, ValidateFilterParams(badQuantile), ErrInvalidQuantile)
}

func Test_NewFilterParamsID_Unique(t *testing.T) {
	assert.NotEqual(t, NewFilterParamsID(), NewFilterParamsID())
	assert.NotEqual(t, uuid.Nil, NewFilterParamsID())
}

func Test_BuildRawFileRecord(t *testing.T) {
	record, err := BuildRawFileRecord("raw/2018_082/2018-03-23T00-00-00+00-00.gz", 40000)
	require.NoError(t, err)

	assert.Equal(t, "2018_082/2018-03-23T00-00-00+00-00", record.FileID)
	assert.Equal(t, 2018, record.Year)
	assert.Equal(t, 82, record.Day)
	assert.Equal(t, int64(40000), record.EventCount)
}

func Test_BuildRawFileRecord_OldStyle(t *testing.T) {
	record, err := BuildRawFileRecord("2014_142/42.evt.gz", 1000)
	require.NoError(t, err)

	assert.Equal(t, "2014_142/42.evt", record.FileID)
	assert.Equal(t, 2014, record.Year)
	assert.Equal(t, 142, record.Day)
}

func Test_BuildRawFileRecord_UnrecognizedPath(t *testing.T) {
	_, err := BuildRawFileRecord("2014_142/notes.txt", 0)
	assert.ErrorIs(t, err, seaflowfile.ErrUnrecognizedFilename)
}
