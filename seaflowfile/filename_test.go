package seaflowfile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Classify_OldStyleNames(t *testing.T) {
	tests := []struct {
		name           string
		filename       string
		expectedBase   string
		expectedKind   Kind
		expectCompress bool
	}{
		{
			name:         "bare file number",
			filename:     "42",
			expectedBase: "42",
			expectedKind: KindEvent,
		},
		{
			name:         "file number with evt extension",
			filename:     "42.evt",
			expectedBase: "42.evt",
			expectedKind: KindEvent,
		},
		{
			name:           "gzipped evt",
			filename:       "42.evt.gz",
			expectedBase:   "42.evt",
			expectedKind:   KindEvent,
			expectCompress: true,
		},
		{
			name:         "filtered file keeps evt in base",
			filename:     "42.evt.opp",
			expectedBase: "42.evt",
			expectedKind: KindFilteredEvent,
		},
		{
			name:           "gzipped filtered file",
			filename:       "42.evt.opp.gz",
			expectedBase:   "42.evt",
			expectedKind:   KindFilteredEvent,
			expectCompress: true,
		},
		{
			name:           "bare number gzipped",
			filename:       "100.gz",
			expectedBase:   "100",
			expectedKind:   KindEvent,
			expectCompress: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := Classify(tt.filename)
			require.NoError(t, err)

			assert.Equal(t, StyleOld, parsed.Style)
			assert.Equal(t, tt.expectedBase, parsed.Base)
			assert.Equal(t, tt.expectedKind, parsed.Kind)
			assert.Equal(t, tt.expectCompress, parsed.Compressed)
			assert.False(t, parsed.HasTimestamp())
		})
	}
}

func Test_Classify_NewStyleNames(t *testing.T) {
	tests := []struct {
		name           string
		filename       string
		expectedKind   Kind
		expectCompress bool
	}{
		{
			name:         "plain timestamp name",
			filename:     "2018-03-23T00-00-00+00-00",
			expectedKind: KindEvent,
		},
		{
			name:           "gzipped timestamp name",
			filename:       "2018-03-23T00-00-00+00-00.gz",
			expectedKind:   KindEvent,
			expectCompress: true,
		},
		{
			name:         "filtered timestamp name",
			filename:     "2018-03-23T00-00-00+00-00.opp",
			expectedKind: KindFilteredEvent,
		},
		{
			name:           "filtered gzipped timestamp name",
			filename:       "2018-03-23T00-00-00+00-00.opp.gz",
			expectedKind:   KindFilteredEvent,
			expectCompress: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := Classify(tt.filename)
			require.NoError(t, err)

			assert.Equal(t, StyleNew, parsed.Style)
			assert.Equal(t, "2018-03-23T00-00-00+00-00", parsed.Base)
			assert.Equal(t, tt.expectedKind, parsed.Kind)
			assert.Equal(t, tt.expectCompress, parsed.Compressed)
			require.True(t, parsed.HasTimestamp())

			expected := time.Date(2018, time.March, 23, 0, 0, 0, 0, time.UTC)
			assert.True(t, parsed.Timestamp.Equal(expected))
		})
	}
}

func Test_Classify_NegativeUTCOffset(t *testing.T) {
	parsed, err := Classify("2014-05-15T17-07-08-07-00")
	require.NoError(t, err)

	assert.Equal(t, StyleNew, parsed.Style)

	// 17:07:08 at UTC-7 is 00:07:08 the next day in UTC.
	expected := time.Date(2014, time.May, 16, 0, 7, 8, 0, time.UTC)
	assert.True(t, parsed.Timestamp.Equal(expected))
	assert.Equal(t, "2014-05-15T17:07:08-07:00", parsed.RFC3339())
}

func Test_Classify_InvalidNames(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{name: "empty string", filename: ""},
		{name: "plain word", filename: "readme.txt"},
		{name: "digits with letters", filename: "42a.evt"},
		{name: "evt extension without numeric base", filename: "abc.evt"},
		{name: "truncated timestamp", filename: "2018-03-23T00-00"},
		{name: "timestamp with colons", filename: "2018-03-23T00:00:00+00:00"},
		{name: "sfl file", filename: "cruise1_740.sfl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := Classify(tt.filename)
			require.NoError(t, err)

			assert.Equal(t, StyleInvalid, parsed.Style)
			assert.Equal(t, KindUnknown, parsed.Kind)
		})
	}
}

func Test_Classify_InvalidTimestamps(t *testing.T) {
	tests := []struct {
		name     string
		filename string
	}{
		{name: "month out of range", filename: "2018-13-23T00-00-00+00-00"},
		{name: "impossible calendar day", filename: "2018-02-30T00-00-00+00-00"},
		{name: "hour out of range", filename: "2018-03-23T24-00-00+00-00"},
		{name: "minute out of range", filename: "2018-03-23T00-60-00+00-00"},
		{name: "offset hours out of range", filename: "2018-03-23T00-00-00+24-00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.filename)
			assert.ErrorIs(t, err, ErrInvalidTimestamp)
		})
	}
}

func Test_Classify_LeapDay(t *testing.T) {
	parsed, err := Classify("2016-02-29T12-00-00+00-00.gz")
	require.NoError(t, err)

	assert.Equal(t, StyleNew, parsed.Style)
	assert.Equal(t, 60, parsed.Timestamp.UTC().YearDay())
}
