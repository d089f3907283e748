package seaflowfile

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTimestamp = errors.New("invalid timestamp in filename")

// Style identifies which filename generation a leaf name belongs to.
type Style int

const (
	// StyleInvalid marks a name that matches neither filename grammar.
	StyleInvalid Style = iota
	// StyleOld marks a file-number name, e.g. 42.evt.
	StyleOld
	// StyleNew marks a timestamp name, e.g. 2018-03-23T00-00-00+00-00.
	StyleNew
)

// String returns a human-readable name for the style.
func (s Style) String() string {
	switch s {
	case StyleOld:
		return "old"
	case StyleNew:
		return "new"
	default:
		return "invalid"
	}
}

// Kind identifies the data carried by a file, derived from its suffixes.
type Kind int

const (
	// KindUnknown is the kind of names that fail classification.
	KindUnknown Kind = iota
	// KindEvent is a raw particle event file.
	KindEvent
	// KindFilteredEvent is a filtered (focused particle) event file,
	// marked by an .opp suffix.
	KindFilteredEvent
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindEvent:
		return "evt"
	case KindFilteredEvent:
		return "opp"
	default:
		return "unknown"
	}
}

const (
	gzExt       = "gz"
	evtExt      = "evt"
	filteredExt = "opp"
)

// ParsedFilename is the classification of one leaf filename.
// It is created by Classify and never modified afterwards.
type ParsedFilename struct {
	// Name is the leaf name as given.
	Name string
	// Base is the name with extensions removed, except that old-style
	// numeric names keep a literal .evt as part of the base. Historic
	// identity strings were coined including that suffix.
	Base string
	// Style tags the filename generation.
	Style Style
	// Kind tags the file contents implied by the suffixes.
	Kind Kind
	// Timestamp is the datestamp parsed from a new-style name.
	// It is only meaningful when Style is StyleNew.
	Timestamp time.Time
	// Compressed reports a trailing .gz suffix.
	Compressed bool
}

// HasTimestamp reports whether Timestamp holds a parsed datestamp.
func (pf ParsedFilename) HasTimestamp() bool {
	return pf.Style == StyleNew
}

// RFC3339 returns the parsed datestamp formatted as RFC 3339 with a numeric
// UTC offset, matching the date strings recorded in SFL metadata.
// It returns "" for names without a timestamp.
func (pf ParsedFilename) RFC3339() string {
	if !pf.HasTimestamp() {
		return ""
	}

	return pf.Timestamp.Format("2006-01-02T15:04:05-07:00")
}

// Classify parses a leaf filename against the two SeaFlow filename grammars.
//
// Names matching neither grammar yield Style StyleInvalid with a nil error.
// A name shaped like a new-style timestamp whose date or time is impossible
// is a corrupt filename, not an unrecognized one, and fails with
// ErrInvalidTimestamp.
func Classify(name string) (ParsedFilename, error) {
	pf := ParsedFilename{
		Name:       name,
		Style:      StyleInvalid,
		Kind:       KindUnknown,
		Compressed: strings.HasSuffix(name, "."+gzExt),
	}

	base, exts := splitExtensions(name)
	pf.Base = base

	switch {
	case isOldStyleBase(base):
		pf.Style = StyleOld

	case isNewStyleShape(base):
		timestamp, parseErr := parseFilenameTimestamp(base)
		if parseErr != nil {
			return pf, parseErr
		}
		pf.Style = StyleNew
		pf.Timestamp = timestamp

	default:
		return pf, nil
	}

	if slices.Contains(exts, filteredExt) {
		pf.Kind = KindFilteredEvent
	} else {
		pf.Kind = KindEvent
	}

	return pf, nil
}

// splitExtensions strips all dot-delimited suffixes from a leaf name.
// A numeric base followed by a literal .evt keeps the .evt in the base.
func splitExtensions(name string) (string, []string) {
	parts := strings.Split(name, ".")
	base := parts[0]
	exts := parts[1:]

	if len(exts) > 0 && exts[0] == evtExt && isAllDigits(base) {
		base += "." + evtExt
		exts = exts[1:]
	}

	return base, exts
}

// isOldStyleBase reports whether base is a bare file number,
// optionally carrying the retained .evt suffix.
func isOldStyleBase(base string) bool {
	return isAllDigits(strings.TrimSuffix(base, "."+evtExt))
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// newStyleLayout maps each position of a new-style base name to the byte
// expected there; 'd' positions must hold an ASCII digit and 's' marks the
// timezone sign. Colons are unsafe in filenames so hyphens stand in for them
// in the time and offset fields.
const newStyleLayout = "dddd-dd-ddTdd-dd-ddsdd-dd"

// isNewStyleShape reports whether base has the exact shape of a new-style
// timestamp name, without validating the date or time values.
func isNewStyleShape(base string) bool {
	if len(base) != len(newStyleLayout) {
		return false
	}

	for i := 0; i < len(newStyleLayout); i++ {
		switch newStyleLayout[i] {
		case 'd':
			if base[i] < '0' || base[i] > '9' {
				return false
			}
		case 's':
			if base[i] != '+' && base[i] != '-' {
				return false
			}
		default:
			if base[i] != newStyleLayout[i] {
				return false
			}
		}
	}

	return true
}

// parseFilenameTimestamp converts a shape-checked new-style base name into a
// time.Time carrying the filename's UTC offset.
func parseFilenameTimestamp(base string) (time.Time, error) {
	year := mustAtoi(base[0:4])
	month := mustAtoi(base[5:7])
	day := mustAtoi(base[8:10])
	hour := mustAtoi(base[11:13])
	minute := mustAtoi(base[14:16])
	second := mustAtoi(base[17:19])
	offsetHours := mustAtoi(base[20:22])
	offsetMinutes := mustAtoi(base[23:25])

	if hour > 23 || minute > 59 || second > 59 || offsetHours > 23 || offsetMinutes > 59 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, base)
	}

	offsetSeconds := offsetHours*3600 + offsetMinutes*60
	if base[19] == '-' {
		offsetSeconds = -offsetSeconds
	}

	zone := time.FixedZone("", offsetSeconds)
	timestamp := time.Date(year, time.Month(month), day, hour, minute, second, 0, zone)

	// time.Date normalizes out-of-range components (e.g. February 30th
	// becomes March 2nd), so an impossible date is detected by comparing
	// the round trip against the parsed fields.
	if timestamp.Year() != year || timestamp.Month() != time.Month(month) || timestamp.Day() != day {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, base)
	}

	return timestamp, nil
}

// mustAtoi converts a digits-only substring that has already been shape-checked.
func mustAtoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		panic("seaflowfile: digit field failed to parse after shape check: " + s)
	}

	return n
}
