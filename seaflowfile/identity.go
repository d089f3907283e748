package seaflowfile

import (
	"cmp"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrUnrecognizedFilename = errors.New("filename does not look like a SeaFlow file")

// bucketPattern is the grammar of a YEAR_DAYOFYEAR day directory.
// Only the immediate parent directory of a file is ever considered.
var bucketPattern = regexp.MustCompile(`^\d{1,4}_\d{1,3}$`)

// Identity is the canonical cross-generation identity of one file path.
// It is a pure function of the path string; no file I/O is performed.
type Identity struct {
	// Path is the path as given.
	Path string
	// Filename is the classification of the path's leaf name.
	Filename ParsedFilename
	// Bucket is the canonical day directory. For new-style files it is
	// always derived from the filename timestamp, never from the path,
	// even when the two disagree. For old-style files no timestamp
	// exists, so the path's bucket is used; it may be empty.
	Bucket string
	// PathBucket is the day directory found in the path itself; it may
	// be empty, and for new-style files it may differ from Bucket.
	PathBucket string
	// ID is the canonical identity string, "<bucket>/<base>" or just
	// "<base>" when no bucket is known. Two files with the same ID are
	// the same logical file across generations and file kinds.
	ID string
	// PathID is the identity as implied by the given path. It equals ID
	// except for new-style files stored in a mislabeled day directory.
	PathID string
}

// Identify resolves a file path into its canonical Identity.
//
// It fails with ErrUnrecognizedFilename when the leaf name matches neither
// filename grammar and with ErrInvalidTimestamp when a new-style-shaped name
// carries an impossible date or time.
func Identify(path string) (Identity, error) {
	parts := splitPath(path)
	leaf := parts[len(parts)-1]

	parsed, classifyErr := Classify(leaf)
	if classifyErr != nil {
		return Identity{}, classifyErr
	}

	if parsed.Style == StyleInvalid {
		return Identity{}, fmt.Errorf("%w: %q", ErrUnrecognizedFilename, leaf)
	}

	identity := Identity{
		Path:     path,
		Filename: parsed,
	}

	if len(parts) > 1 && bucketPattern.MatchString(parts[len(parts)-2]) {
		identity.PathBucket = parts[len(parts)-2]
	}

	switch parsed.Style {
	case StyleOld:
		identity.Bucket = identity.PathBucket
		identity.ID = joinBucket(identity.Bucket, parsed.Base)
		identity.PathID = identity.ID

	case StyleNew:
		identity.Bucket = timestampBucket(parsed.Timestamp)
		identity.ID = joinBucket(identity.Bucket, parsed.Base)
		identity.PathID = joinBucket(identity.PathBucket, parsed.Base)
	}

	return identity, nil
}

// SortKey returns the chronological ordering key for this identity.
func (id Identity) SortKey() SortKey {
	key := SortKey{}

	if year, day, ok := parseBucket(id.Bucket); ok {
		key.Year, key.Day = year, day
	} else if year, day, ok := parseBucket(id.PathBucket); ok {
		key.Year, key.Day = year, day
	}

	if id.Filename.Style == StyleOld {
		key.numeric = true
		key.FileNum = oldFileNumber(id.Filename.Base)
	} else {
		key.FileStr = id.Filename.Base
	}

	return key
}

// SortKey is a total ordering key over file identities: year, then day of
// year, then a per-day tiebreak. The tiebreak is the parsed file number for
// old-style names, because file numbers were not zero-padded and would sort
// wrongly as strings, and the base name for new-style names, which are
// lexically ordered by construction.
type SortKey struct {
	Year    int
	Day     int
	FileNum int64
	FileStr string
	numeric bool
}

// Compare orders two keys, returning a negative value when k sorts first.
// Within one day, old-style files sort before new-style files; in practice
// the two generations never share a day directory.
func (k SortKey) Compare(other SortKey) int {
	if c := cmp.Compare(k.Year, other.Year); c != 0 {
		return c
	}

	if c := cmp.Compare(k.Day, other.Day); c != 0 {
		return c
	}

	switch {
	case k.numeric && other.numeric:
		return cmp.Compare(k.FileNum, other.FileNum)
	case !k.numeric && !other.numeric:
		return cmp.Compare(k.FileStr, other.FileStr)
	case k.numeric:
		return -1
	default:
		return 1
	}
}

// timestampBucket builds the YEAR_DAYOFYEAR directory name for a datestamp,
// normalized to UTC, with the day of year zero-padded to three digits.
func timestampBucket(timestamp time.Time) string {
	utc := timestamp.UTC()
	return fmt.Sprintf("%d_%03d", utc.Year(), utc.YearDay())
}

func parseBucket(bucket string) (int, int, bool) {
	if !bucketPattern.MatchString(bucket) {
		return 0, 0, false
	}

	yearStr, dayStr, _ := strings.Cut(bucket, "_")
	year, _ := strconv.Atoi(yearStr)
	day, _ := strconv.Atoi(dayStr)

	return year, day, true
}

func joinBucket(bucket, base string) string {
	if bucket == "" {
		return base
	}

	return bucket + "/" + base
}

// oldFileNumber extracts the numeric part of an old-style base name.
func oldFileNumber(base string) int64 {
	n, err := strconv.ParseInt(strings.TrimSuffix(base, "."+evtExt), 10, 64)
	if err != nil {
		return 0
	}

	return n
}

// splitPath splits a path on slashes, accepting native separators as well so
// that local paths and object store keys resolve identically.
func splitPath(path string) []string {
	return strings.Split(filepath.ToSlash(path), "/")
}
