package seaflowfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_SortChronological_ByDayThenFileNumber(t *testing.T) {
	paths := []string{
		"2018_100/2.evt",
		"2018_050/10.evt",
		"2018_100/1.evt",
		"2018_050/9.evt",
	}

	sorted := SortChronological(paths)

	expected := []string{
		"2018_050/9.evt",
		"2018_050/10.evt",
		"2018_100/1.evt",
		"2018_100/2.evt",
	}
	assert.Equal(t, expected, sorted)
}

func Test_SortChronological_NewStyleAcrossDays(t *testing.T) {
	paths := []string{
		"2018_082/2018-03-23T12-00-00+00-00.gz",
		"2018_081/2018-03-22T00-00-00+00-00.gz",
		"2018_082/2018-03-23T00-00-00+00-00.gz",
	}

	sorted := SortChronological(paths)

	expected := []string{
		"2018_081/2018-03-22T00-00-00+00-00.gz",
		"2018_082/2018-03-23T00-00-00+00-00.gz",
		"2018_082/2018-03-23T12-00-00+00-00.gz",
	}
	assert.Equal(t, expected, sorted)
}

func Test_SortChronological_DropsUnresolvablePaths(t *testing.T) {
	paths := []string{
		"2018_100/2.evt",
		"2018_100/readme.txt",
		"2018_100/1.evt",
	}

	sorted := SortChronological(paths)

	assert.Equal(t, []string{"2018_100/1.evt", "2018_100/2.evt"}, sorted)
}

func Test_SortChronological_StableForEqualKeys(t *testing.T) {
	// The same logical file under two spellings keeps its input order.
	paths := []string{
		"a/2014_142/42.evt.gz",
		"b/2014_142/42.evt",
	}

	sorted := SortChronological(paths)

	assert.Equal(t, paths, sorted)
}

func Test_FilterByKind(t *testing.T) {
	paths := []string{
		"2014_142/42.evt",
		"2014_142/42.evt.opp.gz",
		"2014_142/notes.txt",
		"2018_082/2018-03-23T00-00-00+00-00.gz",
		"2018_082/2018-03-23T00-00-00+00-00.opp.gz",
	}

	events := FilterByKind(paths, KindEvent)
	assert.Equal(t, []string{
		"2014_142/42.evt",
		"2018_082/2018-03-23T00-00-00+00-00.gz",
	}, events)

	filtered := FilterByKind(paths, KindFilteredEvent)
	assert.Equal(t, []string{
		"2014_142/42.evt.opp.gz",
		"2018_082/2018-03-23T00-00-00+00-00.opp.gz",
	}, filtered)
}

func Test_IntersectByIdentity(t *testing.T) {
	// Raw event files on local disk, filtered results under a different
	// root with different compression. Matching is by identity only.
	events := []string{
		"raw/2018_082/2018-03-23T12-00-00+00-00.gz",
		"raw/2018_082/2018-03-23T00-00-00+00-00.gz",
		"raw/2018_083/2018-03-24T00-00-00+00-00.gz",
	}
	filtered := []string{
		"opp/2018_082/2018-03-23T00-00-00+00-00.opp",
		"opp/2018_082/2018-03-23T12-00-00+00-00.opp.gz",
	}

	kept := IntersectByIdentity(events, filtered)

	expected := []string{
		"raw/2018_082/2018-03-23T00-00-00+00-00.gz",
		"raw/2018_082/2018-03-23T12-00-00+00-00.gz",
	}
	assert.Equal(t, expected, kept)
}

func Test_IntersectByIdentity_EmptyFilterSet(t *testing.T) {
	kept := IntersectByIdentity([]string{"2014_142/42.evt"}, nil)
	assert.Empty(t, kept)
}
