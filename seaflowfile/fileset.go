package seaflowfile

import (
	"slices"
)

// SortChronological returns paths ordered by their identity sort keys.
// The sort is stable, so equal keys keep their input order. Paths that fail
// identity resolution are excluded rather than reported; mixed directories
// routinely contain stray non-instrument files and batch operations must
// tolerate them.
func SortChronological(paths []string) []string {
	type entry struct {
		path string
		key  SortKey
	}

	entries := make([]entry, 0, len(paths))

	for _, path := range paths {
		identity, err := Identify(path)
		if err != nil {
			continue
		}

		entries = append(entries, entry{path: path, key: identity.SortKey()})
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		return a.key.Compare(b.key)
	})

	sorted := make([]string, len(entries))
	for i, e := range entries {
		sorted[i] = e.path
	}

	return sorted
}

// FilterByKind keeps only paths whose leaf name classifies to the given
// kind. Unparseable paths are silently dropped.
func FilterByKind(paths []string, kind Kind) []string {
	kept := make([]string, 0, len(paths))

	for _, path := range paths {
		identity, err := Identify(path)
		if err != nil {
			continue
		}

		if identity.Filename.Kind == kind {
			kept = append(kept, path)
		}
	}

	return kept
}

// IntersectByIdentity keeps the entries of primary whose canonical identity
// appears in the identity set of filterSet, returned in chronological order.
// It is used to restrict one file kind's list to files also present as
// another kind; matching is by identity, so the two path collections may
// differ syntactically.
func IntersectByIdentity(primary []string, filterSet []string) []string {
	wanted := make(map[string]struct{}, len(filterSet))

	for _, path := range filterSet {
		identity, err := Identify(path)
		if err != nil {
			continue
		}

		wanted[identity.ID] = struct{}{}
	}

	kept := make([]string, 0, len(primary))

	for _, path := range primary {
		identity, err := Identify(path)
		if err != nil {
			continue
		}

		if _, ok := wanted[identity.ID]; ok {
			kept = append(kept, path)
		}
	}

	return SortChronological(kept)
}
