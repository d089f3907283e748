// Package seaflowfile resolves SeaFlow instrument file paths into stable
// cross-generation identities.
//
// Two filename conventions have been used over the life of the instrument
// fleet: old-style names built from a bare file number (42.evt) and
// new-style names built from an ISO 8601-like timestamp with hyphens in
// place of colons (2018-03-23T00-00-00+00-00). Both may carry a filtered
// particle suffix (.opp) and a gzip suffix (.gz), and both are grouped on
// disk into YEAR_DAYOFYEAR "julian" day directories.
//
// The package classifies leaf names, derives a canonical file identity that
// matches the same logical file across generations and file kinds, and sorts,
// filters, and intersects path collections by that identity.
package seaflowfile
