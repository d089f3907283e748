// Package evt decodes SeaFlow EVT particle event files.
//
// EVT files are written by the instrument's LabVIEW acquisition software in
// a fixed binary layout: a little-endian uint32 row count followed by one
// row per particle, each row holding two framing uint16s and one uint16 per
// measurement channel. The decoder validates the layout byte-for-byte and
// produces an immutable matrix of float64 measurements; any truncation,
// trailing data, or byte count disagreement fails the whole decode.
package evt
