package evt

// Columns lists the instrument's measurement channels, one uint16 per
// channel per particle row, in wire order. The set is fixed by the
// instrument's data dictionary and shared with the opp table schema.
var Columns = []string{
	"time",
	"pulse_width",
	"D1",
	"D2",
	"fsc_small",
	"fsc_perp",
	"fsc_big",
	"pe",
	"chl_small",
	"chl_big",
}

// framingColumns is the count of leading uint16s on every row. They are an
// idiosyncrasy of LabVIEW's binary writer, likely intended as EOL markers,
// and never carry particle data. They are not the same columns dropped by
// any downstream channel selection; they are stripped before any
// measurement column mapping applies.
const framingColumns = 2
