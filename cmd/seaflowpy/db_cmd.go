package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ctberthiaume/seaflowpy/db"
	"github.com/ctberthiaume/seaflowpy/sfl"
)

func runDB(args []string) error {
	if len(args) < 1 {
		return errors.New("db: expected a subcommand: import-sfl, import-filter-params")
	}

	switch args[0] {
	case "import-sfl":
		return runDBImportSFL(args[1:])
	case "import-filter-params":
		return runDBImportFilterParams(args[1:])
	default:
		return fmt.Errorf("db: unknown subcommand %q", args[0])
	}
}

// runDBImportSFL validates an SFL file and stores it for a cruise. The
// cruise name and instrument serial are resolved from flags first, then from
// the SFL filename convention <cruise>_<serial>.sfl, then from the metadata
// already stored in the database.
func runDBImportSFL(args []string) error {
	fs := flag.NewFlagSet("db import-sfl", flag.ExitOnError)
	cruise := fs.String("cruise", "", "cruise name, overriding any found in the filename")
	serial := fs.String("serial", "", "instrument serial, overriding any found in the filename")
	force := fs.Bool("force", false, "import even if validation produces errors")
	asJSON := fs.Bool("json", false, "report issues as JSON")
	all := fs.Bool("all", false, "report every issue, not just the first of each kind")
	driver := fs.String("driver", defaultDriver, "database driver: pgx, pq, or sqlx")
	verbose := fs.Bool("verbose", false, "log SQL statements")

	if parseErr := fs.Parse(args); parseErr != nil {
		return parseErr
	}

	if fs.NArg() != 2 {
		return errors.New("db import-sfl: expected SFL file and database DSN arguments")
	}

	sflPath, dsn := fs.Arg(0), fs.Arg(1)

	if sflPath != "-" {
		if fileCruise, fileSerial, ok := sfl.ParseFilename(sflPath); ok {
			if *cruise == "" {
				*cruise = fileCruise
			}
			if *serial == "" {
				*serial = fileSerial
			}
		}
	}

	ctx := context.Background()

	store, closeStore, storeErr := openStore(ctx, *driver, dsn, *verbose)
	if storeErr != nil {
		return storeErr
	}
	defer closeStore()

	// Fall back to metadata already in the database.
	if *cruise == "" || *serial == "" {
		if meta, metaErr := store.Metadata(ctx); metaErr == nil {
			if *cruise == "" {
				*cruise = meta.Cruise
			}
			if *serial == "" {
				*serial = meta.Serial
			}
		}
	}

	meta, metaErr := db.BuildMetadata(*cruise, *serial)
	if metaErr != nil {
		return fmt.Errorf("cruise and serial must be given as flags, in the SFL filename as <cruise>_<serial>.sfl, or in database metadata: %w", metaErr)
	}

	f, readErr := readSFLPath(sflPath)
	if readErr != nil {
		return readErr
	}

	fixed := sfl.Fix(f)
	issues := sfl.Check(fixed)

	if len(issues) > 0 {
		var writeErr error
		if *asJSON {
			writeErr = sfl.WriteIssuesJSON(os.Stdout, issues, !*all)
		} else {
			writeErr = sfl.WriteIssuesTSV(os.Stdout, issues, !*all)
		}

		if writeErr != nil {
			return writeErr
		}

		if !*force && sfl.HasBlockingIssues(issues) {
			return errors.New("db import-sfl: validation failed, not importing (use -force to override)")
		}
	}

	if saveErr := store.SaveMetadata(ctx, meta); saveErr != nil {
		return saveErr
	}

	return store.SaveSFL(ctx, meta.Cruise, db.SFLRowsFromFile(fixed))
}

func runDBImportFilterParams(args []string) error {
	fs := flag.NewFlagSet("db import-filter-params", flag.ExitOnError)
	cruise := fs.String("cruise", "", "cruise name for parameter selection")
	driver := fs.String("driver", defaultDriver, "database driver: pgx, pq, or sqlx")
	verbose := fs.Bool("verbose", false, "log SQL statements")

	if parseErr := fs.Parse(args); parseErr != nil {
		return parseErr
	}

	if fs.NArg() != 2 {
		return errors.New("db import-filter-params: expected filter CSV and database DSN arguments")
	}

	csvPath, dsn := fs.Arg(0), fs.Arg(1)
	ctx := context.Background()

	store, closeStore, storeErr := openStore(ctx, *driver, dsn, *verbose)
	if storeErr != nil {
		return storeErr
	}
	defer closeStore()

	if *cruise == "" {
		meta, metaErr := store.Metadata(ctx)
		if metaErr != nil {
			return errors.New("cruise must be given as a flag or in database metadata")
		}
		*cruise = meta.Cruise
	}

	csvFile, openErr := os.Open(csvPath)
	if openErr != nil {
		return openErr
	}
	defer func() { _ = csvFile.Close() }()

	params, readErr := readFilterParams(csvFile, *cruise)
	if readErr != nil {
		return readErr
	}

	if len(params) == 0 {
		return fmt.Errorf("no filter parameters found for cruise %s", *cruise)
	}

	return store.SaveFilterParams(ctx, params)
}

// readFilterParams parses a filtering parameter CSV and keeps the rows for
// one cruise. Header names are normalized by replacing dots with
// underscores and lowercasing, so "notch.small.D1" selects notch_small_d1.
func readFilterParams(r io.Reader, cruise string) ([]db.FilterParams, error) {
	cr := csv.NewReader(r)

	header, headerErr := cr.Read()
	if headerErr != nil {
		return nil, headerErr
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), ".", "_"))
		index[normalized] = i
	}

	params := make([]db.FilterParams, 0)

	for {
		row, rowErr := cr.Read()
		if rowErr != nil {
			if errors.Is(rowErr, io.EOF) {
				break
			}

			return nil, rowErr
		}

		cell := func(name string) string {
			i, ok := index[name]
			if !ok || i >= len(row) {
				return ""
			}
			return row[i]
		}

		if cell("cruise") != cruise {
			continue
		}

		number := func(name string) (float64, error) {
			return strconv.ParseFloat(cell(name), 64)
		}

		p := db.FilterParams{Cruise: cruise}

		id, idErr := uuid.Parse(cell("id"))
		if idErr != nil {
			id = db.NewFilterParamsID()
		}
		p.ID = id

		if date, dateErr := time.Parse(time.RFC3339, cell("date")); dateErr == nil {
			p.Date = date
		}

		var parseErr error
		fields := []struct {
			name string
			dst  *float64
		}{
			{"quantile", &p.Quantile},
			{"beads_fsc_small", &p.BeadsFscSmall},
			{"beads_d1", &p.BeadsD1},
			{"beads_d2", &p.BeadsD2},
			{"width", &p.Width},
			{"notch_small_d1", &p.NotchSmallD1},
			{"notch_small_d2", &p.NotchSmallD2},
			{"notch_large_d1", &p.NotchLargeD1},
			{"notch_large_d2", &p.NotchLargeD2},
			{"offset_small_d1", &p.OffsetSmallD1},
			{"offset_small_d2", &p.OffsetSmallD2},
			{"offset_large_d1", &p.OffsetLargeD1},
			{"offset_large_d2", &p.OffsetLargeD2},
		}

		for _, field := range fields {
			if *field.dst, parseErr = number(field.name); parseErr != nil {
				return nil, fmt.Errorf("bad %s value %q: %w", field.name, cell(field.name), parseErr)
			}
		}

		params = append(params, p)
	}

	return params, nil
}

func readSFLPath(path string) (*sfl.File, error) {
	if path == "-" {
		return sfl.Read(os.Stdin)
	}

	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, openErr
	}
	defer func() { _ = f.Close() }()

	return sfl.Read(f)
}
