package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctberthiaume/seaflowpy/evt"
	"github.com/ctberthiaume/seaflowpy/fileio"
	"github.com/ctberthiaume/seaflowpy/seaflowfile"
)

func runEVT(args []string) error {
	if len(args) < 1 {
		return errors.New("evt: expected a subcommand: validate")
	}

	switch args[0] {
	case "validate":
		return runEVTValidate(args[1:])
	default:
		return fmt.Errorf("evt: unknown subcommand %q", args[0])
	}
}

// runEVTValidate decodes each EVT path and reports its particle count or
// decode failure. Paths that are not SeaFlow event files are skipped; a
// failed decode is a data integrity signal and fails the run.
func runEVTValidate(args []string) error {
	fs := flag.NewFlagSet("evt validate", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "print each file examined")

	if parseErr := fs.Parse(args); parseErr != nil {
		return parseErr
	}

	if fs.NArg() == 0 {
		return errors.New("evt validate: no files given")
	}

	badFiles := 0

	for _, path := range seaflowfile.FilterByKind(fs.Args(), seaflowfile.KindEvent) {
		matrix, decodeErr := fileio.ReadEVT(path)
		if decodeErr != nil {
			badFiles++
			fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(path), decodeErr)

			var byteCountErr evt.ByteCountError
			if errors.As(decodeErr, &byteCountErr) && *verbose {
				fmt.Fprintf(os.Stderr, "%s: short by %d bytes\n",
					filepath.Base(path), byteCountErr.Expected-byteCountErr.Found)
			}

			continue
		}

		if *verbose {
			fmt.Printf("%s %d\n", filepath.Base(path), matrix.RowCount())
		}
	}

	if badFiles > 0 {
		return fmt.Errorf("evt validate: %d file(s) failed to decode", badFiles)
	}

	return nil
}
