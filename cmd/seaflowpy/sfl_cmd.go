package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ctberthiaume/seaflowpy/sfl"
)

func runSFL(args []string) error {
	if len(args) < 1 {
		return errors.New("sfl: expected a subcommand: check, fix, dedup")
	}

	switch args[0] {
	case "check":
		return runSFLCheck(args[1:])
	case "fix":
		return runSFLFix(args[1:])
	case "dedup":
		return runSFLDedup(args[1:])
	default:
		return fmt.Errorf("sfl: unknown subcommand %q", args[0])
	}
}

func runSFLCheck(args []string) error {
	fs := flag.NewFlagSet("sfl check", flag.ExitOnError)
	asJSON := fs.Bool("json", false, "report issues as JSON")
	all := fs.Bool("all", false, "report every issue, not just the first of each kind")

	if parseErr := fs.Parse(args); parseErr != nil {
		return parseErr
	}

	f, readErr := readSFLArg(fs)
	if readErr != nil {
		return readErr
	}

	issues := sfl.Check(f)

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
	}

	if sfl.HasBlockingIssues(issues) {
		return errors.New("sfl check: validation failed")
	}

	return nil
}

func runSFLFix(args []string) error {
	fs := flag.NewFlagSet("sfl fix", flag.ExitOnError)

	if parseErr := fs.Parse(args); parseErr != nil {
		return parseErr
	}

	f, readErr := readSFLArg(fs)
	if readErr != nil {
		return readErr
	}

	return sfl.Write(os.Stdout, sfl.Fix(f), false)
}

func runSFLDedup(args []string) error {
	fs := flag.NewFlagSet("sfl dedup", flag.ExitOnError)

	if parseErr := fs.Parse(args); parseErr != nil {
		return parseErr
	}

	f, readErr := readSFLArg(fs)
	if readErr != nil {
		return readErr
	}

	dups, deduped := sfl.Dedup(f)
	for _, dup := range dups {
		fmt.Fprintf(os.Stderr, "%d duplicates: %s\n", dup.Count, dup.File)
	}

	return sfl.Write(os.Stdout, deduped, false)
}

// readSFLArg reads the flag set's single SFL file argument, with "-"
// meaning standard input.
func readSFLArg(fs *flag.FlagSet) (*sfl.File, error) {
	if fs.NArg() != 1 {
		return nil, errors.New("expected one SFL file argument")
	}

	var r io.Reader

	if fs.Arg(0) == "-" {
		r = os.Stdin
	} else {
		f, openErr := os.Open(fs.Arg(0))
		if openErr != nil {
			return nil, openErr
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	return sfl.Read(r)
}
