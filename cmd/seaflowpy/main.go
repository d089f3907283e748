// Command seaflowpy works with SeaFlow instrument files: validating EVT
// event files, checking and repairing SFL ship logs, and importing results
// into the cruise database.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error

	switch os.Args[1] {
	case "evt":
		err = runEVT(os.Args[2:])
	case "sfl":
		err = runSFL(os.Args[2:])
	case "db":
		err = runDB(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "seaflowpy: unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "seaflowpy: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: seaflowpy <command> [arguments]

commands:
  evt validate              decode EVT files and report corruption
  sfl check                 validate an SFL file
  sfl fix                   repair an SFL file for database import
  sfl dedup                 drop duplicate SFL rows
  db import-sfl             validate and store SFL metadata
  db import-filter-params   store particle filtering parameters
`)
}
