// Command analyze runs the marksheet analyses on a local file and prints
// the result as JSON, without Redis or PostgreSQL.
package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitData  = 2
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		return exitCode(err)
	}
	return exitOK
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
