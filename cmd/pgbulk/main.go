package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/pgbulk/internal/cli"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(pgbulk.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(pgbulk.ExitCodeForError(err))
	}
}
