// Command sfs is the SimpleFS shell: it opens (but does not format or
// mount) a disk image of a given block count, then drives an interactive
// REPL of filesystem commands against it.
//
// The two positional arguments are parsed with urfave/cli; the REPL loop
// itself is a plain line-oriented scanner, since nothing about a
// read-eval-print loop is sub-command shaped.
package main

import (
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "sfs",
		Usage:     "interactively inspect and edit a SimpleFS disk image",
		ArgsUsage: "<diskfile> <nblocks>",
		Action:    run,
	}

	// RunAndExitOnError honors the exit codes run passes to cli.Exit,
	// printing the error to stderr itself before exiting.
	app.RunAndExitOnError()
}
