// Command fpcf is a small demonstration CLI over internal/demoanalyses: it
// runs the literal §8 scenarios through the real property store and engine,
// driven by a YAML manifest naming which scenarios to run and how many
// workers to give them.
package main

import (
	"os"

	"github.com/fpcfgo/fpcf/cmd/fpcf/cmd"
)

func main() {
	if err := cmd.New().Execute(); err != nil {
		os.Exit(1)
	}
}
