// Package main is the entry point for the folio CLI.
package main

import (
	"os"

	"github.com/jmylchreest/folio/cmd/folio/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
