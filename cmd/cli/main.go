// Package main is the entry point for the buildmat CLI.
package main

import (
	"os"

	"github.com/mamadbah2/buildmat/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
