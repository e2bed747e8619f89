package main

import (
	_ "embed"
	"os"
	"strings"

	"snapsync/cmd"
)

// A Version set with -ldflags wins over the VERSION file.
//
//go:embed VERSION
var embeddedVersion string

func main() {
	if v := strings.TrimSpace(embeddedVersion); v != "" && cmd.Version == "dev" {
		cmd.Version = v
		cmd.ApplyVersion()
	}
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
