// Package main provides the entry point for the pointage CLI tool.
package main

import (
	"github.com/inhlab/pointage/cmd/pointage/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

func main() {
	cmd.Execute(version, commit, date, builtBy)
}
