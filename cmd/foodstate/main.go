// Package main provides the foodstate CLI.
package main

import (
	"os"

	"github.com/driedl/food-graph-sub002/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
