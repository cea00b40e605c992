// Package main provides the xsc command line tool.
package main

import (
	"os"

	"github.com/leapstack-labs/xsc/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
