// loanctl is the console client for the loan gateway.
package main

import (
	"fmt"
	"os"

	"cashloan/internal/cli"
)

// Set through -ldflags at release time.
var (
	Version   = "v0.1.0"
	BuildTime = "unknown"
)

func main() {
	cli.Version = Version
	cli.BuildTime = BuildTime

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
