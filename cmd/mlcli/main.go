// Command mlcli trains and applies the Titanic survival classifier.
package main

import (
	"os"

	"github.com/YuminosukeSato/mlcli/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
