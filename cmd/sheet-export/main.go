package main

import (
	"os"

	"github.com/handiism/sheet-exporter/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
