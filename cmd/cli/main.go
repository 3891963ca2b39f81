package main

import (
	"os"

	"github.com/shiplabel-dev/shiplabel/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
