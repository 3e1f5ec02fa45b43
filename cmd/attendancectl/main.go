package main

import (
	"os"

	"github.com/cmlabs-hris/attendance-engine/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
