package main

import (
	"os"

	"github.com/hypotest/hypotest/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
