package main

import (
	"os"

	"github.com/coursekit/slidekit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
