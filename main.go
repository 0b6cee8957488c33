package main

import (
	"os"

	"github.com/csh0601/snapgrade/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
