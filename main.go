package main

import (
	"os"

	"github.com/medquiz/medquiz/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
