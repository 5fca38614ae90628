package main

import (
	"os"

	"github.com/certwatch-app/certcheck/internal/cmd"
)

func main() {
	// cobra prints the error itself
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
