package main

import (
	"os"

	"github.com/valuehunter/hunter/cmd/hunter/commands"
)

// main is the entry point for the hunter CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
