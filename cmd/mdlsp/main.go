package main

import (
	"os"

	"github.com/jsuarez-dev/MarkdownLSP/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
