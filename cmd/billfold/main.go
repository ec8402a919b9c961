package main

import (
	"os"

	"github.com/billfold-dev/billfold/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
