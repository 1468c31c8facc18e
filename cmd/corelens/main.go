package main

import (
	"os"

	"github.com/corelens/rca-engine/cmd/corelens/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
