package main

import (
	"os"

	"github.com/brightpath/assessflow/cmd/assessflow/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
