package main

import (
	"os"

	"github.com/goliatone/go-enrollment/cmd/enrollment/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
