package main

import (
	"os"

	"github.com/saulo-duarte/chronos-goals/cmd/chronosctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
