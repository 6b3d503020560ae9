package main

import (
	"os"

	"github.com/radarinvest/backend/cmd/radar/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
