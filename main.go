package main

import (
	"os"

	"github.com/avstrong/ratecal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
