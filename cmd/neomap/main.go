package main

import (
	"fmt"
	"os"

	"github.com/saulfrancisco-ruizacevedo/go-neomap/cmd/neomap/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
