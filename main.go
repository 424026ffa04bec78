package main

import (
	"os"

	"github.com/ebrivera/cordoba-hosue/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
