package main

import (
	"os"

	"github.com/vitalstory/vitalstory/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
