// Package main is the entry point for the borrowck CLI.
package main

import (
	"os"

	"github.com/mmynk/borrowchecker/cmd/borrowck/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
