// Package main is the entry point for the hebscrape CLI.
package main

import (
	"os"

	"github.com/Dark-Gladiator/HEB-Scrapping/cmd/hebscrape/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
