// Package main provides the hashgen tool, which writes random 64-bit codes.
//
// Usage:
//
//	hashgen N [--seed A,B] [--output file] [--compression zstd]
package main

import (
	"fmt"
	"os"

	"github.com/mgaillard/hashsearch/cmd/hashgen/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
