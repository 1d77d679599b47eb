// Package main provides the hashsearch tool.
//
// Usage:
//
//	hashsearch [flags] query...
//	hashsearch serve [flags]
//
// The population is read from --input: a local path, "-" for stdin,
// s3://bucket/key or minio://bucket/key. Compressed inputs are detected
// automatically. Settings may be given in a YAML file with --config;
// flags override the file.
package main

import (
	"fmt"
	"os"

	"github.com/mgaillard/hashsearch/cmd/hashsearch/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
