package main

import (
	"fmt"
	"os"
)

// zkvc issues credentials and schemas, builds presentations and verifies
// them, reading and writing JSON files.
func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
