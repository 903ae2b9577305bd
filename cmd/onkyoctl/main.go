// Package main is the entry point for the onkyoctl CLI.
//
// Usage:
//
//	onkyoctl [flags] <command> [args]
//
// Commands:
//
//	names      - Query custom input names and show the display-name table
//	probe      - Send rename queries and dump every raw reply
//	discover   - Scan the network for receivers
//	status     - Show power, volume, muting, and the active input
//	monitor    - Stream receiver events live
//	send       - Send a raw or friendly-named command
//	serve      - REST API over the receiver inventory
//	config     - Manage receiver contexts
//	version    - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/andyrak/onkyo-ng/cmd/onkyoctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
