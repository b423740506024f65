// Package main is the entry point for the nebuctl CLI.
//
// nebuctl provisions Nebula overlay networks over SSH. It sets up one
// lighthouse per network, then joins ordinary nodes to it, assigning each
// node the next free address of the network block.
//
// Commands: setup lighthouse, setup node, version.
//
// For detailed usage information, run:
//
//	nebuctl --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/nebuctl/cmd/nebuctl/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
