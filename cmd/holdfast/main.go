// Package main is the single-binary entrypoint for Holdfast, the escrow and
// bounty settlement engine.
package main

import "github.com/holdfast-io/holdfast/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
