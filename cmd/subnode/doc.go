// Package main hosts the subnode CLI entrypoint and command graph.
//
// The Cobra command tree runs the subtitle pipeline on a single video, exposes
// the node contract for hosts that shell out (describe and invoke), serves the
// node over HTTP, and inspects or cleans the job history. It centralizes
// configuration resolution and logger setup so subcommands only wire flags to
// the internal packages.
package main
