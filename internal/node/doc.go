// Package node exposes the subtitle pipeline through the node-graph host
// contract.
//
// A Node declares typed inputs with defaults and a single positional output.
// The registry maps stable identifiers to nodes and display names. Hosts that
// pass inputs as a keyword dictionary use DictAdapter; hosts that push values
// through ports use PortAdapter. Adapters translate values only; every
// pipeline decision lives in internal/pipeline.
package node
