// Package daemon coordinates the long-running Lumina process.
//
// It wires configuration, the state store, and the watcher manager into a
// single lifecycle with flock-based locking to prevent multiple instances
// from processing the same users concurrently.
package daemon
