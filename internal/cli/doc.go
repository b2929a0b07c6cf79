// Package cli defines the Cobra command tree for the talon CLI. Each file
// registers one top-level command with the root command. Commands resolve
// configuration in the root's PersistentPreRunE, then delegate to the
// registry, loader and scaffold packages and only handle flags and output.
package cli
