// Package loader turns indexed talons into what an agent runtime consumes:
// the list of callable capabilities and a system prompt section describing
// them.
package loader
