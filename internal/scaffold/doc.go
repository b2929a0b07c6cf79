// Package scaffold writes a starter talon from an embedded template. It
// powers the "talon init" command.
package scaffold
