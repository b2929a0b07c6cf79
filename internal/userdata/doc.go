// Package userdata resolves where talon keeps its files (the packages root,
// the index and the config file) and checks that layout for problems. XDG
// base directories are honored on every platform.
package userdata
