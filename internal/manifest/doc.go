// Package manifest parses and validates TALON.md files. A manifest is a
// YAML metadata block between two "---" lines followed by a free-text
// documentation body. Parsing is pure: it never writes to disk and keeps no
// state, so it is safe to call concurrently on different directories.
package manifest
