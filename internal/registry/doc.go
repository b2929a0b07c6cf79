// Package registry keeps the local index of talons. It discovers talon
// directories under a packages root, persists the index as a YAML file that
// is replaced atomically on every save, answers list/search/info queries, and
// reconciles the index against what is actually on disk.
package registry
