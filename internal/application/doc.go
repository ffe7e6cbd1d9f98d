// Package application wires the override namespace, logger, configuration
// store and file watcher from command-line options. The App it builds owns
// the process-wide store, keeping cmd/termconf focused on flag parsing and
// presentation.
package application
