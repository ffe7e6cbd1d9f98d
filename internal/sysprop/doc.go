// Package sysprop provides the override namespace consulted before any file
// based configuration: explicit key=value definitions (the CLI's -D flags)
// layered over the process environment.
package sysprop
