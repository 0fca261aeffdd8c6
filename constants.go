// Package main provides app-selector, a modal picker that resolves the
// applications able to service an app control request, lets the user pick
// one and forwards the request to it.
package main

import "time"

const (
	// ExitError is the exit code for CLI and startup failures.
	ExitError = 1

	// ExitSIGINT is the exit code when terminated by SIGINT (128 + signal number per POSIX).
	ExitSIGINT = 130

	// fullLayoutThreshold is the candidate count above which the full-size
	// layout replaces the compact one.
	fullLayoutThreshold = 3

	// startupPollInterval is how often a launched app is checked for.
	startupPollInterval = 250 * time.Millisecond

	// compactWidth is the popup width in the compact layout.
	compactWidth = 44
)
