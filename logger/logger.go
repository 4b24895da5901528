// Package logger gives every package in this module a shared, swappable
// structured logger. It is silent by default: the compiler core only logs
// when a caller opts in, the same way getamis/alice's crypto packages do.
package logger

import "github.com/getamis/sirius/log"

var logger = log.Discard()

// Logger returns the module-wide logger.
func Logger() log.Logger {
	return logger
}

// SetLogger replaces the module-wide logger, e.g. with a real sink wired up
// by a CLI entry point.
func SetLogger(l log.Logger) {
	logger = l
}
