// Package tui holds the terminal styling of pgbulk output and the detection
// of whether output is going to a human.
package tui
