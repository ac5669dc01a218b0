// Package model builds pgbulk.Model descriptions from Go struct tags or YAML
// model files.
package model
