// Package output renders envlayer results for the terminal.
//
//   - formatter.go: Formatter interface and factory
//   - table.go: aligned KEY/VALUE and row tables
//   - json.go, yaml.go: machine-readable output
//   - dotenv.go: output that can be sourced or written back as a layer
//
// Values whose key looks like a secret are masked by the caller before
// they reach a formatter, so every format shows the same thing.
package output
