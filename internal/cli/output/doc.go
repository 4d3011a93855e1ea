// Package output renders kernel-cli results.
//
//   - formatter.go: Formatter interface, ParseFormat and NewFormatter
//   - table.go: key/value tables with flattened nested maps
//   - json.go, yaml.go: machine-readable encoders
package output
