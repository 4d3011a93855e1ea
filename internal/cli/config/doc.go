// Package config holds the kernel-cli settings file (~/.kernel-cli.yaml):
// named controller profiles plus the preferred output format.
package config
