// Package command defines the kernel-cli commands on top of urfave/cli/v2.
//
//   - root.go: App, global flags and client resolution
//   - management.go: read-* operations, execute and the interactive shell
//   - invoke.go: remote bean invocation and session creation
//   - metrics.go: exporter scrape
//   - controller.go: saved controller profiles
//   - security.go: password hashing for users files
package command
