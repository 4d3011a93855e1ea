// Package main is the entry point of kernel-cli.
//
// kernel-cli reads metrics and management attributes from a kernel-server
// and invokes beans through the remote view:
//
//	kernel-cli read-resource /subsystem=ejb3 --recursive --include-runtime
//	kernel-cli invoke -d kernel-sample.jar -b Calculator -m add 1 2
//	kernel-cli shell
package main

import (
	"os"

	"github.com/wildfly/wildfly-sub133/internal/cli/command"
)

func main() {
	app := command.App()
	if err := app.Run(os.Args); err != nil {
		command.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}
