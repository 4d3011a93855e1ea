package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/wildfly/wildfly-sub133/internal/cli/output"
	"github.com/wildfly/wildfly-sub133/internal/cli/repl"
	"github.com/wildfly/wildfly-sub133/internal/management"
)

// ReadAttributeCommand returns the read-attribute command.
func ReadAttributeCommand() *cli.Command {
	return &cli.Command{
		Name:      management.OpReadAttribute,
		Usage:     "read one attribute of a resource",
		ArgsUsage: "ADDRESS NAME",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("usage: read-attribute ADDRESS NAME", 2)
			}
			return runOperation(c, management.OpReadAttribute, c.Args().Get(0), map[string]any{
				"name": c.Args().Get(1),
			})
		},
	}
}

// ReadResourceCommand returns the read-resource command.
func ReadResourceCommand() *cli.Command {
	return &cli.Command{
		Name:      management.OpReadResource,
		Usage:     "read the attributes of a resource",
		ArgsUsage: "[ADDRESS]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "recursive", Aliases: []string{"r"}, Usage: "include children"},
			&cli.BoolFlag{Name: "include-runtime", Usage: "include runtime attributes and metrics"},
		},
		Action: func(c *cli.Context) error {
			return runOperation(c, management.OpReadResource, c.Args().First(), map[string]any{
				"recursive":       c.Bool("recursive"),
				"include-runtime": c.Bool("include-runtime"),
			})
		},
	}
}

// ReadChildrenNamesCommand returns the read-children-names command.
func ReadChildrenNamesCommand() *cli.Command {
	return &cli.Command{
		Name:      management.OpReadChildrenNames,
		Usage:     "list the children of a resource of one type",
		ArgsUsage: "ADDRESS CHILD-TYPE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return cli.Exit("usage: read-children-names ADDRESS CHILD-TYPE", 2)
			}
			return runOperation(c, management.OpReadChildrenNames, c.Args().Get(0), map[string]any{
				"child-type": c.Args().Get(1),
			})
		},
	}
}

// ReadResourceDescriptionCommand returns the read-resource-description command.
func ReadResourceDescriptionCommand() *cli.Command {
	return &cli.Command{
		Name:      management.OpReadResourceDescription,
		Usage:     "describe the attributes of a resource",
		ArgsUsage: "[ADDRESS]",
		Action: func(c *cli.Context) error {
			return runOperation(c, management.OpReadResourceDescription, c.Args().First(), nil)
		},
	}
}

// ExecuteCommand runs one request written in shell syntax.
func ExecuteCommand() *cli.Command {
	return &cli.Command{
		Name:      "execute",
		Aliases:   []string{"x"},
		Usage:     "run a request such as /subsystem=ejb3:read-resource(recursive=true)",
		ArgsUsage: "REQUEST",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("usage: execute REQUEST", 2)
			}
			op, err := repl.ParseRequest(c.Args().First())
			if err != nil {
				return err
			}
			return execute(c, op)
		},
	}
}

// ShellCommand starts the interactive shell.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "interactive management shell",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-history", Usage: "do not read or write the history file"},
		},
		Action: func(c *cli.Context) error {
			client, g, err := newClient(c)
			if err != nil {
				return err
			}

			file := repl.DefaultHistoryFile()
			if c.Bool("no-history") {
				file = ""
			}
			h := repl.NewHistory(file)
			if err := h.Load(); err != nil {
				PrintError(c.App.ErrWriter, fmt.Errorf("load history: %w", err))
			}

			r := repl.New(c.App.Reader, c.App.Writer, client, output.NewFormatter(g.Output), h)
			runErr := r.Run(c.Context)
			if err := h.Save(); err != nil {
				PrintError(c.App.ErrWriter, fmt.Errorf("save history: %w", err))
			}
			return runErr
		},
	}
}

func runOperation(c *cli.Context, name, address string, params map[string]any) error {
	addr, err := management.ParseAddress(address)
	if err != nil {
		return err
	}
	return execute(c, management.Operation{Name: name, Address: addr, Params: params})
}

func execute(c *cli.Context, op management.Operation) error {
	client, g, err := newClient(c)
	if err != nil {
		return err
	}

	res, err := client.Execute(c.Context, op)
	if err != nil {
		return err
	}
	if res.Failed() {
		return cli.Exit(res.FailureDescription, 1)
	}
	return render(c, g, res.Result)
}
