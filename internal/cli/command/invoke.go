package command

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/wildfly/wildfly-sub133/internal/ejb/remote"
)

const invokeDescription = `Each ARG is decoded as JSON when possible, otherwise passed as a string.

   kernel-cli invoke --deployment app --component Calculator --method add 1 2`

// InvokeCommand returns the invoke command.
func InvokeCommand() *cli.Command {
	return &cli.Command{
		Name:        "invoke",
		Usage:       "call a business method through the remote view",
		ArgsUsage:   "[ARG...]",
		Description: invokeDescription,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "deployment", Aliases: []string{"d"}, Required: true},
			&cli.StringFlag{Name: "component", Aliases: []string{"b"}, Required: true},
			&cli.StringFlag{Name: "method", Aliases: []string{"m"}, Required: true},
			&cli.StringFlag{Name: "session", Usage: "session ID of a stateful bean"},
		},
		Action: func(c *cli.Context) error {
			client, g, err := newClient(c)
			if err != nil {
				return err
			}

			result, err := client.Remote().Invoke(c.Context, remote.Call{
				Deployment: c.String("deployment"),
				Component:  c.String("component"),
				Method:     c.String("method"),
				SessionID:  c.String("session"),
				Args:       parseArgs(c.Args().Slice()),
			})
			if err != nil {
				var appErr *remote.ApplicationError
				if errors.As(err, &appErr) {
					return cli.Exit("application error: "+appErr.Message, 1)
				}
				return err
			}
			return render(c, g, result)
		},
	}
}

// CreateSessionCommand returns the create-session command.
func CreateSessionCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-session",
		Usage: "start a session with a stateful bean and print its ID",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "deployment", Aliases: []string{"d"}, Required: true},
			&cli.StringFlag{Name: "component", Aliases: []string{"b"}, Required: true},
		},
		Action: func(c *cli.Context) error {
			client, _, err := newClient(c)
			if err != nil {
				return err
			}
			id, err := client.Remote().CreateSession(c.Context, c.String("deployment"), c.String("component"))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, id)
			return err
		},
	}
}

func parseArgs(raw []string) []any {
	args := make([]any, 0, len(raw))
	for _, s := range raw {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			v = s
		}
		args = append(args, v)
	}
	return args
}
