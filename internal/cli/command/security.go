package command

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/wildfly/wildfly-sub133/internal/security"
)

// HashPasswordCommand prints a password hash for a users file entry.
func HashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:        "hash-password",
		Usage:       "hash a password for the server users file",
		ArgsUsage:   "[PASSWORD]",
		Description: "Without an argument the password is read from the first line of stdin.",
		Action: func(c *cli.Context) error {
			password := c.Args().First()
			if password == "" {
				line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
				if err != nil && line == "" {
					return cli.Exit("no password given", 2)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return cli.Exit("password must not be empty", 2)
			}

			hash, err := security.HashPassword(password)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, hash)
			return err
		},
	}
}
