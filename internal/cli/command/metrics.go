package command

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

// MetricsCommand returns the metrics command.
func MetricsCommand() *cli.Command {
	return &cli.Command{
		Name:  "metrics",
		Usage: "print the Prometheus exposition of the server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "only print families whose name contains this text"},
		},
		Action: func(c *cli.Context) error {
			client, _, err := newClient(c)
			if err != nil {
				return err
			}
			text, err := client.Metrics(c.Context)
			if err != nil {
				return err
			}

			filter := c.String("filter")
			if filter == "" {
				_, err = fmt.Fprint(c.App.Writer, text)
				return err
			}

			sc := bufio.NewScanner(strings.NewReader(text))
			for sc.Scan() {
				if line := sc.Text(); strings.Contains(metricName(line), filter) {
					fmt.Fprintln(c.App.Writer, line)
				}
			}
			return sc.Err()
		},
	}
}

// metricName extracts the family name from a sample, HELP or TYPE line.
func metricName(line string) string {
	if strings.HasPrefix(line, "# ") {
		fields := strings.Fields(line)
		if len(fields) >= 3 {
			return fields[2]
		}
		return ""
	}
	if i := strings.IndexAny(line, "{ "); i >= 0 {
		return line[:i]
	}
	return line
}
