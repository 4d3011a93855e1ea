package command

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/wildfly/wildfly-sub133/internal/cli/config"
	"github.com/wildfly/wildfly-sub133/internal/cli/connection"
	"github.com/wildfly/wildfly-sub133/internal/cli/output"
	"github.com/wildfly/wildfly-sub133/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:                 "kernel-cli",
		Usage:                "management client for kernel-server",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			MetricsCommand(),
			ReadAttributeCommand(),
			ReadResourceCommand(),
			ReadChildrenNamesCommand(),
			ReadResourceDescriptionCommand(),
			ExecuteCommand(),
			ShellCommand(),
			InvokeCommand(),
			CreateSessionCommand(),
			ControllerCommand(),
			HashPasswordCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI settings file",
			EnvVars: []string{"KERNEL_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "controller",
			Usage:   "saved controller profile to use",
			EnvVars: []string{"KERNEL_CLI_CONTROLLER"},
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "management endpoint (default " + config.DefaultServer + ")",
			EnvVars: []string{"KERNEL_CLI_SERVER"},
		},
		&cli.StringFlag{
			Name:    "user",
			Aliases: []string{"u"},
			Usage:   "management user",
			EnvVars: []string{"KERNEL_CLI_USER"},
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "management password",
			EnvVars: []string{"KERNEL_CLI_PASSWORD"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
			EnvVars: []string{"KERNEL_CLI_OUTPUT"},
		},
		&cli.StringFlag{
			Name:    "ca-file",
			Usage:   "PEM bundle used to verify the server certificate",
			EnvVars: []string{"KERNEL_CLI_CA_FILE"},
		},
		&cli.BoolFlag{
			Name:    "insecure",
			Usage:   "skip server certificate verification",
			EnvVars: []string{"KERNEL_CLI_INSECURE"},
		},
	}
}

// Globals are the resolved global settings of one invocation.
type Globals struct {
	Profile config.Profile
	Output  output.Format
}

// ParseGlobals merges the settings file, the selected controller profile and
// the command line. Flags win.
func ParseGlobals(c *cli.Context) (*Globals, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}

	if name := c.String("controller"); name != "" {
		if _, ok := cfg.Controllers[name]; !ok {
			return nil, fmt.Errorf("unknown controller %q", name)
		}
		cfg.Current = name
	}

	profile := cfg.Active().Merge(config.Profile{
		Server:   c.String("server"),
		User:     c.String("user"),
		Password: c.String("password"),
		CAFile:   c.String("ca-file"),
		Insecure: c.Bool("insecure"),
	})

	format := c.String("output")
	if format == "" {
		format = cfg.Output
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return nil, err
	}

	return &Globals{Profile: profile, Output: f}, nil
}

// newClient builds a management client from the global settings.
func newClient(c *cli.Context) (*connection.Client, *Globals, error) {
	g, err := ParseGlobals(c)
	if err != nil {
		return nil, nil, err
	}
	client, err := connection.New(connection.Options{
		Server:   g.Profile.Server,
		User:     g.Profile.User,
		Password: g.Profile.Password,
		CAFile:   g.Profile.CAFile,
		Insecure: g.Profile.Insecure,
	})
	if err != nil {
		return nil, nil, err
	}
	return client, g, nil
}

func render(c *cli.Context, g *Globals, data any) error {
	return output.NewFormatter(g.Output).Format(c.App.Writer, data)
}

// PrintError prints an error message.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "error: %v\n", err)
}
