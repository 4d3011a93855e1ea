package command

import (
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/wildfly/wildfly-sub133/internal/cli/config"
	"github.com/wildfly/wildfly-sub133/internal/cli/output"
)

// ControllerCommand manages saved controller profiles.
func ControllerCommand() *cli.Command {
	return &cli.Command{
		Name:  "controller",
		Usage: "manage saved controller profiles",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "save a profile from the global connection flags",
				ArgsUsage: "NAME",
				Action:    controllerAdd,
			},
			{
				Name:      "use",
				Usage:     "select the default profile",
				ArgsUsage: "NAME",
				Action:    controllerUse,
			},
			{
				Name:      "remove",
				Usage:     "delete a profile",
				ArgsUsage: "NAME",
				Action:    controllerRemove,
			},
			{
				Name:   "list",
				Usage:  "list saved profiles",
				Action: controllerList,
			},
		},
	}
}

func controllerAdd(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return cli.Exit("usage: controller add NAME", 2)
	}
	server := c.String("server")
	if server == "" {
		return cli.Exit("--server is required", 2)
	}

	return updateConfig(c, func(cfg *config.CLIConfig) error {
		cfg.Controllers[name] = config.Profile{
			Server:   server,
			User:     c.String("user"),
			Password: c.String("password"),
			CAFile:   c.String("ca-file"),
			Insecure: c.Bool("insecure"),
		}
		if cfg.Current == "" {
			cfg.Current = name
		}
		return nil
	})
}

func controllerUse(c *cli.Context) error {
	name := c.Args().First()
	return updateConfig(c, func(cfg *config.CLIConfig) error {
		if _, ok := cfg.Controllers[name]; !ok {
			return fmt.Errorf("unknown controller %q", name)
		}
		cfg.Current = name
		return nil
	})
}

func controllerRemove(c *cli.Context) error {
	name := c.Args().First()
	return updateConfig(c, func(cfg *config.CLIConfig) error {
		if _, ok := cfg.Controllers[name]; !ok {
			return fmt.Errorf("unknown controller %q", name)
		}
		delete(cfg.Controllers, name)
		if cfg.Current == name {
			cfg.Current = ""
		}
		return nil
	})
}

func controllerList(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	names := make([]string, 0, len(cfg.Controllers))
	for name := range cfg.Controllers {
		names = append(names, name)
	}
	sort.Strings(names)

	t := &output.Table{Headers: []string{"", "NAME", "SERVER", "USER"}}
	for _, name := range names {
		p := cfg.Controllers[name]
		marker := ""
		if name == cfg.Current {
			marker = "*"
		}
		t.AddRow(marker, name, p.Server, p.User)
	}
	return t.Render(c.App.Writer)
}

func updateConfig(c *cli.Context, fn func(*config.CLIConfig) error) error {
	path := c.String("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := fn(cfg); err != nil {
		return err
	}
	return config.Save(cfg, path)
}
