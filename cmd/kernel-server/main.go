// Package main is the entry point of kernel-server.
//
// kernel-server hosts the management model, the metric registry and its
// Prometheus exporter, and the bean container with its remote invocation
// service.
//
//	kernel-server --config /etc/kernel-server/config.yaml
//	kernel-server --set ejb.async_workers=32 --set log.level=debug
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/wildfly/wildfly-sub133/internal/infra/buildinfo"
	"github.com/wildfly/wildfly-sub133/internal/infra/confloader"
	"github.com/wildfly/wildfly-sub133/internal/server/config"
)

func main() {
	app := &cli.App{
		Name:    "kernel-server",
		Usage:   "application server management kernel",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML configuration file",
				EnvVars: []string{"KERNEL_CONFIG"},
			},
			&cli.StringSliceFlag{
				Name:  "set",
				Usage: "override a configuration key (key=value), may be repeated",
			},
			&cli.BoolFlag{
				Name:  "check",
				Usage: "validate the configuration, print it and exit",
			},
		},
		Action: func(c *cli.Context) error {
			overrides, err := parseOverrides(c.StringSlice("set"))
			if err != nil {
				return err
			}
			opts := loaderOptions(c.String("config"), overrides)

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if c.Bool("check") {
				fmt.Fprintf(c.App.Writer, "%+v\n", *config.Sanitize(cfg))
				return nil
			}
			return run(c.Context, cfg, opts)
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func loaderOptions(file string, overrides map[string]any) []confloader.Option {
	var opts []confloader.Option
	if file != "" {
		opts = append(opts, confloader.WithConfigFile(file))
	}
	if len(overrides) > 0 {
		opts = append(opts, confloader.WithOverrides(overrides))
	}
	return opts
}

// loadConfig layers defaults, file, environment and overrides, then
// validates the result.
func loadConfig(opts []confloader.Option) (*config.ServerConfig, error) {
	cfg := config.Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func parseOverrides(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("--set %q: want key=value", p)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
