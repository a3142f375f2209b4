package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"

	"github.com/parkrevil/firebat-sub000/pkg/config"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:  "validate",
				Usage: "Validate a configuration file",
				Description: `Validates a firebat configuration file against the schema and checks its values.

Examples:
  firebat config validate                      # Validates default config locations
  firebat -c firebat.toml config validate      # Validates specific file`,
				Action: runConfigValidate,
			},
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Description: `Shows the merged configuration from defaults and config file as TOML.

Examples:
  firebat config show                   # Show effective config
  firebat -c firebat.yaml config show   # Show config from specific file`,
				Action: runConfigShow,
			},
		},
	}
}

func loadResult(c *cli.Context) (*config.LoadResult, error) {
	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	return config.LoadConfig(opts...)
}

func runConfigValidate(c *cli.Context) error {
	out := c.App.Writer
	result, err := loadResult(c)
	if err != nil {
		color.New(color.FgRed).Fprintln(out, "Configuration validation failed:")
		fmt.Fprintf(out, "  - %s\n", err)
		return err
	}

	if result.Source != "" {
		color.New(color.FgGreen).Fprintf(out, "Configuration valid: %s\n", result.Source)
	} else {
		color.New(color.FgYellow).Fprintln(out, "No config file found. Default configuration is valid.")
	}
	return nil
}

func runConfigShow(c *cli.Context) error {
	result, err := loadResult(c)
	if err != nil {
		return err
	}

	out := c.App.Writer
	if result.Source != "" {
		fmt.Fprintf(out, "# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Fprintln(out, "# Default configuration (no config file found)")
	}

	content, err := toml.Marshal(*result.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = out.Write(content)
	return err
}
