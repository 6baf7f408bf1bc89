package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/cottonlesergal/ucontrol/pkg/cli/config"
	"github.com/cottonlesergal/ucontrol/pkg/utils/logging"
)

func cmdValidate() *cli.Command {
	var appCfg config.App

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the application configuration file",
		Flags:   appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := appCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "configuration validation failed")
			}

			logging.Default().Info("Configuration validation passed",
				"presence_overrides", len(cfg.Presence),
			)
			return nil
		},
	}
}
