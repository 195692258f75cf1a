package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/g30r93g/PRereq/internal/cli/registry"
	"github.com/g30r93g/PRereq/internal/config"
	"github.com/g30r93g/PRereq/internal/i18n"
	"github.com/g30r93g/PRereq/internal/ui"
)

func (c *ConfigCommandFactory) newInitCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: t.GetMessage("cmd_config_init_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   t.GetMessage("flag_force_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.String(registry.FlagConfig)
			if path == "" {
				path = config.DefaultPath()
			}

			if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
				return fmt.Errorf("%s", t.GetMessage("config_exists", 0, map[string]interface{}{"Path": path}))
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			cfg := config.Default(path)
			cfg.Language = t.Language()
			if err := config.SaveConfig(cfg); err != nil {
				return err
			}

			ui.PrintSuccess(registry.Writer(cmd), t.GetMessage("config_saved", 0, map[string]interface{}{"Path": path}))
			return nil
		},
	}
}
