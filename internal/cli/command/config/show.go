package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/g30r93g/PRereq/internal/cli/registry"
	"github.com/g30r93g/PRereq/internal/config"
	"github.com/g30r93g/PRereq/internal/i18n"
)

const redacted = "********"

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations, s *registry.Session) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("cmd_config_show_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := s.Config(cmd)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(redact(*cfg), "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(registry.Writer(cmd), string(data))
			return err
		},
	}
}

// redact masks credentials on a copy of cfg.
func redact(cfg config.Config) config.Config {
	if cfg.GitHub.Token != "" {
		cfg.GitHub.Token = redacted
	}
	if cfg.Server.WebhookSecret != "" {
		cfg.Server.WebhookSecret = redacted
	}
	cfg.Checks.BypassLabels = append([]string(nil), cfg.Checks.BypassLabels...)
	return cfg
}
