package config

import (
	"github.com/urfave/cli/v3"

	"github.com/g30r93g/PRereq/internal/cli/registry"
	"github.com/g30r93g/PRereq/internal/i18n"
)

type ConfigCommandFactory struct{}

func NewConfigCommandFactory() *ConfigCommandFactory {
	return &ConfigCommandFactory{}
}

func (c *ConfigCommandFactory) CreateCommand(t *i18n.Translations, s *registry.Session) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: t.GetMessage("cmd_config_usage", 0, nil),
		Commands: []*cli.Command{
			c.newInitCommand(t),
			c.newShowCommand(t, s),
		},
	}
}
