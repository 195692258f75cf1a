package version

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/g30r93g/PRereq/internal/cli/registry"
	"github.com/g30r93g/PRereq/internal/i18n"
	"github.com/g30r93g/PRereq/internal/version"
)

type VersionCommandFactory struct{}

func NewVersionCommandFactory() *VersionCommandFactory {
	return &VersionCommandFactory{}
}

func (f *VersionCommandFactory) CreateCommand(t *i18n.Translations, _ *registry.Session) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: t.GetMessage("cmd_version_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, err := fmt.Fprintf(registry.Writer(cmd), "prereq %s\n", version.FullVersion())
			return err
		},
	}
}
