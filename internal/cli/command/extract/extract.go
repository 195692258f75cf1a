package extract

import (
	"context"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/g30r93g/PRereq/internal/cli/command/completion"
	"github.com/g30r93g/PRereq/internal/cli/registry"
	"github.com/g30r93g/PRereq/internal/i18n"
	"github.com/g30r93g/PRereq/internal/parse"
	"github.com/g30r93g/PRereq/internal/ui"
)

type ExtractCommandFactory struct{}

func NewExtractCommandFactory() *ExtractCommandFactory {
	return &ExtractCommandFactory{}
}

func (f *ExtractCommandFactory) CreateCommand(t *i18n.Translations, _ *registry.Session) *cli.Command {
	return &cli.Command{
		Name:          "extract",
		Usage:         t.GetMessage("cmd_extract_usage", 0, nil),
		ArgsUsage:     "[text]",
		ShellComplete: completion.FlagComplete,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "owner",
				Usage: t.GetMessage("flag_owner_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:  "repo",
				Usage: t.GetMessage("flag_repo_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			text, err := readText(cmd)
			if err != nil {
				return err
			}

			ex := parse.Extract(text, cmd.String("owner"), cmd.String("repo"))

			w := registry.Writer(cmd)
			ui.PrintInfo(w, t.GetMessage("references_found", len(ex.References), map[string]interface{}{
				"Count":   len(ex.References),
				"Enforce": ex.Enforce,
			}))
			ui.PrintRefs(w, ex.References)
			return nil
		},
	}
}

// readText joins the positional arguments, or reads stdin when there are none.
func readText(cmd *cli.Command) (string, error) {
	if cmd.Args().Present() {
		return strings.Join(cmd.Args().Slice(), " "), nil
	}
	data, err := io.ReadAll(registry.Reader(cmd))
	if err != nil {
		return "", err
	}
	return string(data), nil
}
