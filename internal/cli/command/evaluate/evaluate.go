package evaluate

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/g30r93g/PRereq/internal/cli/command/completion"
	"github.com/g30r93g/PRereq/internal/cli/registry"
	"github.com/g30r93g/PRereq/internal/i18n"
	"github.com/g30r93g/PRereq/internal/models"
	"github.com/g30r93g/PRereq/internal/services"
	"github.com/g30r93g/PRereq/internal/ui"
	"github.com/g30r93g/PRereq/internal/vcs"
)

type EvaluateCommandFactory struct{}

func NewEvaluateCommandFactory() *EvaluateCommandFactory {
	return &EvaluateCommandFactory{}
}

func (f *EvaluateCommandFactory) CreateCommand(t *i18n.Translations, s *registry.Session) *cli.Command {
	return &cli.Command{
		Name:          "evaluate",
		Usage:         t.GetMessage("cmd_evaluate_usage", 0, nil),
		ShellComplete: completion.FlagComplete,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "pr",
				Usage:    t.GetMessage("flag_pr_usage", 0, nil),
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "publish",
				Usage: t.GetMessage("flag_publish_usage", 0, nil),
			},
			&cli.IntFlag{
				Name:    "installation",
				Usage:   t.GetMessage("flag_installation_usage", 0, nil),
				Sources: cli.EnvVars("PREREQ_INSTALLATION_ID"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ref, err := models.ParsePRRef(cmd.String("pr"))
			if err != nil {
				return err
			}

			c, err := s.Open(ctx, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			svc, err := c.GetDependencyService(ctx)
			if err != nil {
				return err
			}
			client, err := c.ClientForInstallation(cmd.Int("installation"))
			if err != nil {
				return err
			}

			verdict, err := Run(ctx, svc, client, ref, cmd.Bool("publish"))
			if err != nil {
				return err
			}
			ui.PrintVerdict(registry.Writer(cmd), ref, verdict)
			return nil
		},
	}
}

// Run fetches ref and evaluates it. Without publish nothing is written to the
// hosting provider: no check run and no blocking notices.
func Run(ctx context.Context, svc *services.DependencyService, client vcs.Client, ref models.PRRef, publish bool) (models.Verdict, error) {
	pr, err := client.GetPullRequest(ctx, ref)
	if err != nil {
		return models.Verdict{}, err
	}

	if publish {
		return svc.ForClient(client).EvaluateAndPublish(ctx, pr)
	}
	return svc.With(
		services.WithStatusLookup(client),
		services.WithNotices(nil),
		services.WithPublisher(nil),
	).Evaluate(ctx, pr)
}
