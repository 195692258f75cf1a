package main

import (
	"context"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/g30r93g/PRereq/internal/cli/command/completion"
	"github.com/g30r93g/PRereq/internal/cli/command/config"
	"github.com/g30r93g/PRereq/internal/cli/command/evaluate"
	"github.com/g30r93g/PRereq/internal/cli/command/extract"
	"github.com/g30r93g/PRereq/internal/cli/command/graph"
	"github.com/g30r93g/PRereq/internal/cli/command/serve"
	versioncmd "github.com/g30r93g/PRereq/internal/cli/command/version"
	"github.com/g30r93g/PRereq/internal/cli/registry"
	cfg "github.com/g30r93g/PRereq/internal/config"
	"github.com/g30r93g/PRereq/internal/i18n"
	"github.com/g30r93g/PRereq/internal/version"
)

func main() {
	app, session, err := initializeApp()
	if err != nil {
		log.Fatalf("error starting prereq: %v", err)
	}
	defer func() { _ = session.Close() }()

	if err := app.Run(context.Background(), os.Args); err != nil {
		_ = session.Close()
		log.Fatal(err)
	}
}

func initializeApp() (*cli.Command, *registry.Session, error) {
	cfgApp, err := cfg.LoadConfig(os.Getenv("PREREQ_CONFIG"))
	if err != nil {
		return nil, nil, err
	}

	translations, err := i18n.NewTranslations(cfgApp.Language)
	if err != nil {
		return nil, nil, err
	}

	session := registry.NewSession(cfgApp, translations)
	registerCommand := registry.NewRegistry(session, translations)

	factories := map[string]registry.CommandFactory{
		"serve":      serve.NewServeCommandFactory(),
		"evaluate":   evaluate.NewEvaluateCommandFactory(),
		"extract":    extract.NewExtractCommandFactory(),
		"graph":      graph.NewGraphCommandFactory(),
		"config":     config.NewConfigCommandFactory(),
		"version":    versioncmd.NewVersionCommandFactory(),
		"completion": completion.NewCompletionCommandFactory(),
	}
	for name, factory := range factories {
		if err := registerCommand.Register(name, factory); err != nil {
			return nil, nil, err
		}
	}

	return &cli.Command{
		Name:                  "prereq",
		Usage:                 translations.GetMessage("app_usage", 0, nil),
		Version:               version.FullVersion(),
		Flags:                 session.Flags(),
		Commands:              registerCommand.CreateCommands(),
		EnableShellCompletion: true,
	}, session, nil
}
