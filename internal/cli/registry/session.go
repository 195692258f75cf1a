package registry

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/urfave/cli/v3"

	"github.com/g30r93g/PRereq/internal/config"
	"github.com/g30r93g/PRereq/internal/i18n"
	"github.com/g30r93g/PRereq/internal/infrastructure/di"
	"github.com/g30r93g/PRereq/internal/logger"
)

const (
	FlagConfig    = "config"
	FlagDebug     = "debug"
	FlagVerbose   = "verbose"
	FlagLogFormat = "log-format"
)

// Session holds the configuration preloaded by main and hands commands a
// container built from whatever --config finally points at.
type Session struct {
	config *config.Config
	t      *i18n.Translations

	mu        sync.Mutex
	container *di.Container
}

func NewSession(cfg *config.Config, t *i18n.Translations) *Session {
	return &Session{config: cfg, t: t}
}

func (s *Session) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    FlagConfig,
			Aliases: []string{"c"},
			Value:   s.config.PathFile,
			Usage:   s.t.GetMessage("flag_config_usage", 0, nil),
			Sources: cli.EnvVars("PREREQ_CONFIG"),
		},
		&cli.BoolFlag{
			Name:  FlagDebug,
			Usage: s.t.GetMessage("flag_debug_usage", 0, nil),
		},
		&cli.BoolFlag{
			Name:    FlagVerbose,
			Aliases: []string{"v"},
			Usage:   s.t.GetMessage("flag_verbose_usage", 0, nil),
		},
		&cli.StringFlag{
			Name:    FlagLogFormat,
			Value:   logger.FormatPretty,
			Usage:   s.t.GetMessage("flag_log_format_usage", 0, nil),
			Sources: cli.EnvVars("PREREQ_LOG_FORMAT"),
		},
	}
}

// Config returns the effective configuration, reloading it when --config
// names a different file than the one main loaded.
func (s *Session) Config(cmd *cli.Command) (*config.Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := cmd.String(FlagConfig)
	if path == "" || path == s.config.PathFile {
		return s.config, nil
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	s.config = cfg
	s.container = nil
	return cfg, nil
}

// Open initializes logging from the global flags and returns the container.
func (s *Session) Open(ctx context.Context, cmd *cli.Command) (*di.Container, error) {
	level := logger.LevelFromFlags(cmd.Bool(FlagDebug), cmd.Bool(FlagVerbose))
	if err := logger.Initialize(level, cmd.String(FlagLogFormat)); err != nil {
		return nil, err
	}

	cfg, err := s.Config(cmd)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.container == nil {
		s.container = di.NewContainer(cfg, s.t)
		logger.Debug(ctx, "container ready", "config", cfg.PathFile, "driver", cfg.Storage.Driver)
	}
	return s.container, nil
}

// SetContainer injects a prepared container, used by tests.
func (s *Session) SetContainer(c *di.Container) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.container = c
}

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.container == nil {
		return nil
	}
	return s.container.Close()
}

func Writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func Reader(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}
