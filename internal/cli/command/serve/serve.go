package serve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/g30r93g/PRereq/internal/cli/registry"
	"github.com/g30r93g/PRereq/internal/config"
	"github.com/g30r93g/PRereq/internal/i18n"
	"github.com/g30r93g/PRereq/internal/logger"
	"github.com/g30r93g/PRereq/internal/ui"
	"github.com/g30r93g/PRereq/internal/webhook"
)

const (
	healthPath        = "/healthz"
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

type ServeCommandFactory struct{}

func NewServeCommandFactory() *ServeCommandFactory {
	return &ServeCommandFactory{}
}

func (f *ServeCommandFactory) CreateCommand(t *i18n.Translations, s *registry.Session) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: t.GetMessage("cmd_serve_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: t.GetMessage("flag_addr_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			c, err := s.Open(ctx, cmd)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()

			cfg := c.GetConfig()
			svc, err := c.GetDependencyService(ctx)
			if err != nil {
				return err
			}
			if _, err := c.GetClientFactory(); err != nil {
				return err
			}
			if cfg.Server.WebhookSecret == "" {
				logger.Warn(ctx, "webhook secret is empty, deliveries are not verified")
			}

			addr := cfg.Server.Addr
			if v := cmd.String("addr"); v != "" {
				addr = v
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}

			h := webhook.NewHandler(cfg.Server.WebhookSecret, svc, c.ClientForInstallation)
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := registry.Writer(cmd)
			ui.PrintInfo(w, t.GetMessage("server_listening", 0, map[string]interface{}{"Addr": ln.Addr().String()}))
			if err := Serve(ctx, NewServer(cfg.Server, h), ln); err != nil {
				return err
			}
			ui.PrintInfo(w, t.GetMessage("server_stopped", 0, nil))
			return nil
		},
	}
}

// NewServer routes the webhook path to h and answers health probes.
func NewServer(cfg config.ServerConfig, h http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(cfg.WebhookPath, h)
	mux.HandleFunc(healthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// Serve runs srv on ln until ctx is done, then drains in-flight deliveries.
func Serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info(ctx, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
