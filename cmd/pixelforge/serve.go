package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pixelforge/internal/config"
	"pixelforge/internal/events"
	"pixelforge/internal/httpapi"
	"pixelforge/internal/session"
)

func newServeCmd(o *options, factory session.EngineFactory) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP API",
		Example: "  pixelforge serve --addr 127.0.0.1:8089",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(o)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())
			hub := events.NewHub(logger)
			a := newApp(cfg, logger, factory, hub)
			defer func() {
				if err := a.Close(); err != nil {
					logger.Warn().Err(err).Msg("close sessions")
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			httpapi.SetLogger(logger)
			httpapi.SetBaseContext(ctx)
			httpapi.SetEventsHandler(hub)
			if len(cfg.CORSOrigins) > 0 {
				httpapi.SetCORSOptions(true, cfg.CORSOrigins,
					[]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
					[]string{"Content-Type", "X-Log-Level"})
			}
			srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(a.svc), ReadHeaderTimeout: 10 * time.Second}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info().Str("event", "listening").Str("addr", cfg.Addr).Str("data_dir", cfg.DataDir).Msg("")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				hub.Close()
				sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := srv.Shutdown(sctx); err != nil {
					logger.Warn().Err(err).Msg("graceful shutdown error")
				}
				return nil
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default "+config.DefaultAddr+")")
	return cmd
}
