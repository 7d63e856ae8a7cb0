package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"movix-cli/config"
	"movix-cli/fakeapi"
	"movix-cli/logging"
)

func newDevServerCmd(o *rootOptions) *cobra.Command {
	var (
		addr string
		seed bool
	)
	cmd := &cobra.Command{
		Use:         "devserver",
		Short:       "Serve an in-memory Movix API for local use",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"app": "none"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.DevAddr
			}
			logger, err := logging.NewWriter(cmd.ErrOrStderr(), logging.Options{Level: cfg.LogLevel, Debug: o.debug})
			if err != nil {
				return err
			}

			api := fakeapi.New(cfg.DevSecret, logger)
			if seed {
				if err := api.Seed(); err != nil {
					return err
				}
				logger.Info("seeded accounts",
					"admin", fakeapi.SeedAdminUser+"/"+fakeapi.SeedAdminPassword,
					"member", fakeapi.SeedMemberUser+"/"+fakeapi.SeedMemberPass)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              addr,
				Handler:           api,
				ReadHeaderTimeout: 5 * time.Second,
			}
			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			logger.Info("shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to "+config.EnvDevAddr+" or "+config.DefaultDevAddr+")")
	cmd.Flags().BoolVar(&seed, "seed", true, "add demo accounts and movies")
	return cmd
}
