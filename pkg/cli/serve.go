package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/airform/pkg/cli/config"
	httpctrl "github.com/secmon-lab/airform/pkg/controller/http"
	"github.com/secmon-lab/airform/pkg/service/worker"
	"github.com/secmon-lab/airform/pkg/usecase"
	"github.com/secmon-lab/airform/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var frontendURL string
	var syncInterval time.Duration
	var syncConcurrency int
	var repoCfg config.Repository
	var airtableCfg config.Airtable
	var storageCfg config.Storage
	var sentryCfg config.Sentry

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("AIRFORM_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "frontend-url",
			Usage:       "Origin of the form builder UI, allowed by CORS and used after login",
			Value:       httpctrl.DefaultFrontendURL,
			Sources:     cli.EnvVars("AIRFORM_FRONTEND_URL"),
			Destination: &frontendURL,
		},
		&cli.DurationFlag{
			Name:        "sync-interval",
			Usage:       "Interval of the check for responses deleted in Airtable (0 disables it)",
			Category:    "Worker",
			Value:       worker.DefaultSyncInterval,
			Sources:     cli.EnvVars("AIRFORM_SYNC_INTERVAL"),
			Destination: &syncInterval,
		},
		&cli.IntFlag{
			Name:        "sync-concurrency",
			Usage:       "Parallel Airtable record lookups per form during the sync",
			Category:    "Worker",
			Value:       worker.DefaultSyncConcurrency,
			Sources:     cli.EnvVars("AIRFORM_SYNC_CONCURRENCY"),
			Destination: &syncConcurrency,
		},
	}

	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, airtableCfg.Flags()...)
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("Serve configuration",
				"addr", addr,
				"frontend_url", frontendURL,
				"repository", repoCfg,
				"airtable", airtableCfg,
				"storage", storageCfg,
				"sentry", sentryCfg,
			)

			flushSentry, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			defer flushSentry()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			setup, err := airtableCfg.Configure(ctx, repo)
			if err != nil {
				return goerr.Wrap(err, "failed to configure authentication")
			}
			if airtableCfg.IsNoAuthMode() {
				logging.Default().Warn("Running in no-auth mode (development only)")
			} else {
				logging.Default().Info("Airtable OAuth enabled", "redirect_url", airtableCfg.RedirectURL())
			}

			ucOpts := []usecase.Option{
				usecase.WithAuth(setup.Auth),
			}

			gcs, err := storageCfg.Configure(ctx)
			if err != nil {
				return err
			}
			if gcs != nil {
				defer func() {
					if err := gcs.Close(); err != nil {
						logging.Default().Error("failed to close storage client", "error", err.Error())
					}
				}()
				ucOpts = append(ucOpts, usecase.WithStorage(gcs))
			}

			uc := usecase.New(repo, setup.Factory, ucOpts...)

			var syncWorker *worker.ResponseSyncWorker
			if syncInterval > 0 {
				syncWorker = worker.NewResponseSyncWorker(repo, setup.Factory, syncInterval,
					worker.WithConcurrency(syncConcurrency))
				if err := syncWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start response sync worker")
				}
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc, httpctrl.WithFrontendURL(frontendURL)),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				if syncWorker != nil {
					syncWorker.Stop()
				}
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if syncWorker != nil {
					syncWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}
