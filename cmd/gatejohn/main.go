package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/gatejohn/internal/app"
	"github.com/dropDatabas3/gatejohn/internal/config"
	gjhttp "github.com/dropDatabas3/gatejohn/internal/http"
	"github.com/dropDatabas3/gatejohn/internal/metrics"
	"github.com/dropDatabas3/gatejohn/internal/observability/logger"
)

var cfgPath string

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err == nil {
		fmt.Fprintln(os.Stderr, "loaded .env")
	}

	root := &cobra.Command{
		Use:   "gatejohn",
		Short: "authentication decision engine (tickets + adaptive MFA + risk)",
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to config.yaml")

	root.AddCommand(serveCmd(), checkConfigCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "start the decision HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			logger.Init(logger.Config{
				Env:         cfg.App.Env,
				Level:       os.Getenv("LOG_LEVEL"),
				ServiceName: "gatejohn",
			})
			defer func() { _ = logger.Sync() }()
			log := logger.Named("main")

			if err := metrics.RegisterDecision(prometheus.DefaultRegisterer); err != nil {
				return err
			}

			ctx := cmd.Context()
			eng, cleanup, err := app.Build(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := &http.Server{
				Addr:         cfg.Server.Addr,
				Handler:      gjhttp.NewRouter(eng),
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 30 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				log.Info("server listening", logger.String("addr", cfg.Server.Addr))
				errc <- srv.ListenAndServe()
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errc:
				if err != nil && err != http.ErrServerClosed {
					return err
				}
			case sig := <-stop:
				log.Info("shutting down", logger.String("signal", sig.String()))
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func checkConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-config",
		Short: "validate configuration and exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			fmt.Printf("config ok: registry=%s history=%s threshold=%.2f calculators=%v\n",
				cfg.Registry.Kind, cfg.Risk.History.Kind, cfg.Risk.Threshold, cfg.Risk.Calculators)
			return nil
		},
	}
}
