package command

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/reverie-dev/reverie/internal/data/db"
	"github.com/reverie-dev/reverie/internal/obs/otel"
	"github.com/reverie-dev/reverie/internal/server"
)

// ServeCommand runs the HTTP segmentation service.
func ServeCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP stream segmentation service",
		Long: `Serve starts an HTTP service that accepts streamed text fragments,
segments them into plain and reasoning blocks, and serves the rendered
markup. Finished streams are archived to the local database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(app, cmd)
		},
	}

	cmd.Flags().String("host", "127.0.0.1", "Listen host")
	cmd.Flags().Int("port", 8088, "Listen port")
	cmd.Flags().Bool("no-archive", false, "Disable archiving of finished streams")
	cmd.Flags().Bool("metrics", false, "Export segmentation metrics to stdout")

	return cmd
}

func runServe(app *App, cmd *cobra.Command) error {
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")
	noArchive, _ := cmd.Flags().GetBool("no-archive")
	metrics, _ := cmd.Flags().GetBool("metrics")

	appConfig, err := app.Config()
	if err != nil {
		return err
	}
	table, err := appConfig.TagTable()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	otelCfg := otel.DefaultConfig()
	otelCfg.Enabled = metrics
	meterSetup, err := otel.NewMeterSetup(ctx, otelCfg)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := meterSetup.Shutdown(shutdownCtx); err != nil {
			logrus.Warnf("failed to shut down metrics: %v", err)
		}
	}()

	opts := []server.ServerOption{
		server.WithHost(host),
		server.WithPort(port),
		server.WithTracker(meterSetup.Tracker()),
	}

	if !noArchive {
		store, err := db.NewStreamStore(appConfig.ConfigDir())
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, server.WithArchive(store))
	}

	srv := server.NewServer(table, opts...)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	logrus.Info("server stopped")
	return nil
}
