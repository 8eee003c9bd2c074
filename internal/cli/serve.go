package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/voicetranslatorpro/voice-translator-pro/internal/adapters/http"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/buildinfo"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/config"
	"github.com/voicetranslatorpro/voice-translator-pro/internal/platform/telemetry"
)

func serveCmd(opts *options) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the translation API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := opts.load(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "override server.port")

	return cmd
}

// serve runs the API until ctx is cancelled, then drains in-flight requests
// for at most server.shutdown_timeout.
func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	descriptor := buildinfo.Describe()

	logger.Info("starting service",
		slog.String("version", descriptor.Version),
		slog.String("commit", descriptor.Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("primary_provider", cfg.Translation.Primary),
		slog.Bool("fallback", cfg.Translation.Fallback),
		slog.String("storage", cfg.Storage.Driver),
		slog.String("audio_store", cfg.Audio.Store),
		slog.String("max_request_size", humanize.IBytes(uint64(cfg.Server.MaxRequestSize))),
	)

	tel, err := telemetry.Start(ctx, &telemetry.Config{
		Enabled:         cfg.Telemetry.Enabled,
		Endpoint:        cfg.Telemetry.Endpoint,
		ServiceName:     cfg.Telemetry.ServiceName,
		Version:         cfg.App.Version,
		Environment:     cfg.App.Environment,
		SamplingRate:    cfg.Telemetry.SamplingRate,
		ExportInterval:  cfg.Telemetry.ExportInterval,
		PrimaryProvider: cfg.Translation.Primary,
		StorageDriver:   cfg.Storage.Driver,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", err))
		}
	}()

	d, err := wire(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := d.Close(); err != nil {
			logger.Error("closing resources", slog.Any("error", err))
		}
	}()

	serviceName := cfg.Telemetry.ServiceName
	if serviceName == "" {
		serviceName = cfg.App.Name
	}

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Services:       d.services,
		Registry:       d.registry,
		Prometheus:     d.prometheus,
		Descriptor:     descriptor,
		Primary:        cfg.Translation.Primary,
		ServiceName:    serviceName,
		Auth:           &cfg.Auth,
		CORS:           &cfg.CORS,
		RateLimit:      &cfg.RateLimit,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		Timeout:        cfg.Server.RequestTimeout,
		Logger:         logger,
	})

	serverErr := server.Start()

	select {
	case err, ok := <-serverErr:
		if ok && err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	timeout := cfg.Server.ShutdownTimeout
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	logger.Info("initiating graceful shutdown", slog.Duration("timeout", timeout))

	start := time.Now()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete", slog.Duration("took", time.Since(start)))

	return nil
}
