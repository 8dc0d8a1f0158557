package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	nexus "github.com/nexuscloud/nexus"
	"github.com/nexuscloud/nexus/internal/logger"
	"github.com/nexuscloud/nexus/internal/server"
	"github.com/nexuscloud/nexus/internal/tls"
)

func newServeCmd() *cobra.Command {
	var f ServeFlags
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the panel daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(f)
		},
	}
	cmd.Flags().StringVarP(&f.ConfigPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVar(&f.Listen, "listen", "", "listen address override (e.g. :3000)")
	return cmd
}

func runServe(f ServeFlags) error {
	cfg, err := nexus.LoadConfig(f.ConfigPath)
	if err != nil {
		return err
	}
	if f.Listen != "" {
		cfg.Listen = f.Listen
	}

	logCloser := logger.Setup(cfg.Log)
	if logCloser != nil {
		defer func() { _ = logCloser.Close() }()
	}

	app, err := nexus.New(cfg)
	if err != nil {
		return err
	}

	tlsCfg, err := tls.Setup(cfg.TLS)
	if err != nil {
		return err
	}

	quit := make(chan struct{})
	srv := server.NewServer(cfg.Listen, app.Router(func() { close(quit) }), tlsCfg)
	slog.Info("nexus active", "addr", cfg.Listen, "tls", tlsCfg != nil)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		slog.Info("signal received, shutting down", "signal", s)
	case <-quit:
		slog.Info("shutdown requested via API")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Warn("http shutdown", "error", err)
	}
	return app.Close()
}
