package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/spice-assistant/internal/certs"
	"github.com/Veraticus/spice-assistant/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the assistant over HTTP",
		Long: `Start an HTTP server exposing the assistant.

  POST /api/chat   {"user": "...", "message": "..."} -> {"reply": "..."} or {"error": "..."}
  GET  /api/ws     websocket; send {"message": "..."} frames, receive reply frames
  GET  /healthz    liveness probe

The user may also be supplied in the X-Spice-User header.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default from server.addr, :8080)")
	cmd.Flags().Bool("tls", false, "serve HTTPS with a self-signed localhost certificate")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.tls", cmd.Flags().Lookup("tls"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	a, err := initApp(cmd.Context(), settings)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	srv := server.New(a.engine, slog.Default())
	if settings.Server.TLS {
		tlsConfig, err := certs.NewFileManager(settings.Server.CertDir).TLSConfig()
		if err != nil {
			return fmt.Errorf("failed to prepare TLS certificate: %w", err)
		}
		srv.EnableTLS(tlsConfig)
	}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return srv.Run(ctx, settings.Server.Addr)
	})

	return g.Wait()
}
