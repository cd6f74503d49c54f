package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"geolink/internal/api"
	"geolink/internal/config"
	"geolink/internal/imagestore"
	"geolink/internal/keepalive"
	"geolink/internal/server"
	"geolink/internal/store"
	"geolink/internal/supervisor"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the geolink HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			images, err := imagestore.NewLocalDir(cfg.ImageDir)
			if err != nil {
				return err
			}
			logger.Info("using image directory", "path", images.Root())

			srv := server.New(addr, st, images, logger)
			srv.SetImageDir(images.Root())
			srv.ConfigureUploadOptions(server.UploadOptions{
				MaxBody:         cfg.Uploads.MaxUploadBytes,
				MultipartMemory: cfg.Uploads.MultipartMaxMemory,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tree := supervisor.NewTree(slog.Default().With("component", "supervisor"), supervisor.DefaultTreeConfig())
			tree.AddAPIService(supervisor.NewHTTPService(srv.HTTPServer(), 0))

			if base := cfg.PingBaseURL(); base != "" {
				pinger := keepalive.NewPinger(api.NewClient(base), cfg.KeepAlive(), slog.Default().With("component", "keepalive"))
				tree.AddBackgroundService(pinger)
				logger.Info("keep-alive enabled", "url", base+"/keep-alive", "interval", cfg.KeepAlive())
			}

			logger.Info("starting server", "addr", addr)
			err = tree.Serve(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}
}
