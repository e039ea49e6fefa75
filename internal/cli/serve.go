package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/creatorstation/tracker/internal/api"
	"github.com/creatorstation/tracker/internal/backup"
	"github.com/creatorstation/tracker/internal/notice"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tracker HTTP API for a browser front end",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, kv, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer kv.Close()

		notices := notice.NewCenter(cfg.Notices.TTL)
		go notices.Run(ctx, time.Second)

		backups := backup.NewScheduler(store, cfg.Backup.Dir, logger)
		if err := backups.Start(cfg.Backup.Schedule); err != nil {
			return err
		}
		defer backups.Stop()

		app := api.NewApp(cfg.Server.AllowedOrigin,
			api.NewHandler(store, notices, logger),
			backups,
		)

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				logger.Warn("Shutdown failed", zap.Error(err))
			}
		}()

		port := cfg.Server.Port
		if servePort != "" {
			port = servePort
		}
		logger.Info("Tracker API listening", zap.String("port", port), zap.String("storage", storageScheme(cfg.Storage.URL)))
		return app.Listen(":" + port)
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default from config, 8080)")
}

// storageScheme keeps credentials in the storage url out of the logs.
func storageScheme(rawURL string) string {
	scheme, _, _ := strings.Cut(rawURL, "://")
	return scheme
}
