package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/creatorstation/tracker/internal/config"
	"github.com/creatorstation/tracker/internal/logging"
	"github.com/creatorstation/tracker/internal/storage"
	"github.com/creatorstation/tracker/internal/tracker"
)

var (
	configPath string
	storageURL string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Influencer post tracker",
	Long: `Track influencers of a campaign: their posting status, video links and views.

Data is kept in a local store (sqlite by default) and can be exported to and
imported from influencers-<date>.json documents.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if storageURL != "" {
			cfg.Storage.URL = storageURL
		}

		logger, err = logging.New(verbose || cfg.Logging.Debug)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default tracker.yaml if present)")
	rootCmd.PersistentFlags().StringVar(&storageURL, "storage", "", "storage url, overrides config (sqlite://, postgres://, mongodb://, redis://, memory://)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(
		serveCmd,
		listCmd,
		addCmd,
		updateCmd,
		paidCmd,
		deleteCmd,
		duplicateCmd,
		filterCmd,
		exportCmd,
		importCmd,
		backupCmd,
	)
}

func Execute() error {
	return rootCmd.Execute()
}

// openStore connects to the configured storage and loads the store from it.
// The caller closes the returned storage.
func openStore(ctx context.Context) (*tracker.Store, storage.Storage, error) {
	kv, err := storage.Open(ctx, cfg.Storage.URL, logger)
	if err != nil {
		return nil, nil, err
	}

	store := tracker.NewStore(kv, tracker.WithLogger(logger.Named("store")))
	if err := store.Load(ctx); err != nil {
		kv.Close()
		return nil, nil, err
	}
	return store, kv, nil
}

// warnOnPersistence turns a failed durable write into a warning: the command
// itself succeeded in memory.
func warnOnPersistence(cmd *cobra.Command, err error) error {
	var perr *tracker.PersistenceError
	if errors.As(err, &perr) {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", perr.Error())
		return nil
	}
	return err
}
