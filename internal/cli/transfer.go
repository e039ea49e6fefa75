package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/creatorstation/tracker/internal/backup"
	"github.com/creatorstation/tracker/internal/codec"
	"github.com/creatorstation/tracker/pkg/web"
)

var (
	exportOut string
	backupDir string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all influencers to influencers-<date>.json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, kv, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer kv.Close()

		if exportOut == "-" {
			return store.Export(cmd.OutOrStdout())
		}

		path := exportOut
		if path == "" {
			path = codec.FileName(time.Now())
		}
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := store.Export(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d influencers to %s\n", len(store.Records()), path)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file|url>",
	Short: "Replace all influencers with the contents of an export document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := openSource(cmd, args[0])
		if err != nil {
			return err
		}
		defer src.Close()

		store, kv, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer kv.Close()

		n, err := store.Import(cmd.Context(), src)
		if err := warnOnPersistence(cmd, err); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d influencers\n", n)
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a backup export into the backup directory now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.Backup.Dir
		if backupDir != "" {
			dir = backupDir
		}

		store, kv, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer kv.Close()

		path, err := backup.NewScheduler(store, dir, logger).Run()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", path)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output path, - for stdout (default influencers-<date>.json)")
	backupCmd.Flags().StringVar(&backupDir, "dir", "", "backup directory (default from config)")
}

// openSource opens a local file, or downloads the document when arg is an
// http(s) URL.
func openSource(cmd *cobra.Command, arg string) (io.ReadCloser, error) {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		data, err := web.FetchDocument(cmd.Context(), arg)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(bytes.NewReader(data)), nil
	}
	return os.Open(arg)
}
