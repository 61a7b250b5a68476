package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/snorochevskiy/photo-sync-tst/pkg/client"
	"github.com/snorochevskiy/photo-sync-tst/pkg/metrics"
	"github.com/snorochevskiy/photo-sync-tst/pkg/syncer"
)

func init() {
	syncCmd.Flags().String("peer", "", "Peer base URL, e.g. http://beta:7600 (required)")
	_ = syncCmd.MarkFlagRequired("peer")

	rootCmd.AddCommand(syncCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync against a peer",
	Long: `Reconcile the local catalog with a peer once and exit. Both sides
end up holding the union of their object sets.

Examples:
  photosyncd sync --peer http://beta:7600 --data-dir /var/lib/photosync`,
	RunE: func(cmd *cobra.Command, args []string) error {
		peerAddr, _ := cmd.Flags().GetString("peer")

		metrics.Init()

		cat, err := openCatalog(cmd)
		if err != nil {
			return err
		}
		defer cat.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := syncer.Sync(ctx, cat, client.New(peerAddr)); err != nil {
			return fmt.Errorf("sync with %s failed: %w", peerAddr, err)
		}
		fmt.Fprintln(os.Stdout, "Sync completed")
		return nil
	},
}
