package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/snorochevskiy/photo-sync-tst/pkg/api"
	"github.com/snorochevskiy/photo-sync-tst/pkg/catalog"
	"github.com/snorochevskiy/photo-sync-tst/pkg/client"
	"github.com/snorochevskiy/photo-sync-tst/pkg/config"
	"github.com/snorochevskiy/photo-sync-tst/pkg/events"
	"github.com/snorochevskiy/photo-sync-tst/pkg/log"
	"github.com/snorochevskiy/photo-sync-tst/pkg/metrics"
	"github.com/snorochevskiy/photo-sync-tst/pkg/storage"
	"github.com/snorochevskiy/photo-sync-tst/pkg/syncer"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "photosyncd",
	Short: "Photosyncd - distributed photo catalog with checksum-tree sync",
	Long: `Photosyncd keeps a local catalog of content-addressed photos
partitioned by calendar day and reconciles it with peer nodes.
A three-level checksum tree over days, months, and years lets a
sync transfer exactly the days that differ.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Photosyncd version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	// Global flags
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("data-dir", "/var/lib/photosync", "Catalog data directory")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the catalog daemon",
	Long: `Run the photosync daemon: serve the peer API and periodically
reconcile the local catalog with every configured peer.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("config", "c", "", "Path to YAML configuration file")
	serveCmd.Flags().String("listen-addr", "", "Peer API listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if v, _ := cmd.Flags().GetString("listen-addr"); v != "" {
		cfg.ListenAddr = v
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir, _ = cmd.Flags().GetString("data-dir")
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	metrics.Init()

	store, err := storage.NewBoltStore(cfg.DataDir)
	if err != nil {
		return err
	}
	cat := catalog.New(store)
	defer cat.Close()

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	server := api.NewServer(cat)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.ListenAddr)
	}()

	var runner *syncer.Runner
	if len(cfg.Peers) > 0 {
		engine := syncer.New(cat, broker)
		peers := make([]syncer.NamedPeer, 0, len(cfg.Peers))
		for _, p := range cfg.Peers {
			peers = append(peers, syncer.NamedPeer{Name: p.Name, Peer: client.New(p.Addr)})
		}
		runner = syncer.NewRunner(engine, peers, time.Duration(cfg.SyncInterval))
		runner.Start()
	}

	log.Logger.Info().
		Str("node", cfg.NodeName).
		Str("listen_addr", cfg.ListenAddr).
		Str("data_dir", cfg.DataDir).
		Int("peers", len(cfg.Peers)).
		Msg("Photosyncd started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("peer API failed: %w", err)
		}
	}

	if runner != nil {
		runner.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Logger.Error().Err(err).Msg("Peer API shutdown failed")
	}
	return nil
}
