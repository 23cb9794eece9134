// Package main implements trackerctl, the operator CLI that works directly against project storage.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/config"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/bootstrap"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/logging"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/store"
)

var (
	version  = "dev"
	logLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "trackerctl",
	Short: "Operate the Cramerton development status store",
	Long: `trackerctl talks to the configured storage backend directly, using the
same environment (or .env) the API server reads.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

// env is the storage stack a command runs against.
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
	close func()
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(logLevel, "development")
	if err != nil {
		return nil, err
	}
	bucket, closeFn, err := bootstrap.OpenBucket(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:   cfg,
		log:   log,
		store: bootstrap.NewStore(bucket, cfg.Store, log, nil),
		close: func() {
			closeFn()
			_ = log.Sync()
		},
	}, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
