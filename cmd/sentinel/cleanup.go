package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete stored records older than the retention window",
	Run: func(cmd *cobra.Command, _ []string) {
		cleanup(cmd)
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().Int("days", 0, "override the configured retention window")
}

func cleanup(cmd *cobra.Command) {
	ctx := context.Background()
	zl := newLogger()

	cfg, _, pool, store, err := bootstrap(ctx, zl)
	if err != nil {
		zl.Fatal("bootstrap failed", zap.Error(err))
	}
	defer pool.Close()

	days := cfg.Storage.RetentionDays
	if override, _ := cmd.Flags().GetInt("days"); override > 0 {
		days = override
	}

	deleted, err := store.Cleanup(ctx, days)
	if err != nil {
		zl.Fatal("cleanup failed", zap.Error(err))
	}
	zl.Info("cleanup complete", zap.Int64("deleted", deleted), zap.Int("retention_days", days))
}
