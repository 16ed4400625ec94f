package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sentinel-agent/sentinel/internal/agent"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan configured mailboxes once and process everything found",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("no-digest", false, "process and store records but do not send the digest email")
	runCmd.Flags().Int("scan-days", 0, "override how many days back to scan")
	viper.BindPFlag("no-digest", runCmd.Flags().Lookup("no-digest"))
	viper.BindPFlag("scan-days-override", runCmd.Flags().Lookup("scan-days"))
}

func run(_ *cobra.Command) {
	ctx := context.Background()
	zl := newLogger()

	cfg, profile, pool, store, err := bootstrap(ctx, zl)
	if err != nil {
		zl.Fatal("bootstrap failed", zap.Error(err))
	}
	defer pool.Close()

	if viper.GetBool("no-digest") {
		cfg.SendDigest = false
	}
	if days := viper.GetInt("scan-days-override"); days > 0 {
		cfg.ScanDays = days
	}
	if err := cfg.Validate(); err != nil {
		zl.Fatal("invalid configuration", zap.Error(err))
	}

	zl.Info("starting the sentinel run",
		zap.String("version", version),
		zap.Int("accounts", len(cfg.Accounts)),
		zap.Int("scan_days", cfg.ScanDays))

	a := agent.New(cfg, profile, store, zl)
	if _, err := a.Run(ctx); err != nil {
		zl.Fatal("run failed", zap.Error(err))
	}
}
