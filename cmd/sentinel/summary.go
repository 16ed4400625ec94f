package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sentinel-agent/sentinel/internal/digest"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print recent opportunities as a console table",
	Run: func(cmd *cobra.Command, _ []string) {
		summary(cmd)
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().Int("days", 1, "how many days back to include")
}

func summary(cmd *cobra.Command) {
	ctx := context.Background()
	zl := newLogger()

	_, _, pool, store, err := bootstrap(ctx, zl)
	if err != nil {
		zl.Fatal("bootstrap failed", zap.Error(err))
	}
	defer pool.Close()

	days, _ := cmd.Flags().GetInt("days")
	if days <= 0 {
		days = 1
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	records, err := store.RecordsSince(ctx, cutoff)
	if err != nil {
		zl.Fatal("loading records", zap.Error(err))
	}

	d := digest.Build(time.Now().UTC(), records)
	if d.Empty() {
		fmt.Printf("No categorized opportunities in the last %d day(s).\n", days)
		return
	}
	digest.WriteTable(os.Stdout, d)
}
