package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sentinel-agent/sentinel/internal/config"
	"github.com/sentinel-agent/sentinel/internal/db"
	"github.com/sentinel-agent/sentinel/internal/logger"
	"github.com/sentinel-agent/sentinel/internal/models"
)

const app = "sentinel"

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "sentinel scans email newsletters for opportunities, scores them against your profile, and sends a daily digest",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", fmt.Sprintf("a config file (default is %s.yaml in current directory)", app))
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("SENTINEL")
	viper.AutomaticEnv()

	// Missing config file is fine: env vars and defaults still apply.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			log.Fatal(err)
		}
	}
}

func newLogger() *zap.Logger {
	zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return zl
}

// bootstrap loads config and profile, connects to Postgres, and applies
// migrations. Shared by every command that touches the store.
func bootstrap(ctx context.Context, zl *zap.Logger) (*config.Config, *models.Profile, *pgxpool.Pool, *db.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	profile, err := config.LoadProfile(cfg.ProfilePath)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("loading profile: %w", err)
	}

	pool, err := db.Connect(ctx, cfg.Storage.DatabaseURL)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := db.ApplyMigrations(ctx, pool, zl); err != nil {
		pool.Close()
		return nil, nil, nil, nil, fmt.Errorf("applying migrations: %w", err)
	}

	return cfg, profile, pool, db.NewStore(pool), nil
}
