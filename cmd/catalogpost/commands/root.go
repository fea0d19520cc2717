package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"catalog-post/pkg/config"
	"catalog-post/pkg/pipeline"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var (
	envFile string
	cfg     config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "Environment file loaded before reading configuration.")
}

var rootCmd = &cobra.Command{
	Use:           "catalogpost",
	Short:         "catalogpost publishes the newest unpublished catalog work to WordPress.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(envFile)
		if err != nil {
			return err
		}
		cfg = loaded
		initSlog(cfg.LogLevel)
		return nil
	},
}

func initSlog(level slog.Level) {
	logger := slog.New(pipeline.NewRunLogHandler(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})))
	slog.SetDefault(logger)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
