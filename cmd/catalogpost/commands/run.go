package commands

import (
	"fmt"
	"log/slog"

	"catalog-post/pkg/pipeline"

	"github.com/spf13/cobra"
)

var dryRun bool

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Select the next item but publish nothing.")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--dry-run]",
	Short: "Publishes the newest catalog work that is not on the blog yet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		c, err := build(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer c.Close()

		p := pipeline.NewPipeline(c.stages, pipeline.Options{
			Limit:         cfg.CatalogLimit,
			UploadSamples: cfg.UploadSamples,
			DryRun:        dryRun,
		})

		result, err := p.Run(ctx)
		if err != nil {
			return fmt.Errorf("run %s failed: %w", result.RunID, err)
		}

		switch result.Outcome {
		case pipeline.OutcomePublished:
			slog.InfoContext(ctx, "published", "title", result.Item.Title, "post_id", result.PostID)
		case pipeline.OutcomeDryRun:
			slog.InfoContext(ctx, "would publish", "title", result.Item.Title, "product_id", result.Item.ID)
		default:
			slog.InfoContext(ctx, "nothing to publish", "outcome", result.Outcome)
		}
		return nil
	},
}
