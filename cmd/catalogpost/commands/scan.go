package commands

import (
	"os"
	"strings"

	"catalog-post/pkg/pipeline"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	scanLimit   int
	scanLedger  bool
	scanWorkers int
)

func init() {
	scanCmd.Flags().IntVar(&scanLimit, "limit", 10, "Catalog entries to extract.")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 4, "Detail pages fetched in parallel (still paced by REQUEST_RATE).")
	scanCmd.Flags().BoolVar(&scanLedger, "ledger", true, "Mark entries already published on the blog.")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan [--limit <n>] [--workers <n>] [--ledger=false]",
	Short: "Prints what the pipeline would see in the catalog, without publishing.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		c, err := build(ctx, cfg, false)
		if err != nil {
			return err
		}
		defer c.Close()

		stages := pipeline.Stages{
			Catalog: c.stages.Catalog,
			Details: c.stages.Details,
		}
		if scanLedger {
			stages.Ledger = c.stages.Ledger
		}

		rows, err := pipeline.NewPipeline(stages, pipeline.Options{Limit: scanLimit, ScanWorkers: scanWorkers}).Scan(ctx)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"#", "ID", "Title", "Published", "Tags", "Samples", "Error"})

		for i, row := range rows {
			id, tags, samples, errText := "", "", 0, ""
			if row.Item != nil {
				id = row.Item.ID
				tags = strings.Join(row.Item.Tags, ", ")
				samples = len(row.Item.SampleImageURLs)
			}
			if row.Err != nil {
				errText = row.Err.Error()
			}
			t.AppendRow(table.Row{i + 1, id, row.Entry.Title, row.Published, tags, samples, errText})
		}

		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}
