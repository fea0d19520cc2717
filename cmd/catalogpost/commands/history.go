package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"catalog-post/pkg/config"
	"catalog-post/pkg/db"
	"catalog-post/pkg/replication"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit int

func init() {
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Runs to show, newest first.")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyReplicateCmd)
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspects the run history store.",
}

var historyListCmd = &cobra.Command{
	Use:   "list [--limit <n>]",
	Short: "Prints recent runs from the configured history backend.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		store, closeStore, err := openHistory(ctx, cfg.History)
		if err != nil {
			return err
		}
		if store == nil {
			return fmt.Errorf("HISTORY_BACKEND is %q, nothing to list", cfg.History.Backend)
		}
		defer closeStore()

		runs, err := store.RecentRuns(ctx, historyLimit)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Started", "Duration", "Outcome", "Title", "Post", "Candidates", "Dup", "Skip", "Error"})
		for _, r := range runs {
			t.AppendRow(table.Row{
				r.StartedAt.Local().Format(time.DateTime),
				r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
				r.Outcome, r.Title, r.PostID, r.Candidates, r.Duplicates, r.Skipped, r.Error,
			})
		}
		t.SetStyle(table.StyleRounded)
		t.Render()
		return nil
	},
}

var historyReplicateCmd = &cobra.Command{
	Use:   "replicate",
	Short: "Copies the Mongo run history into the configured SQL backend (postgres or supabase).",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cfg.History.Backend != config.HistoryPostgres && cfg.History.Backend != config.HistorySupabase {
			return fmt.Errorf("replicate needs HISTORY_BACKEND=postgres or supabase, got %q", cfg.History.Backend)
		}

		source := db.NewClient(cfg.History.MongoURI, cfg.History.MongoDB, cfg.History.MongoCollection)
		if err := source.Connect(ctx); err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		defer source.Close(ctx)

		sink, closeSink, err := openSQLSink(cmd, cfg.History)
		if err != nil {
			return err
		}
		defer closeSink()

		r, err := replication.NewReplicator(replication.Config{Source: source, Sink: sink})
		if err != nil {
			return err
		}
		written, err := r.Replicate(ctx)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "replicated run history", "runs", written)
		return nil
	},
}

// openSQLSink opens a RunStore over the direct SQL connection of the backend.
func openSQLSink(cmd *cobra.Command, h config.History) (*db.RunStore, func(), error) {
	ctx := cmd.Context()

	var provider interface {
		db.DBProvider
		Close() error
	}
	switch h.Backend {
	case config.HistoryPostgres:
		pg := db.NewPostgresClient(db.PostgresConfig{DSN: h.PostgresDSN})
		if err := pg.Connect(ctx); err != nil {
			return nil, nil, err
		}
		provider = pg
	default:
		sb := db.NewSupabaseClient(db.SupabaseConfig{SupabaseURL: h.SupabaseURL, Password: h.SupabasePassword})
		if err := sb.Connect(ctx); err != nil {
			return nil, nil, err
		}
		if !sb.HasDirectDB() {
			_ = sb.Close()
			return nil, nil, fmt.Errorf("replicate needs a direct supabase connection (SUPABASE_PASSWORD)")
		}
		provider = sb
	}

	store := db.NewRunStore(provider)
	if err := store.EnsureSchema(ctx); err != nil {
		_ = provider.Close()
		return nil, nil, err
	}
	return store, func() { _ = provider.Close() }, nil
}
