package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"catalog-post/pkg/domain"
	"catalog-post/pkg/worker"
)

// ScanRow is one catalog entry as seen by Scan.
type ScanRow struct {
	Entry     domain.CatalogEntry
	Item      *domain.Item
	Published bool
	Err       error
}

// Scan lists the catalog and extracts every entry without publishing
// anything. Extraction runs on Options.ScanWorkers goroutines; rows keep
// catalog order. The ledger is consulted only when set.
func (p *Pipeline) Scan(ctx context.Context) ([]ScanRow, error) {
	if p.stages.Catalog == nil || p.stages.Details == nil {
		return nil, fmt.Errorf("catalog lister and detail extractor are required")
	}

	entries, err := p.stages.Catalog.Fetch(ctx, p.opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	published := domain.NewPublishedTitleSet()
	if p.stages.Ledger != nil {
		published, err = p.stages.Ledger.CurrentTitles(ctx)
		if err != nil {
			return nil, fmt.Errorf("read ledger: %w", err)
		}
	}

	extracted := worker.Map(ctx, p.opts.ScanWorkers, entries, p.stages.Details.Extract)

	rows := make([]ScanRow, 0, len(entries))
	for i, entry := range entries {
		row := ScanRow{Entry: entry, Published: published.Contains(entry.Title)}
		if err := extracted[i].Err; err != nil {
			slog.DebugContext(ctx, "scan: extraction failed", "title", entry.Title, "err", err)
			row.Err = err
		} else {
			item := extracted[i].Value
			row.Item = &item
		}
		rows = append(rows, row)
	}
	return rows, ctx.Err()
}
