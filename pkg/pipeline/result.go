package pipeline

import (
	"time"

	"catalog-post/pkg/domain"
)

// Outcome names how a run ended.
type Outcome string

const (
	OutcomePublished     Outcome = "published"
	OutcomeAllDuplicates Outcome = "all_duplicates"
	OutcomeNoNewItems    Outcome = "no_new_items"
	OutcomeDryRun        Outcome = "dry_run"
	OutcomeFailed        Outcome = "failed"
)

// SkippedCandidate is an entry dropped because its detail page failed.
type SkippedCandidate struct {
	Entry domain.CatalogEntry
	Err   error
}

// Result summarizes one run.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    Outcome

	// Item is the selected item, nil when nothing was selected.
	Item   *domain.Item
	PostID string

	Candidates int
	Duplicates int
	Skipped    []SkippedCandidate

	Err error
}

// Record converts the result into its audit record.
func (r *Result) Record() domain.RunRecord {
	rec := domain.RunRecord{
		RunID:      r.RunID,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Outcome:    string(r.Outcome),
		PostID:     r.PostID,
		Candidates: r.Candidates,
		Duplicates: r.Duplicates,
		Skipped:    len(r.Skipped),
	}
	if r.Item != nil {
		rec.Title = r.Item.Title
		rec.ProductID = r.Item.ID
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}
	return rec
}
