package domain

import "time"

// RunRecord is the audit entry written after each pipeline run.
//
// It is history only: de-duplication never reads it back.
type RunRecord struct {
	RunID      string    `bson:"run_id" json:"run_id"`
	StartedAt  time.Time `bson:"started_at" json:"started_at"`
	FinishedAt time.Time `bson:"finished_at" json:"finished_at"`

	// Outcome is one of the pipeline outcome names (published, all_duplicates, ...).
	Outcome string `bson:"outcome" json:"outcome"`

	Title     string `bson:"title,omitempty" json:"title,omitempty"`
	ProductID string `bson:"product_id,omitempty" json:"product_id,omitempty"`
	PostID    string `bson:"post_id,omitempty" json:"post_id,omitempty"`

	Candidates int `bson:"candidates" json:"candidates"`
	Duplicates int `bson:"duplicates" json:"duplicates"`
	Skipped    int `bson:"skipped" json:"skipped"`

	Error string `bson:"error,omitempty" json:"error,omitempty"`
}
