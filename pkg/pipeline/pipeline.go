package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"catalog-post/pkg/domain"
	"catalog-post/pkg/filter"
	"catalog-post/pkg/wordpress"

	"github.com/google/uuid"
)

// CatalogLister returns the newest catalog entries, newest first.
type CatalogLister interface {
	Fetch(ctx context.Context, limit int) ([]domain.CatalogEntry, error)
}

// DetailExtractor turns a catalog entry into a full item.
// It fails with *domain.FetchError or *domain.ParseError.
type DetailExtractor interface {
	Extract(ctx context.Context, entry domain.CatalogEntry) (domain.Item, error)
}

// Ledger reports the titles already published remotely.
type Ledger interface {
	CurrentTitles(ctx context.Context) (domain.PublishedTitleSet, error)
}

// MediaRelocator re-hosts an image and returns nil when it can't.
type MediaRelocator interface {
	Relocate(ctx context.Context, url, label string) *domain.MediaHandle
}

// Composer renders the post body.
type Composer interface {
	ComposeWithSamples(item domain.Item, imageURL string, samples []string) string
}

// Publisher creates the remote post.
type Publisher interface {
	Publish(ctx context.Context, item domain.Item, body string, featured *domain.MediaHandle) (wordpress.PublishResult, error)
}

// RunRecorder stores the audit record of a run.
type RunRecorder interface {
	SaveRun(ctx context.Context, record domain.RunRecord) error
}

// Stages are the collaborators of a run. Recorder is optional.
type Stages struct {
	Catalog   CatalogLister
	Details   DetailExtractor
	Ledger    Ledger
	Media     MediaRelocator
	Composer  Composer
	Publisher Publisher
	Recorder  RunRecorder
}

// Options tune a run.
type Options struct {
	// Limit caps the catalog entries considered. Non-positive means the catalog default.
	Limit int
	// UploadSamples re-hosts sample images too, not only the featured one.
	UploadSamples bool
	// DryRun stops after selection without touching any remote write path.
	DryRun bool
	// ScanWorkers bounds parallel extraction in Scan only; Run is sequential.
	ScanWorkers int
}

// Pipeline runs one catalog → post pass. It is strictly sequential and
// publishes at most one item per run.
type Pipeline struct {
	stages Stages
	opts   Options
}

// NewPipeline creates a pipeline over the given stages.
func NewPipeline(stages Stages, opts Options) *Pipeline {
	return &Pipeline{
		stages: stages,
		opts:   opts,
	}
}

// Run executes one pass. The returned Result is never nil; on a fatal error
// its Outcome is OutcomeFailed and the error is returned as well.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	ctx = withRunID(ctx, result.RunID)

	err := p.run(ctx, result)
	if err != nil {
		result.Outcome = OutcomeFailed
		result.Err = err
	}
	result.FinishedAt = time.Now()

	p.record(ctx, result)

	slog.InfoContext(ctx, "run finished",
		"outcome", result.Outcome,
		"candidates", result.Candidates,
		"duplicates", result.Duplicates,
		"skipped", len(result.Skipped),
		"post_id", result.PostID)
	return result, err
}

func (p *Pipeline) run(ctx context.Context, result *Result) error {
	if err := p.validate(); err != nil {
		return err
	}

	entries, err := p.stages.Catalog.Fetch(ctx, p.opts.Limit)
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}
	result.Candidates = len(entries)
	if len(entries) == 0 {
		slog.InfoContext(ctx, "catalog is empty")
		result.Outcome = OutcomeNoNewItems
		return nil
	}

	published, err := p.stages.Ledger.CurrentTitles(ctx)
	if err != nil {
		return fmt.Errorf("read ledger: %w", err)
	}
	slog.InfoContext(ctx, "ledger loaded", "published", len(published))

	item, found, err := p.choose(ctx, entries, filter.NewSelector(published), result)
	if err != nil {
		return err
	}
	if !found {
		if result.Duplicates == len(entries) {
			result.Outcome = OutcomeAllDuplicates
		} else {
			result.Outcome = OutcomeNoNewItems
		}
		return nil
	}
	result.Item = &item

	if p.opts.DryRun {
		slog.InfoContext(ctx, "dry run, not publishing", "title", item.Title, "product_id", item.ID)
		result.Outcome = OutcomeDryRun
		return nil
	}

	return p.publish(ctx, item, result)
}

// choose walks entries in catalog order and returns the first one that is not
// yet published and whose detail page extracts cleanly.
func (p *Pipeline) choose(ctx context.Context, entries []domain.CatalogEntry, selector *filter.Selector, result *Result) (domain.Item, bool, error) {
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return domain.Item{}, false, err
		}

		if !selector.Eligible(entry.Title) {
			slog.DebugContext(ctx, "already published", "title", entry.Title)
			result.Duplicates++
			continue
		}

		item, err := p.stages.Details.Extract(ctx, entry)
		if err != nil {
			if !isSkippable(err) {
				return domain.Item{}, false, fmt.Errorf("extract %q: %w", entry.Title, err)
			}
			slog.WarnContext(ctx, "skipping candidate", "title", entry.Title, "err", err)
			result.Skipped = append(result.Skipped, SkippedCandidate{Entry: entry, Err: err})
			continue
		}

		// Extraction keeps the listing title, but re-check in case it was normalized.
		if !selector.Eligible(item.Title) {
			result.Duplicates++
			continue
		}

		slog.InfoContext(ctx, "selected", "title", item.Title, "product_id", item.ID)
		return item, true, nil
	}
	return domain.Item{}, false, nil
}

func (p *Pipeline) publish(ctx context.Context, item domain.Item, result *Result) error {
	featured := p.stages.Media.Relocate(ctx, item.PrimaryImageURL, "featured")
	heroURL := relocatedURL(featured, item.PrimaryImageURL)

	samples := item.SampleImageURLs
	if p.opts.UploadSamples {
		samples = p.relocateSamples(ctx, item.SampleImageURLs)
	}

	body := p.stages.Composer.ComposeWithSamples(item, heroURL, samples)

	published, err := p.stages.Publisher.Publish(ctx, item, body, featured)
	if err != nil {
		return fmt.Errorf("publish %q: %w", item.Title, err)
	}

	result.Outcome = OutcomePublished
	result.PostID = published.PostID
	return nil
}

func (p *Pipeline) relocateSamples(ctx context.Context, urls []string) []string {
	out := make([]string, 0, len(urls))
	for i, u := range urls {
		handle := p.stages.Media.Relocate(ctx, u, fmt.Sprintf("sample-%d", i+1))
		out = append(out, relocatedURL(handle, u))
	}
	return out
}

// relocatedURL prefers the re-hosted copy. An upload reply without a URL
// keeps the source so the post never carries an empty src.
func relocatedURL(handle *domain.MediaHandle, source string) string {
	if handle == nil || handle.RemoteURL == "" {
		return source
	}
	return handle.RemoteURL
}

func (p *Pipeline) record(ctx context.Context, result *Result) {
	if p.stages.Recorder == nil {
		return
	}
	// The run context may already be cancelled; the audit entry is still wanted.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := p.stages.Recorder.SaveRun(ctx, result.Record()); err != nil {
		slog.WarnContext(ctx, "failed to record run", "err", err)
	}
}

func (p *Pipeline) validate() error {
	switch {
	case p.stages.Catalog == nil:
		return errors.New("catalog lister is not set")
	case p.stages.Details == nil:
		return errors.New("detail extractor is not set")
	case p.stages.Ledger == nil:
		return errors.New("ledger is not set")
	case p.opts.DryRun:
		return nil
	case p.stages.Media == nil:
		return errors.New("media relocator is not set")
	case p.stages.Composer == nil:
		return errors.New("composer is not set")
	case p.stages.Publisher == nil:
		return errors.New("publisher is not set")
	}
	return nil
}

func isSkippable(err error) bool {
	var fetchErr *domain.FetchError
	var parseErr *domain.ParseError
	return errors.As(err, &fetchErr) || errors.As(err, &parseErr)
}
