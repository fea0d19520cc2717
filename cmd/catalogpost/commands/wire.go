package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"catalog-post/pkg/catalog"
	"catalog-post/pkg/config"
	"catalog-post/pkg/content"
	"catalog-post/pkg/db"
	"catalog-post/pkg/httpclient"
	"catalog-post/pkg/ledger"
	"catalog-post/pkg/media"
	"catalog-post/pkg/pipeline"
	"catalog-post/pkg/wordpress"
)

// components holds everything a command may need, built from one Config.
type components struct {
	stages  pipeline.Stages
	history db.RunHistory
	closers []func()
}

func (c *components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func newHTTPClient(cfg config.Config) *httpclient.HTTPClient {
	return httpclient.NewClientWithOptions(httpclient.Options{
		Type:              cfg.HTTPProfile,
		Timeout:           cfg.HTTPTimeout,
		UserAgent:         cfg.UserAgent,
		RequestsPerSecond: cfg.RequestRate,
	})
}

// rpcTransport bounds each XML-RPC call, response body included.
func rpcTransport(cfg config.Config) http.RoundTripper {
	return httpclient.NewDeadlineTransport(cfg.HTTPTimeout)
}

// build wires the pipeline stages. withHistory also opens the run history store.
func build(ctx context.Context, cfg config.Config, withHistory bool) (*components, error) {
	c := &components{}

	httpClient := newHTTPClient(cfg)

	wp, err := wordpress.NewClient(wordpress.Credentials{
		URL:      cfg.WordPress.URL,
		Username: cfg.WordPress.User,
		Password: cfg.WordPress.Password,
	}, rpcTransport(cfg))
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, func() { _ = wp.Close() })

	relocator := media.NewRelocator(httpClient, wp)
	relocator.MaxDimension = cfg.MaxImageDimension

	c.stages = pipeline.Stages{
		Catalog:   catalog.NewListingFetcher(httpClient),
		Details:   catalog.NewDetailExtractor(httpClient),
		Ledger:    newLedger(cfg, wp, httpClient),
		Media:     relocator,
		Composer:  content.NewComposer(cfg.AffiliateID),
		Publisher: wordpress.NewPublisher(wp),
	}

	if withHistory {
		history, closeHistory, err := openHistory(ctx, cfg.History)
		if err != nil {
			c.Close()
			return nil, err
		}
		if history != nil {
			c.history = history
			c.stages.Recorder = history
			c.closers = append(c.closers, closeHistory)
		}
	}

	return c, nil
}

func newLedger(cfg config.Config, wp *wordpress.Client, httpClient *httpclient.HTTPClient) pipeline.Ledger {
	if cfg.LedgerSource == config.LedgerFeed {
		feedURL := cfg.LedgerFeedURL
		if feedURL == "" {
			feedURL = ledger.FeedURL(cfg.WordPress.URL)
		}
		return ledger.NewFeedReader(feedURL, cfg.UserAgent, httpClient.HTTP())
	}
	return ledger.NewXMLRPCReader(wp)
}

// openHistory connects the configured run history backend. It returns a nil
// store for HistoryNone.
func openHistory(ctx context.Context, h config.History) (db.RunHistory, func(), error) {
	switch h.Backend {
	case config.HistoryMongo:
		client := db.NewClient(h.MongoURI, h.MongoDB, h.MongoCollection)
		if err := client.Connect(ctx); err != nil {
			return nil, nil, fmt.Errorf("connect mongo: %w", err)
		}
		return client, func() { _ = client.Close(context.Background()) }, nil

	case config.HistoryPostgres:
		pg := db.NewPostgresClient(db.PostgresConfig{DSN: h.PostgresDSN})
		if err := pg.Connect(ctx); err != nil {
			return nil, nil, err
		}
		store := db.NewRunStore(pg)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		return store, func() { _ = pg.Close() }, nil

	case config.HistorySupabase:
		sb := db.NewSupabaseClient(db.SupabaseConfig{
			SupabaseURL: h.SupabaseURL,
			SupabaseKey: h.SupabaseKey,
			Password:    h.SupabasePassword,
		})
		if err := sb.Connect(ctx); err != nil {
			return nil, nil, err
		}
		store := db.NewSupabaseStore(sb)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = sb.Close()
			return nil, nil, err
		}
		return store, func() { _ = sb.Close() }, nil
	}

	slog.DebugContext(ctx, "run history disabled")
	return nil, func() {}, nil
}
