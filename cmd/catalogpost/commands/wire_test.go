package commands

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catalog-post/pkg/config"
	"catalog-post/pkg/httpclient"
	"catalog-post/pkg/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		AffiliateID:  "999",
		WordPress:    config.WordPress{URL: "https://blog.example", User: "u", Password: "p"},
		CatalogLimit: 100,
		HTTPTimeout:  time.Second,
		HTTPProfile:  httpclient.BrowserClient,
		LedgerSource: config.LedgerXMLRPC,
		History:      config.History{Backend: config.HistoryNone},
	}
}

func TestBuild_Defaults(t *testing.T) {
	c, err := build(context.Background(), testConfig(), true)
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &ledger.XMLRPCReader{}, c.stages.Ledger)
	assert.Nil(t, c.stages.Recorder)
	assert.Nil(t, c.history)
	assert.NotNil(t, c.stages.Publisher)
}

func TestBuild_FeedLedger(t *testing.T) {
	cfg := testConfig()
	cfg.LedgerSource = config.LedgerFeed

	c, err := build(context.Background(), cfg, false)
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &ledger.FeedReader{}, c.stages.Ledger)
}

// stalledSite answers with headers and a partial body, then hangs until the
// client disconnects or the test ends.
func stalledSite(t *testing.T) *httptest.Server {
	t.Helper()
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<?xml version=\"1.0\"?>"))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })
	return server
}

func TestBuild_LedgerHonoursHTTPTimeout(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"xmlrpc", config.LedgerXMLRPC},
		{"feed", config.LedgerFeed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := stalledSite(t)

			cfg := testConfig()
			cfg.HTTPTimeout = 300 * time.Millisecond
			cfg.WordPress.URL = server.URL
			cfg.LedgerSource = tt.source
			cfg.LedgerFeedURL = server.URL + "/feed/"

			c, err := build(context.Background(), cfg, false)
			require.NoError(t, err)
			defer c.Close()

			start := time.Now()
			_, err = c.stages.Ledger.CurrentTitles(context.Background())

			assert.Error(t, err)
			assert.Less(t, time.Since(start), 2*time.Second)
		})
	}
}

func TestOpenHistory_PostgresUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, _, err := openHistory(ctx, config.History{
		Backend:     config.HistoryPostgres,
		PostgresDSN: "postgres://u:p@127.0.0.1:1/none?sslmode=disable&connect_timeout=1",
	})
	assert.Error(t, err)
}
