package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"catalog-post/pkg/domain"

	"github.com/mmcdole/gofeed"
)

// FeedReader reads the ledger from the site's public RSS/Atom feed.
// Feeds usually carry fewer entries than wp.getPosts, so this is the weaker
// ledger; it exists for sites with XML-RPC reads disabled.
type FeedReader struct {
	feedURL    string
	feedParser *gofeed.Parser
}

// NewFeedReader creates a feed-backed ledger reader. client bounds the fetch;
// nil leaves gofeed's default client, which has no timeout.
func NewFeedReader(feedURL string, userAgent string, client *http.Client) *FeedReader {
	parser := gofeed.NewParser()
	if client != nil {
		parser.Client = client
	}
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	return &FeedReader{
		feedURL:    feedURL,
		feedParser: parser,
	}
}

// FeedURL derives the default feed location from a site URL.
func FeedURL(siteURL string) string {
	return strings.TrimRight(siteURL, "/") + "/feed/"
}

// CurrentTitles fetches and parses the feed. An empty feed is an empty set.
func (r *FeedReader) CurrentTitles(ctx context.Context) (domain.PublishedTitleSet, error) {
	feed, err := r.feedParser.ParseURLWithContext(r.feedURL, ctx)
	if err != nil {
		return nil, &domain.RemoteError{Method: "feed", Err: fmt.Errorf("failed to parse feed %s: %w", r.feedURL, err)}
	}

	set := domain.NewPublishedTitleSet()
	for _, item := range feed.Items {
		if title := strings.TrimSpace(item.Title); title != "" {
			set.Add(title)
		}
	}
	slog.InfoContext(ctx, "loaded published titles", "source", "feed", "count", len(set))
	return set, nil
}
