package catalog

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"catalog-post/pkg/domain"
	"catalog-post/pkg/httpclient"

	"github.com/PuerkitoBio/goquery"
)

// BaseOrigin is prepended to relative detail links.
const BaseOrigin = "https://www.dlsite.com"

// ListingURL is the frozen catalog query: doujin manga, Japanese or
// language-agnostic works, newest releases first, 100 per page.
const ListingURL = "https://www.dlsite.com/maniax/fsr/=/language/jp/sex_category[0]/male/" +
	"work_category[0]/doujin/order/release_d/work_type[0]/MNG/" +
	"options_and_or/and/options[0]/JPN/options[1]/NM/per_page/100/" +
	"lang_options[0]/%E6%97%A5%E6%9C%AC%E8%AA%9E/lang_options[1]/%E8%A8%80%E8%AA%9E%E4%B8%8D%E8%A6%81"

// DefaultLimit caps the number of listing entries considered per run.
const DefaultLimit = 100

const (
	resultNodeSelector = "li.search_result_img_box_inner"
	resultLinkSelector = "dd.work_name a"
)

// ListingFetcher fetches one catalog result page and returns its entries.
type ListingFetcher struct {
	client     *httpclient.HTTPClient
	listingURL string
}

// NewListingFetcher creates a fetcher for the frozen catalog query.
func NewListingFetcher(client *httpclient.HTTPClient) *ListingFetcher {
	return NewListingFetcherWithURL(client, ListingURL)
}

// NewListingFetcherWithURL creates a fetcher against another listing URL (tests, mirrors).
func NewListingFetcherWithURL(client *httpclient.HTTPClient, listingURL string) *ListingFetcher {
	return &ListingFetcher{
		client:     client,
		listingURL: listingURL,
	}
}

// Fetch issues a single listing request and returns up to limit entries in
// document order. An empty page is not an error. Each call hits the live site.
func (f *ListingFetcher) Fetch(ctx context.Context, limit int) ([]domain.CatalogEntry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	body, err := f.client.Fetch(ctx, f.listingURL)
	if err != nil {
		return nil, err
	}

	entries, err := ExtractListingEntries(body.Data)
	if err != nil {
		return nil, &domain.ParseError{URL: f.listingURL, What: "listing markup", Err: err}
	}
	slog.InfoContext(ctx, "retrieved catalog entries", "count", len(entries), "limit", limit)

	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ExtractListingEntries pulls title + detail link from every result node.
// Nodes without a title or link are dropped.
func ExtractListingEntries(html []byte) ([]domain.CatalogEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var entries []domain.CatalogEntry
	doc.Find(resultNodeSelector).Each(func(i int, node *goquery.Selection) {
		link := node.Find(resultLinkSelector).First()
		if link.Length() == 0 {
			return
		}

		href, exists := link.Attr("href")
		href = strings.TrimSpace(href)
		if !exists || href == "" {
			return
		}

		title := strings.TrimSpace(link.Text())
		if title == "" {
			return
		}

		entries = append(entries, domain.CatalogEntry{
			Title:      title,
			DetailLink: href,
		})
	})

	return entries, nil
}
