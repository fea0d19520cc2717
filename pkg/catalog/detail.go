package catalog

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"strings"

	"catalog-post/pkg/domain"
	"catalog-post/pkg/httpclient"

	"github.com/PuerkitoBio/goquery"
)

var productIDPattern = regexp.MustCompile(`/product_id/([A-Z]{2}\d+)\.html`)

// DetailExtractor turns a listing entry into a fully populated Item.
type DetailExtractor struct {
	client     *httpclient.HTTPClient
	rules      Rules
	baseOrigin string
}

// NewDetailExtractor creates an extractor using DefaultRules.
func NewDetailExtractor(client *httpclient.HTTPClient) *DetailExtractor {
	return NewDetailExtractorWithRules(client, DefaultRules, BaseOrigin)
}

// NewDetailExtractorWithRules creates an extractor with custom rules and origin.
func NewDetailExtractorWithRules(client *httpclient.HTTPClient, rules Rules, baseOrigin string) *DetailExtractor {
	return &DetailExtractor{
		client:     client,
		rules:      rules,
		baseOrigin: strings.TrimRight(baseOrigin, "/"),
	}
}

// Extract fetches the entry's detail page and builds the Item.
// It returns either a complete Item or a *domain.FetchError / *domain.ParseError.
func (e *DetailExtractor) Extract(ctx context.Context, entry domain.CatalogEntry) (domain.Item, error) {
	detailURL := ResolveDetailURL(entry.DetailLink, e.baseOrigin)

	id, err := ParseProductID(detailURL)
	if err != nil {
		return domain.Item{}, err
	}

	body, err := e.client.Fetch(ctx, detailURL)
	if err != nil {
		return domain.Item{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body.Data))
	if err != nil {
		return domain.Item{}, &domain.ParseError{URL: detailURL, What: "detail markup", Err: err}
	}

	item := domain.Item{
		Title:             strings.TrimSpace(entry.Title),
		ID:                id,
		DetailURL:         detailURL,
		DescriptionMarkup: e.rules.Description(doc),
		Tags:              e.rules.Tags(doc),
		PrimaryImageURL:   e.rules.PrimaryImage(doc),
		SampleImageURLs:   e.rules.SampleImages(doc),
	}
	if item.Title == "" {
		return domain.Item{}, &domain.ParseError{URL: detailURL, What: "empty title"}
	}

	slog.DebugContext(ctx, "extracted item",
		"id", item.ID,
		"title", item.Title,
		"tags", len(item.Tags),
		"primary_image", item.PrimaryImageURL,
		"samples", len(item.SampleImageURLs),
	)
	return item, nil
}

// ResolveDetailURL makes a relative detail link absolute against origin.
func ResolveDetailURL(link, origin string) string {
	link = strings.TrimSpace(link)
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	if strings.HasPrefix(link, "//") {
		return "https:" + link
	}
	if !strings.HasPrefix(link, "/") {
		link = "/" + link
	}
	return strings.TrimRight(origin, "/") + link
}

// ParseProductID pulls the catalog identifier out of a detail URL.
func ParseProductID(detailURL string) (string, error) {
	m := productIDPattern.FindStringSubmatch(detailURL)
	if m == nil {
		return "", &domain.ParseError{URL: detailURL, What: "product id not found in URL"}
	}
	return m[1], nil
}

// Description concatenates the raw markup of each configured region, in order.
func (r Rules) Description(doc *goquery.Document) string {
	var sb strings.Builder
	for _, selector := range r.DescriptionRegions {
		region := doc.Find(selector).First()
		if region.Length() == 0 {
			continue
		}
		html, err := goquery.OuterHtml(region)
		if err != nil {
			continue
		}
		sb.WriteString(html)
	}
	return sb.String()
}

// Tags walks TagRules in order and collects anchor texts from each labeled row.
// Labels missing from the page are skipped.
func (r Rules) Tags(doc *goquery.Document) []string {
	var tags []string
	for _, rule := range r.TagRules {
		cell := labeledCell(doc, rule.Label)
		if cell == nil {
			continue
		}
		cell.Find(rule.Selector).Each(func(i int, a *goquery.Selection) {
			if text := strings.TrimSpace(a.Text()); text != "" {
				tags = append(tags, text)
			}
		})
	}
	return tags
}

// labeledCell finds the td that follows the th whose text equals label.
func labeledCell(doc *goquery.Document, label string) *goquery.Selection {
	var cell *goquery.Selection
	doc.Find("th").EachWithBreak(func(i int, th *goquery.Selection) bool {
		if strings.TrimSpace(th.Text()) != label {
			return true
		}
		td := th.NextAllFiltered("td").First()
		if td.Length() > 0 {
			cell = td
		}
		return false
	})
	return cell
}

// PrimaryImage prefers the social preview meta, then the main image element.
// Absence yields "".
func (r Rules) PrimaryImage(doc *goquery.Document) string {
	if r.PreviewImageMeta != "" {
		if content, ok := doc.Find(r.PreviewImageMeta).First().Attr("content"); ok {
			if content = strings.TrimSpace(content); content != "" {
				return NormalizeImageURL(content)
			}
		}
	}

	for _, selector := range r.MainImageElements {
		img := doc.Find(selector).First()
		if img.Length() == 0 {
			continue
		}
		for _, attr := range r.MainImageAttrs {
			if v, ok := img.Attr(attr); ok && strings.TrimSpace(v) != "" {
				return NormalizeImageURL(strings.TrimSpace(v))
			}
		}
		return ""
	}
	return ""
}

// SampleImages returns the gallery image URLs in document order.
func (r Rules) SampleImages(doc *goquery.Document) []string {
	if r.SampleImageElements == "" {
		return nil
	}
	var urls []string
	doc.Find(r.SampleImageElements).Each(func(i int, s *goquery.Selection) {
		if v, ok := s.Attr(r.SampleImageAttr); ok && strings.TrimSpace(v) != "" {
			urls = append(urls, NormalizeImageURL(strings.TrimSpace(v)))
		}
	})
	return urls
}

// NormalizeImageURL turns protocol-relative URLs into explicit https URLs.
func NormalizeImageURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}

