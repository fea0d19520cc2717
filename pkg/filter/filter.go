package filter

import (
	"catalog-post/pkg/domain"
)

// Select returns the first item, in catalog order, whose title is not in published.
// It is pure: no I/O, same inputs always give the same answer.
func Select(items []domain.Item, published domain.PublishedTitleSet) (domain.Item, bool) {
	selector := NewSelector(published)
	for _, item := range items {
		if selector.Eligible(item.Title) {
			return item, true
		}
	}
	return domain.Item{}, false
}

// Selector answers eligibility one candidate at a time, so the pipeline can
// stop fetching detail pages as soon as a publishable item turns up.
type Selector struct {
	published domain.PublishedTitleSet
}

// NewSelector creates a selector over the given published-title set.
func NewSelector(published domain.PublishedTitleSet) *Selector {
	if published == nil {
		published = domain.PublishedTitleSet{}
	}
	return &Selector{published: published}
}

// Eligible reports whether a title has not been published yet.
func (s *Selector) Eligible(title string) bool {
	return !s.published.Contains(title)
}
