package domain

// CatalogEntry is a lightweight handle from one catalog listing page.
// It is consumed once by the detail extractor and not retained.
type CatalogEntry struct {
	Title      string
	DetailLink string // may be relative to the catalog origin
}

// Item is one normalized catalog work, ready for publication.
// It is built once from a fetched detail page and never mutated afterwards.
type Item struct {
	// Title is the listing title and the de-duplication key.
	Title string `bson:"title" json:"title"`

	// ID is the stable catalog identifier parsed from the detail URL (e.g. RJ123456).
	ID string `bson:"id" json:"id"`

	DetailURL string `bson:"detail_url" json:"detail_url"`

	// DescriptionMarkup is the intro fragment followed by the description fragment.
	// Either may be missing, so the value may be empty.
	DescriptionMarkup string `bson:"description_markup,omitempty" json:"description_markup,omitempty"`

	// Tags keeps extraction order: label order, then in-section order. Not deduplicated.
	Tags []string `bson:"tags,omitempty" json:"tags,omitempty"`

	PrimaryImageURL string   `bson:"primary_image_url,omitempty" json:"primary_image_url,omitempty"`
	SampleImageURLs []string `bson:"sample_image_urls,omitempty" json:"sample_image_urls,omitempty"`
}

// PublishedTitleSet is the set of titles already live on the remote site.
// It is fetched fresh for every run and never persisted.
type PublishedTitleSet map[string]struct{}

// NewPublishedTitleSet builds a set from the given titles.
func NewPublishedTitleSet(titles ...string) PublishedTitleSet {
	set := make(PublishedTitleSet, len(titles))
	for _, t := range titles {
		set.Add(t)
	}
	return set
}

func (s PublishedTitleSet) Add(title string) {
	s[title] = struct{}{}
}

func (s PublishedTitleSet) Contains(title string) bool {
	_, ok := s[title]
	return ok
}

// MediaHandle references an image re-hosted in the remote media store.
type MediaHandle struct {
	RemoteID  string
	RemoteURL string
}
