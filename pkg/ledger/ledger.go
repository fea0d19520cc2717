package ledger

import (
	"context"
	"log/slog"

	"catalog-post/pkg/domain"
	"catalog-post/pkg/wordpress"
)

// Reader returns the titles currently published on the remote site.
// Any failure must surface as an error: without the set, de-duplication
// cannot be guaranteed and the run has to stop.
type Reader interface {
	CurrentTitles(ctx context.Context) (domain.PublishedTitleSet, error)
}

// PostLister is the slice of the WordPress client the ledger needs.
type PostLister interface {
	PublishedPosts(ctx context.Context) ([]wordpress.Post, error)
}

// XMLRPCReader reads the ledger through wp.getPosts.
type XMLRPCReader struct {
	posts PostLister
}

// NewXMLRPCReader creates a ledger reader over a WordPress client.
func NewXMLRPCReader(posts PostLister) *XMLRPCReader {
	return &XMLRPCReader{posts: posts}
}

// CurrentTitles returns the titles of the latest published posts.
func (r *XMLRPCReader) CurrentTitles(ctx context.Context) (domain.PublishedTitleSet, error) {
	posts, err := r.posts.PublishedPosts(ctx)
	if err != nil {
		return nil, err
	}

	set := make(domain.PublishedTitleSet, len(posts))
	withID := 0
	for _, p := range posts {
		set.Add(p.Title)
		productID := p.ProductID()
		if productID != "" {
			withID++
		}
		slog.DebugContext(ctx, "published post", "post_id", p.ID, "title", p.Title, "product_id", productID)
	}
	slog.InfoContext(ctx, "loaded published titles", "source", "xmlrpc", "count", len(set), "with_product_id", withID)
	return set, nil
}
