package wordpress

import (
	"context"
	"log/slog"

	"catalog-post/pkg/content"
	"catalog-post/pkg/domain"
)

// PublishResult identifies the post created by a successful publish.
type PublishResult struct {
	PostID string
	Title  string
}

// Publisher turns a composed item into one wp.newPost call.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher on top of client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish creates the post. Tags are omitted when empty, and the featured
// image is set only when featured is non-nil. No retry on failure.
func (p *Publisher) Publish(ctx context.Context, item domain.Item, body string, featured *domain.MediaHandle) (PublishResult, error) {
	post := NewPost{
		Title:     item.Title,
		Content:   body,
		Excerpt:   content.Excerpt(item.DescriptionMarkup),
		Tags:      item.Tags,
		ProductID: item.ID,
	}
	if featured != nil {
		post.ThumbnailID = featured.RemoteID
	}

	postID, err := p.client.CreatePost(ctx, post)
	if err != nil {
		return PublishResult{}, err
	}

	slog.InfoContext(ctx, "posted", "post_id", postID, "title", item.Title, "product_id", item.ID)
	return PublishResult{PostID: postID, Title: item.Title}, nil
}
