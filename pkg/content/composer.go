package content

import (
	"fmt"
	"html"
	"strings"

	"catalog-post/pkg/domain"
)

// AffiliateLinkTemplate is filled with the operator's affiliate id and the item id.
const AffiliateLinkTemplate = "https://dlaf.jp/maniax/dlaf/=/t/n/link/work/aid/%s/id/%s.html"

// AffiliateLink builds the tracking URL for one item.
func AffiliateLink(affiliateID, itemID string) string {
	return fmt.Sprintf(AffiliateLinkTemplate, affiliateID, itemID)
}

// Composer assembles the post body. It holds no per-run state.
type Composer struct {
	affiliateID string

	// ClosingLink repeats the title link after the body.
	ClosingLink bool
}

// NewComposer creates a composer for the given affiliate id, closing link enabled.
func NewComposer(affiliateID string) *Composer {
	return &Composer{
		affiliateID: affiliateID,
		ClosingLink: true,
	}
}

// Compose renders the post markup with the hero image at imageURL and the
// item's own sample images.
func (c *Composer) Compose(item domain.Item, imageURL string) string {
	return c.ComposeWithSamples(item, imageURL, item.SampleImageURLs)
}

// ComposeWithSamples is Compose with explicit sample image URLs, used when the
// samples were re-hosted.
//
// Block order: hero image link, title link, description, samples, closing title link.
func (c *Composer) ComposeWithSamples(item domain.Item, imageURL string, samples []string) string {
	link := html.EscapeString(AffiliateLink(c.affiliateID, item.ID))
	title := html.EscapeString(item.Title)

	parts := make([]string, 0, 4+len(samples))
	parts = append(parts,
		fmt.Sprintf("<p><a rel='noopener sponsored' href='%s' target='_blank'><img src='%s' alt='%s'/></a></p>",
			link, html.EscapeString(imageURL), title),
		titleBlock(link, title),
		item.DescriptionMarkup,
	)
	for _, sample := range samples {
		if sample == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("<p><img src='%s' alt='sample image'/></p>", html.EscapeString(sample)))
	}
	if c.ClosingLink {
		parts = append(parts, titleBlock(link, title))
	}
	return strings.Join(parts, "\n")
}

func titleBlock(link, title string) string {
	return fmt.Sprintf("<p><a rel='noopener sponsored' href='%s' target='_blank'>%s</a></p>", link, title)
}
