package wordpress

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"catalog-post/pkg/domain"

	"github.com/kolo/xmlrpc"
)

// ProductIDField is the custom field carrying the catalog identifier on each post.
const ProductIDField = "product_id"

// LedgerPageSize is how many published posts one ledger read asks for.
const LedgerPageSize = 100

// Credentials identify the remote site and the publishing account.
type Credentials struct {
	URL      string // site root or the xmlrpc.php endpoint itself
	Username string
	Password string
}

// Client talks to the WordPress XML-RPC API. Every method is a single attempt:
// creating posts is not idempotent server-side, so nothing here retries.
type Client struct {
	rpc       *xmlrpc.Client
	transport http.RoundTripper
	creds     Credentials
	blogID    int
}

// NewClient creates a client. transport may be nil (http.DefaultTransport).
func NewClient(creds Credentials, transport http.RoundTripper) (*Client, error) {
	endpoint := Endpoint(creds.URL)
	rpc, err := xmlrpc.NewClient(endpoint, transport)
	if err != nil {
		return nil, fmt.Errorf("create xmlrpc client for %s: %w", endpoint, err)
	}
	return &Client{rpc: rpc, transport: transport, creds: creds}, nil
}

// Close releases the underlying transport.
func (c *Client) Close() error {
	// xmlrpc only closes a bare *http.Transport.
	if ci, ok := c.transport.(interface{ CloseIdleConnections() }); ok {
		ci.CloseIdleConnections()
	}
	return c.rpc.Close()
}

// Endpoint returns the xmlrpc.php URL for a site URL.
func Endpoint(siteURL string) string {
	siteURL = strings.TrimRight(strings.TrimSpace(siteURL), "/")
	if strings.HasSuffix(siteURL, "xmlrpc.php") {
		return siteURL
	}
	return siteURL + "/xmlrpc.php"
}

// Post is the subset of wp.getPosts fields the ledger needs.
type Post struct {
	ID           string        `xmlrpc:"post_id"`
	Title        string        `xmlrpc:"post_title"`
	CustomFields []CustomField `xmlrpc:"custom_fields"`
}

// CustomField is a post meta entry.
type CustomField struct {
	ID    string `xmlrpc:"id"`
	Key   string `xmlrpc:"key"`
	Value string `xmlrpc:"value"`
}

// ProductID returns the catalog identifier stored on the post, if any.
func (p Post) ProductID() string {
	for _, f := range p.CustomFields {
		if f.Key == ProductIDField {
			return f.Value
		}
	}
	return ""
}

// PublishedPosts lists up to LedgerPageSize published posts.
func (c *Client) PublishedPosts(ctx context.Context) ([]Post, error) {
	filter := map[string]interface{}{
		"post_type":   "post",
		"post_status": "publish",
		"number":      LedgerPageSize,
	}
	fields := []interface{}{"post_id", "post_title", "custom_fields"}

	var posts []Post
	if err := c.call(ctx, "wp.getPosts", c.args(filter, fields), &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UploadFile stores a binary in the media library.
func (c *Client) UploadFile(ctx context.Context, name, mediaType string, data []byte) (domain.MediaHandle, error) {
	file := map[string]interface{}{
		"name": name,
		"type": mediaType,
		"bits": xmlrpc.Base64(base64.StdEncoding.EncodeToString(data)),
	}

	var reply map[string]interface{}
	if err := c.call(ctx, "wp.uploadFile", c.args(file), &reply); err != nil {
		return domain.MediaHandle{}, err
	}

	handle := domain.MediaHandle{
		RemoteID:  stringValue(reply["id"]),
		RemoteURL: stringValue(reply["url"]),
	}
	if handle.RemoteID == "" {
		handle.RemoteID = stringValue(reply["attachment_id"])
	}
	if handle.RemoteID == "" {
		return domain.MediaHandle{}, &domain.RemoteError{Method: "wp.uploadFile", Err: fmt.Errorf("response has no attachment id")}
	}
	return handle, nil
}

// NewPost is the create-post payload.
type NewPost struct {
	Title   string
	Content string
	Excerpt string
	Tags    []string
	// ProductID is written to the ProductIDField custom field.
	ProductID string
	// ThumbnailID is the featured media id; empty means no featured image.
	ThumbnailID string
}

// CreatePost issues exactly one wp.newPost call and returns the new post id.
func (c *Client) CreatePost(ctx context.Context, p NewPost) (string, error) {
	content := map[string]interface{}{
		"post_type":    "post",
		"post_status":  "publish",
		"post_title":   p.Title,
		"post_content": p.Content,
	}
	if p.Excerpt != "" {
		content["post_excerpt"] = p.Excerpt
	}
	if len(p.Tags) > 0 {
		content["terms_names"] = map[string]interface{}{
			"post_tag": p.Tags,
		}
	}
	if p.ProductID != "" {
		content["custom_fields"] = []interface{}{
			map[string]interface{}{"key": ProductIDField, "value": p.ProductID},
		}
	}
	if p.ThumbnailID != "" {
		if id, err := strconv.Atoi(p.ThumbnailID); err == nil {
			content["post_thumbnail"] = id
		} else {
			content["post_thumbnail"] = p.ThumbnailID
		}
	}

	var postID string
	if err := c.call(ctx, "wp.newPost", c.args(content), &postID); err != nil {
		return "", err
	}
	return postID, nil
}

func (c *Client) args(params ...interface{}) []interface{} {
	return append([]interface{}{c.blogID, c.creds.Username, c.creds.Password}, params...)
}

// call runs one XML-RPC method. The xmlrpc client has no context support, so a
// cancelled context only prevents the call from starting.
func (c *Client) call(ctx context.Context, method string, args []interface{}, reply interface{}) error {
	if err := ctx.Err(); err != nil {
		return &domain.RemoteError{Method: method, Err: err}
	}
	slog.DebugContext(ctx, "xmlrpc call", "method", method)
	if err := c.rpc.Call(method, args, reply); err != nil {
		return &domain.RemoteError{Method: method, Err: err}
	}
	return nil
}

func stringValue(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	default:
		return fmt.Sprint(t)
	}
}
