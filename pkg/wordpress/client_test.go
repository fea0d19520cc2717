package wordpress

import (
	"context"
	"errors"
	"testing"

	"catalog-post/pkg/domain"
	"catalog-post/pkg/wordpress/wordpresstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *wordpresstest.Server) {
	t.Helper()
	server := wordpresstest.NewServer()
	t.Cleanup(server.Close)

	client, err := NewClient(Credentials{URL: server.URL + "/xmlrpc.php", Username: "user", Password: "pass"}, nil)
	require.NoError(t, err)
	return client, server
}

func TestEndpoint(t *testing.T) {
	assert.Equal(t, "https://blog.example/xmlrpc.php", Endpoint("https://blog.example"))
	assert.Equal(t, "https://blog.example/xmlrpc.php", Endpoint("https://blog.example/"))
	assert.Equal(t, "https://blog.example/xmlrpc.php", Endpoint("https://blog.example/xmlrpc.php"))
}

func TestClient_PublishedPosts(t *testing.T) {
	client, server := newTestClient(t)
	server.Respond("wp.getPosts", wordpresstest.PostsResponse(
		wordpresstest.PostSpec{ID: "10", Title: "A", ProductID: "RJ000001"},
		wordpresstest.PostSpec{ID: "11", Title: "B"},
	))

	posts, err := client.PublishedPosts(context.Background())
	require.NoError(t, err)

	require.Len(t, posts, 2)
	assert.Equal(t, "A", posts[0].Title)
	assert.Equal(t, "RJ000001", posts[0].ProductID())
	assert.Equal(t, "", posts[1].ProductID())

	calls := server.Calls("wp.getPosts")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Body, "<string>user</string>")
	assert.Contains(t, calls[0].Body, "<name>post_status</name>")
	assert.Contains(t, calls[0].Body, "publish")
}

func TestClient_PublishedPosts_FaultIsRemoteError(t *testing.T) {
	client, server := newTestClient(t)
	server.Respond("wp.getPosts", wordpresstest.Fault(403, "Incorrect username or password."))

	_, err := client.PublishedPosts(context.Background())

	var remoteErr *domain.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, "wp.getPosts", remoteErr.Method)
	assert.Contains(t, err.Error(), "Incorrect username or password.")
}

func TestClient_UploadFile(t *testing.T) {
	client, server := newTestClient(t)
	server.Respond("wp.uploadFile", wordpresstest.UploadResponse("77", "https://blog.example/wp-content/uploads/main.jpg"))

	handle, err := client.UploadFile(context.Background(), "main.jpg", "image/jpeg", []byte("jpegbytes"))
	require.NoError(t, err)

	assert.Equal(t, domain.MediaHandle{RemoteID: "77", RemoteURL: "https://blog.example/wp-content/uploads/main.jpg"}, handle)

	calls := server.Calls("wp.uploadFile")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Body, "main.jpg")
	assert.Contains(t, calls[0].Body, "anBlZ2J5dGVz") // base64("jpegbytes")
}

func TestClient_CreatePost(t *testing.T) {
	client, server := newTestClient(t)
	server.Respond("wp.newPost", wordpresstest.StringResponse("123"))

	id, err := client.CreatePost(context.Background(), NewPost{
		Title:       "Work B",
		Content:     "<p>body</p>",
		Tags:        []string{"Circle X", "Romance"},
		ProductID:   "RJ123456",
		ThumbnailID: "77",
	})
	require.NoError(t, err)
	assert.Equal(t, "123", id)

	calls := server.Calls("wp.newPost")
	require.Len(t, calls, 1)
	body := calls[0].Body
	assert.Contains(t, body, "<name>terms_names</name>")
	assert.Contains(t, body, "Romance")
	assert.Contains(t, body, "<name>post_thumbnail</name>")
	assert.Contains(t, body, "RJ123456")
	assert.Contains(t, body, "<name>custom_fields</name>")
}

func TestClient_CreatePost_OmitsEmptyTagsAndThumbnail(t *testing.T) {
	client, server := newTestClient(t)
	server.Respond("wp.newPost", wordpresstest.StringResponse("124"))

	_, err := client.CreatePost(context.Background(), NewPost{Title: "T", Content: "c", ProductID: "RJ1"})
	require.NoError(t, err)

	body := server.Calls("wp.newPost")[0].Body
	assert.NotContains(t, body, "terms_names")
	assert.NotContains(t, body, "post_thumbnail")
	assert.NotContains(t, body, "post_excerpt")
}

func TestClient_CancelledContextNeverCalls(t *testing.T) {
	client, server := newTestClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.CreatePost(ctx, NewPost{Title: "T"})
	require.Error(t, err)
	assert.Empty(t, server.Calls(""))
}
