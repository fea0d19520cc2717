package httpclient

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stallingServer flushes headers and part of a body, then hangs until the
// client goes away or the test ends.
func stallingServer(t *testing.T) *httptest.Server {
	t.Helper()
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<?xml version=\"1.0\"?><methodResponse>"))
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })
	return server
}

func TestDeadlineTransport_BoundsBodyRead(t *testing.T) {
	server := stallingServer(t)
	client := &http.Client{Transport: NewDeadlineTransport(200 * time.Millisecond)}

	start := time.Now()
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	_, err = io.ReadAll(resp.Body)
	resp.Body.Close()

	assert.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestDeadlineTransport_PassesThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := &http.Client{Transport: NewDeadlineTransport(time.Second)}
	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(data))
}

func TestNewDeadlineTransport_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewDeadlineTransport(0).Timeout)
}
