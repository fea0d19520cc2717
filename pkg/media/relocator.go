package media

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"catalog-post/pkg/domain"
	"catalog-post/pkg/httpclient"
)

// Store uploads binaries to the remote media library.
type Store interface {
	UploadFile(ctx context.Context, name, mediaType string, data []byte) (domain.MediaHandle, error)
}

// Relocator downloads images and re-hosts them in the remote media store.
type Relocator struct {
	client *httpclient.HTTPClient
	store  Store

	// MaxDimension downscales larger images before upload. 0 disables it.
	MaxDimension int
}

// NewRelocator creates a relocator.
func NewRelocator(client *httpclient.HTTPClient, store Store) *Relocator {
	return &Relocator{
		client: client,
		store:  store,
	}
}

// Relocate re-hosts the image at rawURL. label only names the slot in logs.
//
// It never fails the run: an empty URL, a failed download or a failed upload
// all return nil, and the caller falls back to the original URL.
func (r *Relocator) Relocate(ctx context.Context, rawURL, label string) *domain.MediaHandle {
	if rawURL == "" {
		slog.InfoContext(ctx, "no image for slot", "slot", label)
		return nil
	}

	body, err := r.client.Fetch(ctx, rawURL)
	if err != nil {
		slog.WarnContext(ctx, "image download failed", "slot", label, "url", rawURL, "err", err)
		return nil
	}

	name := FileName(rawURL)
	mediaType := MediaType(body.ContentType, body.Data)
	data := body.Data

	if r.MaxDimension > 0 {
		if resized, ok := Downscale(data, r.MaxDimension); ok {
			data = resized
			mediaType = "image/jpeg"
			name = jpegName(name)
		}
	}

	handle, err := r.store.UploadFile(ctx, name, mediaType, data)
	if err != nil {
		slog.WarnContext(ctx, "image upload failed", "slot", label, "url", rawURL, "err", err)
		return nil
	}

	slog.InfoContext(ctx, "uploaded image", "slot", label, "id", handle.RemoteID, "url", handle.RemoteURL)
	return &handle
}

// FileName is the last path segment of the URL, without query or fragment.
func FileName(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	name := path.Base(p)
	if name == "" || name == "." || name == "/" {
		return "image"
	}
	return name
}

// MediaType prefers the declared Content-Type, sniffing the data when it is missing.
func MediaType(declared string, data []byte) string {
	declared = strings.TrimSpace(declared)
	if declared != "" {
		return declared
	}
	return http.DetectContentType(data)
}

func jpegName(name string) string {
	ext := path.Ext(name)
	if strings.EqualFold(ext, ".jpg") || strings.EqualFold(ext, ".jpeg") {
		return name
	}
	return strings.TrimSuffix(name, ext) + ".jpg"
}
