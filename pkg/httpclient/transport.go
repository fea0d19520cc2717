package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"
)

// DeadlineTransport bounds a whole exchange, body read included, for callers
// that build their own http.Client without a timeout (kolo/xmlrpc does).
type DeadlineTransport struct {
	Base    http.RoundTripper
	Timeout time.Duration
}

// NewDeadlineTransport wraps a clone of http.DefaultTransport. A non-positive
// timeout falls back to DefaultTimeout.
func NewDeadlineTransport(timeout time.Duration) *DeadlineTransport {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DeadlineTransport{
		Base:    http.DefaultTransport.(*http.Transport).Clone(),
		Timeout: timeout,
	}
}

func (t *DeadlineTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	ctx, cancel := context.WithTimeout(req.Context(), t.Timeout)
	resp, err := base.RoundTrip(req.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// CloseIdleConnections forwards to the base transport.
func (t *DeadlineTransport) CloseIdleConnections() {
	if ci, ok := t.Base.(interface{ CloseIdleConnections() }); ok {
		ci.CloseIdleConnections()
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
