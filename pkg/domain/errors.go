package domain

import "fmt"

// FetchError is a transport failure or non-success status on an outbound request
// (catalog listing, detail page, image download).
type FetchError struct {
	URL        string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError means a required markup region or identifier was not found.
type ParseError struct {
	URL  string
	What string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.URL, e.What, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.URL, e.What)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RemoteError is a failure reported by the publishing system (auth, validation, transport).
type RemoteError struct {
	Method string
	Err    error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s: %v", e.Method, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }
