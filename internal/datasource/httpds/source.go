package httpds

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// Source adapts a URL to datasource.Source. The whole body is fetched (with
// retries) before Open returns, so a failed download never yields a
// half-read stream.
type Source struct {
	Client  *Client
	URL     string
	Headers http.Header
}

// NewSource binds url to c.
func NewSource(c *Client, url string, headers http.Header) *Source {
	return &Source{Client: c, URL: url, Headers: headers}
}

// Open fetches the URL and returns a reader over the body.
func (s *Source) Open(ctx context.Context) (io.ReadCloser, error) {
	b, err := s.Client.Fetch(ctx, s.URL, s.Headers)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}
