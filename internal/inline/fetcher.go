package inline

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/example/catalog-flipbook/internal/apperr"
)

// maxImageBytes bounds a single download.
const maxImageBytes = 10 << 20

// HTTPFetcher fetches images over HTTP.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// NewHTTPFetcherWithClient uses hc for requests.
func NewHTTPFetcherWithClient(hc *http.Client) *HTTPFetcher {
	return &HTTPFetcher{client: hc}
}

// Fetch downloads url. Non-2xx responses are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", apperr.Network("build image request", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", apperr.Network("fetch image", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", apperr.Network(fmt.Sprintf("fetch image: unexpected status code: %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", apperr.Network("read image", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", apperr.Network("image exceeds size limit", nil)
	}

	return data, contentType(resp.Header.Get("Content-Type"), data), nil
}

func contentType(header string, data []byte) string {
	if header != "" {
		if mediaType, _, err := mime.ParseMediaType(header); err == nil && strings.Contains(mediaType, "/") {
			return mediaType
		}
	}
	return http.DetectContentType(data)
}
