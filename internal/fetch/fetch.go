
package fetch

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrContentType is returned for responses that are not a data file.
var ErrContentType = errors.New("unsupported content type")

var acceptedTypes = []string{
	"application/json",
	"application/x-ndjson",
	"application/jsonl",
	"text/plain",
	"text/csv",
	"text/markdown",
}

// HTTPClient downloads pre-built dataset files (webmention exports,
// analytics dumps, block lists) published at a URL.
type HTTPClient struct {
	client    *http.Client
	sizeCap   int64
	userAgent string
}

func NewHTTPClient(timeout, dialTimeout time.Duration, sizeCap int64) *HTTPClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		sizeCap:   sizeCap,
		userAgent: "indiesite-build/1.0",
	}
}

// IsRemote reports whether src should be fetched rather than opened.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// Fetch returns the size-capped body, the final URL after redirects, the
// content type and the time to first byte.
func (h *HTTPClient) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, string, string, time.Duration, error) {
	start := time.Now()
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, "", "", 0, fmt.Errorf("invalid url %q", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", "", 0, err
	}
	req.Header.Set("Accept", "application/json,application/x-ndjson;q=0.9,text/plain;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", h.userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, "", "", 0, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, "", "", 0, fmt.Errorf("fetch %s: http status %d", rawURL, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if mediaType != "" && !accepted(mediaType) {
		resp.Body.Close()
		return nil, "", "", 0, fmt.Errorf("fetch %s: %w %q", rawURL, ErrContentType, mediaType)
	}

	var body io.ReadCloser = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			resp.Body.Close()
			return nil, "", "", 0, err
		}
		body = readCloser{Reader: gz, close: func() error {
			gz.Close()
			return resp.Body.Close()
		}}
	}

	finalURL := resp.Request.URL.String()
	elapsed := time.Since(start)
	return readCloser{Reader: io.LimitReader(body, h.sizeCap), close: body.Close}, finalURL, contentType, elapsed, nil
}

func accepted(mediaType string) bool {
	for _, t := range acceptedTypes {
		if mediaType == t {
			return true
		}
	}
	return strings.HasSuffix(mediaType, "+json")
}

type readCloser struct {
	io.Reader
	close func() error
}

func (r readCloser) Close() error { return r.close() }
