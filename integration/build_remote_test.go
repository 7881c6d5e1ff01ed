//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indiesite/internal/build"
	"indiesite/internal/config"
	"indiesite/internal/fetch"
	"indiesite/internal/ioformats"
	"indiesite/pkg/logger"
)

const mentions = `{"children": [
  {"wm-property": "like-of", "url": "https://fan.example/like", "wm-target": "https://www.zachleat.com/web/hello/", "wm-received": "2021-06-01T10:00:00Z"},
  {"wm-property": "in-reply-to", "url": "https://spam.example/reply", "wm-target": "https://www.zachleat.com/web/hello/", "wm-received": "2021-06-02T10:00:00Z"},
  {"wm-property": "mention-of", "url": "https://blog.example/post", "wm-target": "https://www.zachleat.com/web/hello/#comments", "published": "2021-05-30", "wm-received": "2021-06-03T10:00:00Z"}
]}`

func TestBuildWithRemoteDatasets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/webmentions.json":
			_, _ = io.WriteString(w, mentions)
		case "/blocklist.json":
			_, _ = io.WriteString(w, `["spam.example"]`)
		case "/analytics.json":
			_, _ = io.WriteString(w, `{"/web/hello/": {"rankPerDaysPosted": 3.5, "rankTotal": 120}}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	posts := filepath.Join(dir, "_posts")
	require.NoError(t, os.MkdirAll(posts, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(posts, "2021-05-29-hello.md"),
		[]byte("---\ntitle: Hello\ntags: [eleventy]\npermalink: /web/hello/\n---\nHi.\n"), 0o644))

	cfg := config.Default()
	cfg.Data = config.DataConfig{
		Content:     dir,
		Webmentions: srv.URL + "/webmentions.json",
		BlockList:   srv.URL + "/blocklist.json",
		Analytics:   srv.URL + "/analytics.json",
		Posts:       posts,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	loader := ioformats.Loader{Client: fetch.NewHTTPClient(5*time.Second, 2*time.Second, 1<<20)}
	ds, err := build.Load(ctx, cfg, loader, logger.NewWithLevel(io.Discard, "error"))
	require.NoError(t, err)

	res, err := build.Run(ctx, ds, build.OptionsFrom(cfg))
	require.NoError(t, err)
	require.Len(t, res.Pages, 1)
	page := res.Pages[0]
	assert.Equal(t, []string{"writing", "eleventy"}, page.Class.Labels)
	require.Len(t, page.Webmentions, 2)
	assert.Equal(t, "https://blog.example/post", page.Webmentions[0].SourceURL, "published date sorts first")
	assert.Equal(t, "https://fan.example/like", page.Webmentions[1].SourceURL)

	out := filepath.Join(dir, "out")
	require.NoError(t, build.Write(out, res))
	data, err := os.ReadFile(filepath.Join(out, "popular.json"))
	require.NoError(t, err)
	var popular map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &popular))
	assert.Contains(t, string(popular["popularTotal"]), "/web/hello/")
}
