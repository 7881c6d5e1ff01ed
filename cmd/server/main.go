
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"indiesite/internal/build"
	"indiesite/internal/collections"
	"indiesite/internal/config"
	"indiesite/internal/fetch"
	"indiesite/internal/ioformats"
	"indiesite/internal/models"
	"indiesite/internal/ranker"
	"indiesite/internal/urlnorm"
	"indiesite/pkg/logger"
)

func main() {
	cfgPath := flag.String("config", "", "path to site.yaml")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	cfg, err := config.Load(config.Path(*cfgPath))
	if err != nil {
		logger.New().Errorf("config: %v", err)
		os.Exit(1)
	}
	l := logger.NewWithLevel(os.Stderr, cfg.LogLevel)

	client := fetch.NewHTTPClient(cfg.FetchTimeout, 5*time.Second, 32*1024*1024)
	ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.FetchTimeout)
	ds, err := build.Load(ctx, cfg, ioformats.Loader{Client: client}, l)
	cancel()
	if err != nil {
		l.Errorf("load datasets: %v", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         *addr,
		Handler:      logRequest(l, newMux(cfg, ds)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		l.Infof("server listening on %s", *addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			l.Errorf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	l.Infof("shutting down...")
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	l.Infof("bye")
}

// newMux serves read-only views over a dataset loaded at startup.
func newMux(cfg *config.Config, ds *build.Dataset) *http.ServeMux {
	mux := http.NewServeMux()
	src := ds.Source()
	opts := build.OptionsFrom(cfg)
	cl := opts.Classifier
	posts := collections.Posts(ds.Pages, collections.Options{Production: cfg.Production})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// GET /webmentions?url=https://...&types=like-of,repost-of
	mux.HandleFunc("/webmentions", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		u := r.URL.Query().Get("url")
		if u == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url required"})
			return
		}
		mentions := src.ForURLTypes(u, r.URL.Query().Get("types"))
		writeJSON(w, http.StatusOK, map[string]any{
			"url":         u,
			"webmentions": mentions,
		})
	})

	// GET /pages/classify?url=/web/some-post/
	mux.HandleFunc("/pages/classify", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		u := r.URL.Query().Get("url")
		if u == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "url required"})
			return
		}
		p, ok := findPage(ds.Pages, u, cfg.SiteURL)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "page not found"})
			return
		}
		writeJSON(w, http.StatusOK, build.PageResult(src, cl, p, opts))
	})

	// GET /popular?metric=rankTotal
	mux.HandleFunc("/popular", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		metric, err := ranker.ParseMetric(r.URL.Query().Get("metric"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		ranked := ranker.RankBy(posts, ds.Analytics, metric, ranker.Options{Production: cfg.Production, Limit: cfg.PopularLimit})
		writeJSON(w, http.StatusOK, ranker.Summarize(ranked, ds.Analytics, metric))
	})

	return mux
}

// findPage matches u against page URLs, accepting both root-relative and
// absolute forms.
func findPage(pages []models.Page, u, site string) (models.Page, bool) {
	want, err := urlnorm.AbsoluteURL(u, site)
	if err != nil {
		return models.Page{}, false
	}
	for _, p := range pages {
		abs, err := urlnorm.AbsoluteURL(p.URL, site)
		if err != nil {
			continue
		}
		if urlnorm.Equal(abs, want) {
			return p, true
		}
	}
	return models.Page{}, false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func logRequest(l *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		l.Infof("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
