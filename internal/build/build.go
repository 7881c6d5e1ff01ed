
// Package build loads the site datasets and derives the per-page webmention
// and popularity data the templates consume.
package build

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"indiesite/internal/classifier"
	"indiesite/internal/collections"
	"indiesite/internal/config"
	"indiesite/internal/ioformats"
	"indiesite/internal/models"
	"indiesite/internal/ranker"
	"indiesite/internal/urlnorm"
	"indiesite/internal/webmention"
	"indiesite/pkg/logger"
)

type Dataset struct {
	Store     models.MentionStore
	Blocks    models.BlockList
	Analytics models.Analytics
	Pages     []models.Page
}

// Source returns the webmention source over the loaded store and block list.
func (d *Dataset) Source() webmention.Source {
	return webmention.NewSource(d.Store, d.Blocks)
}

// Load reads the four datasets concurrently. Any failure cancels the rest.
func Load(ctx context.Context, cfg *config.Config, loader ioformats.Loader, log *logger.Logger) (*Dataset, error) {
	if loader.Log == nil {
		loader.Log = log
	}
	ds := &Dataset{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		store, err := loader.MentionStore(ctx, cfg.Data.Webmentions)
		if err != nil {
			return fmt.Errorf("load webmentions: %w", err)
		}
		ds.Store = store
		return nil
	})
	g.Go(func() error {
		blocks, err := loader.BlockList(ctx, cfg.Data.BlockList)
		if err != nil {
			return fmt.Errorf("load block list: %w", err)
		}
		ds.Blocks = blocks
		return nil
	})
	g.Go(func() error {
		an, err := loader.Analytics(ctx, cfg.Data.Analytics)
		if err != nil {
			return fmt.Errorf("load analytics: %w", err)
		}
		ds.Analytics = an
		return nil
	})
	g.Go(func() error {
		pages, err := ReadPages(cfg.Data.Content, cfg.Data.Posts)
		if err != nil {
			return fmt.Errorf("load pages: %w", err)
		}
		ds.Pages = pages
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Infof("loaded %d mention targets, %d block entries, %d analytics records, %d pages",
		len(ds.Store.Mentions), len(ds.Blocks), len(ds.Analytics), len(ds.Pages))
	return ds, nil
}

// ReadPages reads every root and keeps the first page seen per input path,
// so a posts directory inside the content root is not read twice.
func ReadPages(roots ...string) ([]models.Page, error) {
	seen := map[string]bool{}
	var out []models.Page
	for _, root := range roots {
		if root == "" {
			continue
		}
		pages, err := ioformats.ReadPages(root)
		if err != nil {
			return nil, err
		}
		for _, p := range pages {
			if seen[p.InputPath] {
				continue
			}
			seen[p.InputPath] = true
			out = append(out, p)
		}
	}
	return out, nil
}

type Options struct {
	SiteURL      string
	Production   bool
	Kinds        []models.Kind
	PopularLimit int
	LatestLimit  int
	Classifier   *classifier.Classifier
	// Concurrency bounds the per-page workers; zero means 8.
	Concurrency int
}

// OptionsFrom maps a loaded config to build options.
func OptionsFrom(cfg *config.Config) Options {
	return Options{
		SiteURL:      cfg.SiteURL,
		Production:   cfg.Production,
		PopularLimit: cfg.PopularLimit,
		LatestLimit:  cfg.LatestLimit,
		Classifier:   classifier.New().WithPartners(cfg.PartnerDomains...).WithPassThrough(cfg.PassThroughTags...),
	}
}

type Result struct {
	Pages        []models.PageResult `json:"pages"`
	Popular      []models.RankedPage `json:"popular"`
	PopularTotal []models.RankedPage `json:"popularTotal"`
	Newest       time.Time           `json:"newest"`
	Collections  Collections         `json:"collections"`
}

// PageRef is the part of a page listing templates need.
type PageRef struct {
	URL   string    `json:"url"`
	Title string    `json:"title,omitempty"`
	Date  time.Time `json:"date"`
}

// Collections are the page listings, newest first.
type Collections struct {
	Latest        []PageRef `json:"latestPosts"`
	Writing       []PageRef `json:"writing"`
	FontLoading   []PageRef `json:"fontLoading"`
	Presentations []PageRef `json:"presentations"`
}

func refs(pages []models.Page) []PageRef {
	out := make([]PageRef, len(pages))
	for i, p := range pages {
		out[i] = PageRef{URL: p.URL, Title: p.Title, Date: p.Date}
	}
	return out
}

// Run derives the per-page records and popularity windows. Workers only
// read the dataset and each writes its own slot of the result.
func Run(ctx context.Context, ds *Dataset, opts Options) (*Result, error) {
	cl := opts.Classifier
	if cl == nil {
		cl = classifier.New()
	}
	limit := opts.Concurrency
	if limit <= 0 {
		limit = 8
	}
	src := ds.Source()
	pages := collections.SortedByDate(ds.Pages)

	copts := collections.Options{Production: opts.Production}
	newest, err := collections.NewestDate(collections.FeedPosts(pages, copts))
	if err != nil {
		return nil, fmt.Errorf("feed newest date: %w", err)
	}

	out := make([]models.PageResult, len(pages))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range pages {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = PageResult(src, cl, p, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ropts := ranker.Options{Production: opts.Production, Limit: opts.PopularLimit}
	posts := collections.Posts(pages, copts)
	perDays, total := ranker.Popular(posts, ds.Analytics, ropts)
	latest := opts.LatestLimit
	if latest <= 0 {
		latest = 5
	}
	return &Result{
		Pages:        out,
		Popular:      ranker.Summarize(perDays, ds.Analytics, ranker.MetricPerDaysPosted),
		PopularTotal: ranker.Summarize(total, ds.Analytics, ranker.MetricTotal),
		Newest:       newest,
		Collections: Collections{
			Latest:        refs(collections.LatestPosts(pages, latest, copts)),
			Writing:       refs(collections.Writing(pages, cl, copts)),
			FontLoading:   refs(collections.FontLoading(pages, cl, copts)),
			Presentations: refs(collections.Presentations(pages, cl, copts)),
		},
	}, nil
}

// PageResult classifies one page and collects the webmentions for its
// absolute URL.
func PageResult(src webmention.Source, cl *classifier.Classifier, p models.Page, opts Options) models.PageResult {
	target, err := urlnorm.AbsoluteURL(p.URL, opts.SiteURL)
	if err != nil {
		target = p.URL
	}
	mentions := src.ForURL(target, opts.Kinds)
	return models.PageResult{
		URL:         p.URL,
		Title:       p.Title,
		Class:       cl.Classify(p),
		Webmentions: mentions,
		Counts:      webmention.CountByKind(mentions),
	}
}

// Write emits pages.ndjson, popular.json and collections.json under dir.
func Write(dir string, res *Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.Create(filepath.Join(dir, "pages.ndjson"))
	if err != nil {
		return err
	}
	if err := ioformats.WriteNDJSON(f, res.Pages); err != nil {
		f.Close()
		return fmt.Errorf("write pages: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	popular := struct {
		Popular      []models.RankedPage `json:"popular"`
		PopularTotal []models.RankedPage `json:"popularTotal"`
		Newest       string              `json:"newest"`
	}{res.Popular, res.PopularTotal, res.Newest.Format(time.RFC3339)}
	data, err := json.MarshalIndent(popular, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "popular.json"), append(data, '\n'), 0o644); err != nil {
		return err
	}

	data, err = json.MarshalIndent(res.Collections, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "collections.json"), append(data, '\n'), 0o644)
}
