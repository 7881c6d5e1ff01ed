
// Package collections builds the page lists the site templates iterate
// over. Every function takes the full page set and an explicit Options.
package collections

import (
	"errors"
	"slices"
	"time"

	"indiesite/internal/classifier"
	"indiesite/internal/models"
)

// ErrEmptyCollection is returned when a function needs at least one page.
var ErrEmptyCollection = errors.New("collection is empty")

type Options struct {
	Production bool
}

func (o Options) keep(p models.Page) bool {
	return !(o.Production && p.IsDraft())
}

// SortedByDate returns pages oldest first. Equal dates fall back to input
// path so the order does not depend on how the pages were read.
func SortedByDate(pages []models.Page) []models.Page {
	out := slices.Clone(pages)
	slices.SortStableFunc(out, func(a, b models.Page) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		switch {
		case a.InputPath < b.InputPath:
			return -1
		case a.InputPath > b.InputPath:
			return 1
		}
		return 0
	})
	return out
}

// NewestFirst returns pages sorted by date, newest first.
func NewestFirst(pages []models.Page) []models.Page {
	out := SortedByDate(pages)
	slices.Reverse(out)
	return out
}

func filter(pages []models.Page, keep func(models.Page) bool) []models.Page {
	out := make([]models.Page, 0, len(pages))
	for _, p := range pages {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// Posts lists posts-area pages that have a permalink.
func Posts(pages []models.Page, opts Options) []models.Page {
	return filter(NewestFirst(pages), func(p models.Page) bool {
		return classifier.IsPost(p) && p.Permalink != "" && opts.keep(p)
	})
}

// FeedPosts is Posts without deprecated or draft pages.
func FeedPosts(pages []models.Page, opts Options) []models.Page {
	return filter(Posts(pages, opts), func(p models.Page) bool {
		return len(p.Tags) == 0 || !p.Deprecated && !p.IsDraft()
	})
}

func Writing(pages []models.Page, cl *classifier.Classifier, opts Options) []models.Page {
	return filter(NewestFirst(pages), func(p models.Page) bool {
		return opts.keep(p) && cl.IsWriting(p)
	})
}

func FontLoading(pages []models.Page, cl *classifier.Classifier, opts Options) []models.Page {
	return filter(NewestFirst(pages), func(p models.Page) bool {
		return opts.keep(p) && cl.IsWebFonts(p)
	})
}

func Presentations(pages []models.Page, cl *classifier.Classifier, opts Options) []models.Page {
	return filter(NewestFirst(pages), func(p models.Page) bool {
		return opts.keep(p) && cl.IsSpeaking(p)
	})
}

// LatestPosts returns up to n of the newest posts-area pages.
func LatestPosts(pages []models.Page, n int, opts Options) []models.Page {
	out := make([]models.Page, 0, n)
	for _, p := range NewestFirst(pages) {
		if len(out) >= n {
			break
		}
		if opts.keep(p) && classifier.IsPost(p) {
			out = append(out, p)
		}
	}
	return out
}

// NewestDate is the date of the first page of an already-ordered
// collection, as used for feed metadata.
func NewestDate(pages []models.Page) (time.Time, error) {
	if len(pages) == 0 {
		return time.Time{}, ErrEmptyCollection
	}
	return pages[0].Date, nil
}
