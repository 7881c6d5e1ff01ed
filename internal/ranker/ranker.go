
package ranker

import (
	"fmt"
	"slices"

	"indiesite/internal/models"
)

type Metric string

const (
	MetricPerDaysPosted Metric = "rankPerDaysPosted"
	MetricTotal         Metric = "rankTotal"
)

// DefaultLimit is the size of each popular-posts window and the most any
// ranking returns.
const DefaultLimit = 20

type Options struct {
	// Production drops draft pages.
	Production bool
	// Limit caps the result; zero or anything above DefaultLimit means
	// DefaultLimit.
	Limit int
}

func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricPerDaysPosted, MetricTotal:
		return Metric(s), nil
	case "":
		return MetricPerDaysPosted, nil
	}
	return "", fmt.Errorf("unknown ranking metric %q", s)
}

func (m Metric) value(r models.AnalyticsRecord) float64 {
	if m == MetricTotal {
		return r.RankTotal
	}
	return r.RankPerDaysPosted
}

// RankBy orders pages with analytics by metric, highest first, and keeps
// the top window. Pages without an analytics record are never ranked.
// Equal scores keep their collection order.
func RankBy(pages []models.Page, analytics models.Analytics, metric Metric, opts Options) []models.Page {
	limit := opts.Limit
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	eligible := make([]models.Page, 0, len(pages))
	for _, p := range pages {
		if opts.Production && p.IsDraft() {
			continue
		}
		if _, ok := analytics[p.URL]; !ok {
			continue
		}
		eligible = append(eligible, p)
	}
	slices.SortStableFunc(eligible, func(a, b models.Page) int {
		va, vb := metric.value(analytics[a.URL]), metric.value(analytics[b.URL])
		switch {
		case va > vb:
			return -1
		case va < vb:
			return 1
		}
		return 0
	})
	if len(eligible) > limit {
		eligible = eligible[:limit]
	}
	return eligible
}

// Popular produces both ranked views. They share the analytics filter but
// nothing else.
func Popular(pages []models.Page, analytics models.Analytics, opts Options) (perDays, total []models.Page) {
	return RankBy(pages, analytics, MetricPerDaysPosted, opts), RankBy(pages, analytics, MetricTotal, opts)
}

// Summarize pairs ranked pages with their position and score.
func Summarize(ranked []models.Page, analytics models.Analytics, metric Metric) []models.RankedPage {
	out := make([]models.RankedPage, len(ranked))
	for i, p := range ranked {
		out[i] = models.RankedPage{
			Rank:  i + 1,
			URL:   p.URL,
			Title: p.Title,
			Score: metric.value(analytics[p.URL]),
		}
	}
	return out
}
