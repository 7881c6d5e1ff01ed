
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

type Kind string

const (
	KindMention  Kind = "mention-of"
	KindReply    Kind = "in-reply-to"
	KindLike     Kind = "like-of"
	KindRepost   Kind = "repost-of"
	KindBookmark Kind = "bookmark-of"
)

// AllKinds is the closed set of interaction kinds the engine recognizes.
var AllKinds = []Kind{KindMention, KindReply, KindLike, KindRepost, KindBookmark}

func (k Kind) Known() bool {
	for _, known := range AllKinds {
		if k == known {
			return true
		}
	}
	return false
}

type Author struct {
	Name  string `json:"name,omitempty"`
	URL   string `json:"url,omitempty"`
	Photo string `json:"photo,omitempty"`
}

type InteractionContent struct {
	HTML string `json:"html,omitempty"`
	Text string `json:"text,omitempty"`
}

// Interaction is a single webmention record. A zero PublishedAt means the
// source did not claim a publish time.
type Interaction struct {
	Kind        Kind               `json:"wm-property"`
	SourceURL   string             `json:"url,omitempty"`
	TargetURL   string             `json:"wm-target"`
	PublishedAt time.Time          `json:"published,omitempty"`
	ReceivedAt  time.Time          `json:"wm-received"`
	Author      Author             `json:"author,omitempty"`
	Content     InteractionContent `json:"content,omitempty"`

	invalid []string
}

// Invalid lists the timestamps that could not be parsed while decoding.
// Those fields are left zero.
func (i Interaction) Invalid() []string { return i.invalid }

// SortKey is the best available timestamp: published, else received.
func (i Interaction) SortKey() time.Time {
	if !i.PublishedAt.IsZero() {
		return i.PublishedAt
	}
	return i.ReceivedAt
}

type interactionJSON struct {
	Kind      Kind               `json:"wm-property"`
	SourceURL *string            `json:"url"`
	TargetURL string             `json:"wm-target"`
	Published *string            `json:"published"`
	Received  string             `json:"wm-received"`
	Author    Author             `json:"author"`
	Content   InteractionContent `json:"content"`
}

// UnmarshalJSON accepts the loosely formatted timestamps aggregators emit
// (RFC 3339, with or without offsets, or plain dates). A timestamp that
// still cannot be read is left zero and reported by Invalid.
func (i *Interaction) UnmarshalJSON(data []byte) error {
	var raw interactionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Interaction{
		Kind:      raw.Kind,
		TargetURL: raw.TargetURL,
		Author:    raw.Author,
		Content:   raw.Content,
	}
	if raw.SourceURL != nil {
		out.SourceURL = *raw.SourceURL
	}
	if raw.Published != nil && strings.TrimSpace(*raw.Published) != "" {
		if t, err := dateparse.ParseAny(*raw.Published); err == nil {
			out.PublishedAt = t
		} else {
			out.invalid = append(out.invalid, fmt.Sprintf("published %q", *raw.Published))
		}
	}
	if strings.TrimSpace(raw.Received) != "" {
		if t, err := dateparse.ParseAny(raw.Received); err == nil {
			out.ReceivedAt = t
		} else {
			out.invalid = append(out.invalid, fmt.Sprintf("wm-received %q", raw.Received))
		}
	}
	*i = out
	return nil
}

// MarshalJSON drops the published field when absent instead of emitting
// the zero time.
func (i Interaction) MarshalJSON() ([]byte, error) {
	type alias struct {
		Kind        Kind                `json:"wm-property"`
		SourceURL   string              `json:"url,omitempty"`
		TargetURL   string              `json:"wm-target"`
		PublishedAt *time.Time          `json:"published,omitempty"`
		ReceivedAt  time.Time           `json:"wm-received"`
		Author      *Author             `json:"author,omitempty"`
		Content     *InteractionContent `json:"content,omitempty"`
	}
	a := alias{
		Kind:       i.Kind,
		SourceURL:  i.SourceURL,
		TargetURL:  i.TargetURL,
		ReceivedAt: i.ReceivedAt,
	}
	if !i.PublishedAt.IsZero() {
		p := i.PublishedAt
		a.PublishedAt = &p
	}
	if i.Author != (Author{}) {
		a.Author = &i.Author
	}
	if i.Content != (InteractionContent{}) {
		a.Content = &i.Content
	}
	return json.Marshal(a)
}

// MentionStore maps a normalized target URL to the raw interactions
// submitted for it. It is read-only once loaded.
type MentionStore struct {
	Mentions map[string][]Interaction `json:"mentions"`
}

func (s MentionStore) ForTarget(url string) []Interaction {
	if s.Mentions == nil {
		return nil
	}
	return s.Mentions[url]
}

// BlockList holds disallowed source origins or path prefixes.
type BlockList []string

type Page struct {
	InputPath   string            `json:"inputPath"`
	URL         string            `json:"url"`
	Permalink   string            `json:"permalink,omitempty"`
	Title       string            `json:"title,omitempty"`
	Date        time.Time         `json:"date"`
	Tags        []string          `json:"tags,omitempty"`
	Categories  []string          `json:"categories,omitempty"`
	Deprecated  bool              `json:"deprecated,omitempty"`
	ExternalURL string            `json:"external_url,omitempty"`
	Speaking    map[string]string `json:"speaking,omitempty"`
}

func (p Page) HasTag(tag string) bool {
	return contains(p.Tags, tag)
}

func (p Page) HasCategory(category string) bool {
	return contains(p.Categories, category)
}

func (p Page) IsDraft() bool { return p.HasTag("draft") }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

type AnalyticsRecord struct {
	RankPerDaysPosted float64 `json:"rankPerDaysPosted"`
	RankTotal         float64 `json:"rankTotal"`
}

// Analytics maps a page URL to its popularity metrics.
type Analytics map[string]AnalyticsRecord

type Classification struct {
	Labels []string          `json:"labels"`
	Reason map[string]string `json:"reason,omitempty"`
}

func (c Classification) Has(label string) bool {
	return contains(c.Labels, label)
}

// String renders labels the way filter markup expects them: comma joined.
func (c Classification) String() string {
	return strings.Join(c.Labels, ",")
}

type PageResult struct {
	URL         string         `json:"url"`
	Title       string         `json:"title,omitempty"`
	Class       Classification `json:"class"`
	Webmentions []Interaction  `json:"webmentions"`
	Counts      map[Kind]int   `json:"counts,omitempty"`
}

type RankedPage struct {
	Rank  int     `json:"rank"`
	URL   string  `json:"url"`
	Title string  `json:"title,omitempty"`
	Score float64 `json:"score"`
}
