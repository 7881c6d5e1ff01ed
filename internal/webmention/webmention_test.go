
package webmention

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indiesite/internal/models"
)

const target = "https://www.zachleat.com/web/font-loading/"

func at(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

func like(src string, received int64) models.Interaction {
	return models.Interaction{Kind: models.KindLike, SourceURL: src, TargetURL: target, ReceivedAt: at(received)}
}

func sources(in []models.Interaction) []string {
	out := make([]string, len(in))
	for i, it := range in {
		out[i] = it.SourceURL
	}
	return out
}

func TestIsBlocked(t *testing.T) {
	blocks := models.BlockList{"https://spam.example"}

	assert.True(t, IsBlocked("https://spam.example/page", blocks), "prefix match")
	assert.True(t, IsBlocked("https://ok.example/ref/spam.example", blocks), "substring match")
	assert.True(t, IsBlocked("http://spam.example/page", blocks), "scheme variant")
	assert.False(t, IsBlocked("https://ok.example/page", blocks))
	assert.False(t, IsBlocked("", blocks), "empty source never blocked")
	assert.False(t, IsBlocked("https://ok.example/page", models.BlockList{""}), "empty entry ignored")
	assert.False(t, IsBlocked("https://ok.example/page", nil))
}

func TestIsBlockedBareDomainEntry(t *testing.T) {
	blocks := models.BlockList{"spam.example"}
	assert.True(t, IsBlocked("https://spam.example/page", blocks))
	assert.True(t, IsBlocked("https://ok.example/ref/spam.example", blocks))
}

// Containment is plain text matching, so any host or path that embeds a
// blocked domain is blocked with it.
func TestIsBlockedOverMatches(t *testing.T) {
	blocks := models.BlockList{"https://spam.example"}
	assert.True(t, IsBlocked("https://notspam.example/x", blocks))
	assert.True(t, IsBlocked("https://spam.example.org/x", blocks))
	assert.True(t, IsBlocked("https://ok.example/?ref=spam.example", blocks))
	assert.False(t, IsBlocked("https://spam-example.org/x", blocks))
}

func TestIsBlockedMonotonic(t *testing.T) {
	urls := []string{
		"https://a.example/1",
		"https://spam.example/2",
		"https://b.example/spam.example",
		"",
	}
	small := models.BlockList{"https://spam.example"}
	large := append(models.BlockList{"a.example"}, small...)
	for _, u := range urls {
		if IsBlocked(u, small) {
			assert.True(t, IsBlocked(u, large), u)
		}
	}
}

func TestParseKinds(t *testing.T) {
	assert.Equal(t, models.AllKinds, ParseKinds(""))
	assert.Equal(t, []models.Kind{models.KindLike, models.KindRepost}, ParseKinds("like-of, repost-of"))
	assert.Equal(t, []models.Kind{"favorite-of"}, ParseKinds("favorite-of"))
}

func TestFilterByKind(t *testing.T) {
	in := []models.Interaction{
		{Kind: models.KindLike, SourceURL: "1"},
		{Kind: models.KindReply, SourceURL: "2"},
		{Kind: "rsvp", SourceURL: "3"},
		{Kind: models.KindRepost, SourceURL: "4"},
	}

	assert.Equal(t, []string{"1", "2", "4"}, sources(FilterByKind(in, nil)))
	assert.Equal(t, []string{"1"}, sources(FilterByKind(in, []models.Kind{models.KindLike})))
	assert.Empty(t, FilterByKind(in, []models.Kind{"rsvp"}), "unknown kinds never match")
	assert.Equal(t, []string{"2", "4"}, sources(FilterByKind(in, ParseKinds("in-reply-to,repost-of"))))
}

func TestDedupe(t *testing.T) {
	in := []models.Interaction{
		like("https://a.com/1", 100),
		like("https://b.com/2", 50),
		like("https://a.com/1", 200),
		like("", 10),
		like("", 20),
	}
	out := Dedupe(in)
	require.Len(t, out, 4)
	assert.Equal(t, []string{"https://a.com/1", "https://b.com/2", "", ""}, sources(out))
	assert.Equal(t, at(100), out[0].ReceivedAt, "first seen wins")

	assert.Equal(t, out, Dedupe(out), "idempotent")
}

func TestDedupeDistinctUnchanged(t *testing.T) {
	in := []models.Interaction{like("https://c.com", 3), like("https://a.com", 1), like("https://b.com", 2)}
	assert.Equal(t, in, Dedupe(in))
}

func TestSortOldestFirst(t *testing.T) {
	published := like("https://p.example", 500)
	published.PublishedAt = at(10)

	in := []models.Interaction{
		like("https://late.example", 300),
		published,
		like("https://mid.example", 100),
	}
	out := SortOldestFirst(in)
	assert.Equal(t, []string{"https://p.example", "https://mid.example", "https://late.example"}, sources(out))
	assert.Equal(t, "https://late.example", in[0].SourceURL, "input not mutated")
}

func TestSortOldestFirstStable(t *testing.T) {
	in := []models.Interaction{
		like("https://x.example", 100),
		like("https://a.example", 50),
		like("https://y.example", 100),
		like("https://z.example", 100),
	}
	out := SortOldestFirst(in)
	assert.Equal(t, []string{"https://a.example", "https://x.example", "https://y.example", "https://z.example"}, sources(out))
}

func TestSortOldestFirstEmpty(t *testing.T) {
	out := SortOldestFirst(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestForURLScenario(t *testing.T) {
	store := models.MentionStore{Mentions: map[string][]models.Interaction{
		"https://www.zachleat.com/web/font-loading": {
			like("https://a.com/1", 100),
			like("https://b.com/2", 50),
			like("https://a.com/1", 200),
		},
	}}
	src := NewSource(store, nil)

	out := src.ForURL(target, nil)
	require.Len(t, out, 2)
	assert.Equal(t, "https://b.com/2", out[0].SourceURL)
	assert.Equal(t, at(50), out[0].ReceivedAt)
	assert.Equal(t, "https://a.com/1", out[1].SourceURL)
	assert.Equal(t, at(100), out[1].ReceivedAt)

	assert.Equal(t, out, src.ForURL(target, nil), "repeat calls are identical")
}

func TestForURLFilters(t *testing.T) {
	reply := like("https://reply.example/1", 40)
	reply.Kind = models.KindReply
	offTarget := like("https://c.example/1", 30)
	offTarget.TargetURL = "https://www.zachleat.com/web/other/"
	spam := like("https://spam.example/1", 20)

	store := models.MentionStore{Mentions: map[string][]models.Interaction{
		"https://www.zachleat.com/web/font-loading": {spam, offTarget, reply, like("https://ok.example/1", 60)},
	}}
	src := NewSource(store, models.BlockList{"https://spam.example"})

	assert.Equal(t, []string{"https://reply.example/1", "https://ok.example/1"}, sources(src.ForURL(target, nil)))
	assert.Equal(t, []string{"https://ok.example/1"}, sources(src.ForURLTypes(target, "like-of")))
	assert.Equal(t, []string{"https://reply.example/1"}, sources(src.ForURLTypes("http://www.zachleat.com/web/font-loading", "in-reply-to")))
}

func TestForURLBlockedDoesNotShadowLaterDuplicate(t *testing.T) {
	first := like("https://a.example/1", 10)
	first.Kind = "rsvp"
	store := models.MentionStore{Mentions: map[string][]models.Interaction{
		"https://www.zachleat.com/web/font-loading": {first, like("https://a.example/1", 20)},
	}}
	out := NewSource(store, nil).ForURL(target, nil)
	require.Len(t, out, 1)
	assert.Equal(t, models.KindLike, out[0].Kind)
}

func TestForURLMissing(t *testing.T) {
	src := NewSource(models.MentionStore{}, nil)
	assert.Empty(t, src.ForURL(target, nil))
	assert.NotNil(t, src.ForURL("", nil))
}

func TestCountByKind(t *testing.T) {
	reply := like("r", 1)
	reply.Kind = models.KindReply
	counts := CountByKind([]models.Interaction{like("a", 1), like("b", 2), reply})
	assert.Equal(t, 2, counts[models.KindLike])
	assert.Equal(t, 1, counts[models.KindReply])
	assert.True(t, IsType(reply, models.KindReply))
}
