
package collections

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indiesite/internal/classifier"
	"indiesite/internal/models"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func fixture() []models.Page {
	return []models.Page{
		{InputPath: "./_posts/a.md", URL: "/a/", Permalink: "/a/", Date: day(2019, 3, 1), Tags: []string{"font-loading"}},
		{InputPath: "./_posts/b.md", URL: "/b/", Permalink: "/b/", Date: day(2020, 1, 5), Tags: []string{"draft"}},
		{InputPath: "./_posts/c.md", URL: "/c/", Permalink: "/c/", Date: day(2020, 6, 9), Tags: []string{"speaking"}},
		{InputPath: "./_posts/d.md", URL: "/d/", Date: day(2021, 2, 2)},
		{InputPath: "./pages/about.md", URL: "/about/", Permalink: "/about/", Date: day(2018, 1, 1)},
		{InputPath: "./_posts/e.md", URL: "/e/", Permalink: "/e/", Date: day(2020, 6, 9), Tags: []string{"note"}, Deprecated: true},
	}
}

func urls(pages []models.Page) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.URL
	}
	return out
}

func TestPosts(t *testing.T) {
	assert.Equal(t, []string{"/e/", "/c/", "/b/", "/a/"}, urls(Posts(fixture(), Options{})))
	assert.Equal(t, []string{"/e/", "/c/", "/a/"}, urls(Posts(fixture(), Options{Production: true})))
}

func TestFeedPosts(t *testing.T) {
	assert.Equal(t, []string{"/c/", "/a/"}, urls(FeedPosts(fixture(), Options{})))
}

func TestTaxonomyCollections(t *testing.T) {
	cl := classifier.New()
	assert.Equal(t, []string{"/d/", "/b/", "/a/"}, urls(Writing(fixture(), cl, Options{})))
	assert.Equal(t, []string{"/d/", "/a/"}, urls(Writing(fixture(), cl, Options{Production: true})))
	assert.Equal(t, []string{"/a/"}, urls(FontLoading(fixture(), cl, Options{})))
	assert.Equal(t, []string{"/c/"}, urls(Presentations(fixture(), cl, Options{})))
}

func TestLatestPosts(t *testing.T) {
	assert.Equal(t, []string{"/d/", "/e/"}, urls(LatestPosts(fixture(), 2, Options{})))
	assert.Len(t, LatestPosts(fixture(), 10, Options{Production: true}), 4)
}

func TestNewestDate(t *testing.T) {
	d, err := NewestDate(Posts(fixture(), Options{}))
	require.NoError(t, err)
	assert.Equal(t, day(2020, 6, 9), d)

	_, err = NewestDate(nil)
	assert.ErrorIs(t, err, ErrEmptyCollection)
}

func TestPostCounts(t *testing.T) {
	posts := fixture()
	assert.Equal(t, 2, PostCountForYear(posts, 2020), "draft excluded, deprecated counted")
	assert.Equal(t, []int{1, 1, 1, 1}, YearlyPostCounts(posts, 2018, 2021))
	monthly := MonthlyPostCounts(posts, 2020)
	require.Len(t, monthly, 12)
	assert.Equal(t, 1, monthly[5])
	assert.Equal(t, 0, monthly[0])
	assert.Equal(t, "1,0,2", JoinCounts([]int{1, 0, 2}))
}

func TestSpeakingCounts(t *testing.T) {
	pages := []models.Page{
		{Speaking: map[string]string{"type": "conference", "venue": "Beyond Tellerrand"}},
		{Speaking: map[string]string{"type": "meetup", "venue": "Beyond Tellerrand"}},
		{Speaking: map[string]string{"type": "conference", "venue": "CSSConf"}},
		{},
	}
	assert.Equal(t, 3, SpeakingCount(pages, "type", ""))
	assert.Equal(t, 2, SpeakingCount(pages, "type", "conference"))
	assert.Equal(t, 2, SpeakingUniqueCount(pages, "venue"))
}
