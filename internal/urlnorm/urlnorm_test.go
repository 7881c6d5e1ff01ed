
package urlnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert := assert.New(t)

	fixtures := []struct {
		orig  string
		clean string
	}{
		{orig: "", clean: ""},
		{orig: "asdf", clean: "asdf"},
		{orig: "/web/font-loading/", clean: "/web/font-loading"},
		{orig: "https://www.zachleat.com/web/font-loading/", clean: "https://www.zachleat.com/web/font-loading"},
		{orig: "HTTPS://WWW.Zachleat.com:443/web/font-loading/", clean: "https://www.zachleat.com/web/font-loading"},
		{orig: "http://www.zachleat.com/web/font-loading/", clean: "https://www.zachleat.com/web/font-loading"},
		{orig: "https://www.zachleat.com/web/font-loading/?utm_source=x&a=1", clean: "https://www.zachleat.com/web/font-loading"},
		{orig: "https://www.zachleat.com/web/font-loading/#comments", clean: "https://www.zachleat.com/web/font-loading"},
		{orig: "https://example.com/foo//bar/", clean: "https://example.com/foo/bar"},
		{orig: "https://example.com/foo/./bar/baz/../qux", clean: "https://example.com/foo/bar/qux"},
		{orig: "https://example.com/", clean: "https://example.com"},
		{orig: "https://x.com/a%2Fb/", clean: "https://x.com/a%2Fb"},
		{orig: "https://x.com/a%2fb/?q=%2F", clean: "https://x.com/a%2Fb"},
		{orig: "https://x.com/a%7Eb/", clean: "https://x.com/a~b"},
	}

	for _, fix := range fixtures {
		assert.Equal(fix.clean, Normalize(fix.orig), fix.orig)
	}
}

func TestNormalizeFailsOpen(t *testing.T) {
	for _, raw := range []string{"%zz", "://missing-scheme", "http://[::1"} {
		assert.Equal(t, raw, Normalize(raw))
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, raw := range []string{
		"HTTP://Example.com:80/a/../b/?q=1#f",
		"/relative/path/",
		"https://www.zachleat.com/web/",
	} {
		once := Normalize(raw)
		assert.Equal(t, once, Normalize(once), raw)
	}
}

func TestEncodedSlashKeepsResourcesApart(t *testing.T) {
	assert.False(t, Equal("https://x.com/a%2Fb/", "https://x.com/a/b/"))
	assert.True(t, Equal("https://x.com/a%2Fb", "https://x.com/a%2fb/"))
	assert.Equal(t, Normalize("https://x.com/a%2Fb/"), Normalize(Normalize("https://x.com/a%2Fb/")))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("http://example.com/a/", "https://EXAMPLE.com/a#x"))
	assert.False(t, Equal("https://example.com/a", "https://example.com/b"))
}

func TestAbsoluteURL(t *testing.T) {
	got, err := AbsoluteURL("/web/foo/", "https://www.zachleat.com")
	require.NoError(t, err)
	assert.Equal(t, "https://www.zachleat.com/web/foo/", got)

	got, err = AbsoluteURL("https://other.example/x", "https://www.zachleat.com")
	require.NoError(t, err)
	assert.Equal(t, "https://other.example/x", got)

	got, err = AbsoluteURL("%zz", "https://www.zachleat.com")
	assert.Error(t, err)
	assert.Equal(t, "%zz", got)
}

func TestHostnameAndOrigin(t *testing.T) {
	host, err := Hostname("https://twitter.com:443/zachleat")
	require.NoError(t, err)
	assert.Equal(t, "twitter.com", host)

	_, err = Hostname("not a url")
	assert.Error(t, err)

	assert.Equal(t, "https://example.com", Origin("https://example.com/a/b?c"))
	assert.Equal(t, "example", Origin("example"))
}

func TestTrimSite(t *testing.T) {
	assert.Equal(t, "/web/foo/", TrimSite("https://www.zachleat.com/web/foo/", "https://www.zachleat.com/"))
	assert.Equal(t, "https://other.example/", TrimSite("https://other.example/", "https://www.zachleat.com"))
}
