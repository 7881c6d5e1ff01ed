
package parser

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleHTML = `<!doctype html><html lang="en"><head>
<title>Test Page</title>
<style>body { color: red }</style>
</head><body>
<h1>Hello</h1>
<h2>Subtitle</h2>
<p>Go is great for <a href="https://go.dev/">network</a> services.</p>
<script>alert("x")</script>
</body></html>`

func TestExtract(t *testing.T) {
	p := New()
	doc, err := p.Extract(strings.NewReader(sampleHTML), "text/html; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, "Test Page", doc.Title)
	assert.Equal(t, "Hello Subtitle Go is great for network services.", doc.Text)
	assert.Equal(t, 8, doc.WordCount)
	assert.Equal(t, []string{"Hello", "Subtitle"}, doc.Headings)
	assert.Equal(t, []string{"https://go.dev/"}, doc.Links)
}

func TestTextFragment(t *testing.T) {
	p := New()
	assert.Equal(t, "Nice post, thanks!", p.Text("<p>Nice   <strong>post</strong>,\n thanks!</p>"))
	assert.Equal(t, "", p.Text(""))
}

func TestDecodeLatin1(t *testing.T) {
	latin1 := []byte("<p>caf\xe9</p>")
	out, err := Decode(bytes.NewReader(latin1), "text/html; charset=iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "<p>café</p>", string(out))
}

func TestLooksLikeHTML(t *testing.T) {
	assert.True(t, LooksLikeHTML("a <b>bold</b> move"))
	assert.False(t, LooksLikeHTML("a > b < c"))
	assert.False(t, LooksLikeHTML("plain"))
}
