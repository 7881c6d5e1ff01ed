
package parser

import (
	"bytes"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"
)

// Document is the plain-text view of an HTML fragment or page.
type Document struct {
	Title     string   `json:"title,omitempty"`
	Text      string   `json:"text,omitempty"`
	WordCount int      `json:"wordCount"`
	Headings  []string `json:"headings,omitempty"`
	Links     []string `json:"links,omitempty"`
}

type Parser struct{}

func New() *Parser { return &Parser{} }

var whitespaceRe = regexp.MustCompile(`\s+`)

// Decode converts r to UTF-8 using the declared content type and any
// charset hints in the markup.
func Decode(r io.Reader, contentType string) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	enc, _, _ := charset.DetermineEncoding(data, contentType)
	utf8data, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		// fallback: if already utf-8, continue
		if !utf8.Valid(data) {
			return nil, err
		}
		utf8data = data
	}
	return utf8data, nil
}

// Extract reads an HTML document or fragment and returns its text content
// with scripts and styles removed.
func (p *Parser) Extract(r io.Reader, contentType string) (Document, error) {
	data, err := Decode(r, contentType)
	if err != nil {
		return Document{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return Document{}, err
	}

	// Remove script & style
	doc.Find("script,noscript,style,template").Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	out := Document{
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
	}
	doc.Find("h1,h2,h3").Each(func(i int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			out.Headings = append(out.Headings, t)
		}
	})
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		if href := strings.TrimSpace(s.AttrOr("href", "")); href != "" {
			out.Links = append(out.Links, href)
		}
	})

	body := doc.Find("body")
	body.Find("title").Remove()
	out.Text = collapse(body.Text())
	if out.Text != "" {
		out.WordCount = len(strings.Fields(out.Text))
	}
	return out, nil
}

// Text returns the collapsed text of an HTML fragment. Markup that cannot
// be parsed is returned with whitespace collapsed.
func (p *Parser) Text(fragment string) string {
	doc, err := p.Extract(strings.NewReader(fragment), "text/html; charset=utf-8")
	if err != nil {
		return collapse(fragment)
	}
	return doc.Text
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// LooksLikeHTML reports whether s contains a tag opener followed by a
// closer.
func LooksLikeHTML(s string) bool {
	open := strings.Index(s, "<")
	return open > -1 && strings.LastIndex(s, ">") > open
}
