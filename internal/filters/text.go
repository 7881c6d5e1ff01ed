
package filters

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	"github.com/dustin/go-humanize"
	"github.com/microcosm-cc/bluemonday"

	"indiesite/internal/parser"
)

// LeftPad zero-pads s to length characters. Longer input keeps only its
// trailing length characters.
func LeftPad(s string, length int) string {
	if length <= 0 {
		return ""
	}
	padded := strings.Repeat("0", length) + s
	return padded[len(s):]
}

// Truncate cuts s to n runes, marking the cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + `… <span class="tag-inline">Truncated</span>`
}

var numberWords = []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}

func NumberString(n int) string {
	if n >= 0 && n < len(numberWords) {
		return numberWords[n]
	}
	return strconv.Itoa(n)
}

// RenderNumber formats n with thousands separators.
func RenderNumber(n int64) string {
	return humanize.Comma(n)
}

func Round(n float64, digits int) string {
	if digits < 0 {
		digits = 0
	}
	return strconv.FormatFloat(n, 'f', digits, 64)
}

func MediaLengthCleanup(s string) string {
	first, _, _ := strings.Cut(s, " ")
	return first + `<span aria-hidden="true">m</span><span class="sr-only"> minutes</span>`
}

const upperHex = "0123456789ABCDEF"

// EncodeURIComponent escapes everything except the characters a URI
// component may carry unencoded.
func EncodeURIComponent(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURIUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperHex[c>>4])
		b.WriteByte(upperHex[c&15])
	}
	return b.String()
}

func isURIUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

func HTMLEntities(s string) string {
	return html.EscapeString(s)
}

// TimePosted renders the elapsed time between two dates in days, or in
// years once it passes a year.
func TimePosted(start, end time.Time) string {
	numDays := end.Sub(start).Hours() / 24
	days := int(math.Round(numDays))
	if days < 365 {
		return plural(strconv.Itoa(days), "day", days != 1)
	}
	years, _ := strconv.ParseFloat(strconv.FormatFloat(numDays/365, 'f', 1, 64), 64)
	return plural(strconv.FormatFloat(years, 'f', -1, 64), "year", years != 1)
}

func plural(n, unit string, many bool) string {
	if many {
		return n + " " + unit + "s"
	}
	return n + " " + unit
}

const (
	ReadableDateLayout = "January 02, 2006"
	ISODateLayout      = "02 Jan 2006 at 03:04PM"
)

func ReadableDate(t time.Time) string {
	return t.Format(ReadableDateLayout)
}

// ReadableDateFromISO parses an ISO-ish timestamp and formats it with the
// given Go layout, or ISODateLayout when layout is empty.
func ReadableDateFromISO(s, layout string) (string, error) {
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return "", err
	}
	if layout == "" {
		layout = ISODateLayout
	}
	return t.Format(layout), nil
}

const twitterPrefix = "https://twitter.com/"

// TwitterUsernameFromURL returns "@name" for twitter profile URLs and ""
// for anything else.
func TwitterUsernameFromURL(u string) string {
	if !strings.Contains(u, twitterPrefix) {
		return ""
	}
	return "@" + strings.Replace(u, twitterPrefix, "", 1)
}

var longWords = map[string]bool{
	"domcontentloaded":     true,
	"getelementsbytagname": true,
}

// LongWordWrap wraps long words so they can break inside narrow columns.
// Markup is returned untouched.
func LongWordWrap(s string) string {
	if s == "" || parser.LooksLikeHTML(s) {
		return s
	}
	wrap := func(word string) string {
		if longWords[strings.ToLower(word)] || utf8.RuneCountInString(word) >= 11 {
			return `<span class="long-word">` + word + `</span>`
		}
		return word
	}
	return splitMap(s, []string{" ", "—", "(", ")"}, wrap)
}

// splitMap splits on each separator in turn, innermost last, applying fn
// to the leaves and rejoining with the same separator.
func splitMap(s string, seps []string, fn func(string) string) string {
	if len(seps) == 0 {
		return fn(s)
	}
	parts := strings.Split(s, seps[0])
	for i, p := range parts {
		parts[i] = splitMap(p, seps[1:], fn)
	}
	return strings.Join(parts, seps[0])
}

// OrphanWrap keeps the last two words of each em-dash separated clause
// together.
func OrphanWrap(s string) string {
	clauses := strings.Split(s, "—")
	for i, clause := range clauses {
		words := strings.Split(clause, " ")
		if len(words) <= 1 {
			continue
		}
		after := ""
		if len(words) > 2 {
			after = " "
		}
		last := words[len(words)-1]
		second := words[len(words)-2]
		words = words[:len(words)-2]
		pair := second + " " + last
		if utf8.RuneCountInString(pair) >= 15 {
			after += pair
		} else {
			after += `<span class="prevent-orphan">` + pair + `</span>`
		}
		clauses[i] = strings.Join(words, " ") + after
	}
	return strings.Join(clauses, "\u200b—\u200b")
}

func Emoji(s string) string {
	return `<span aria-hidden="true" class="emoji">` + s + `</span>`
}

func WordCount(words int) string {
	return plural(strconv.Itoa(words), "word", words != 1)
}

// Head returns the first n items, or the last -n items when n is negative.
func Head[T any](items []T, n int) []T {
	if n < 0 {
		if -n > len(items) {
			return items
		}
		return items[len(items)+n:]
	}
	if n > len(items) {
		return items
	}
	return items[:n]
}

func Includes(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func RemoveNewlines(s string) string {
	return strings.ReplaceAll(s, "\n", "")
}

var commentPolicy = newCommentPolicy()

// Links keep only absolute http, https and mailto targets.
func newCommentPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("b", "i", "em", "strong", "a")
	p.AllowAttrs("href").OnElements("a")
	p.RequireParseableURLs(true)
	p.AllowURLSchemes("http", "https", "mailto")
	return p
}

// SanitizeHTML reduces third-party markup (webmention content) to a few
// inline elements and plain links.
func SanitizeHTML(s string) string {
	if s == "" {
		return ""
	}
	return commentPolicy.Sanitize(s)
}

const avatarService = "https://v1.indieweb-avatar.11ty.dev/"

func IndieAvatar(u, classes, onerror string) string {
	if classes == "" {
		classes = "z-avatar"
	}
	src := avatarService + EncodeURIComponent(u) + "/"
	out := fmt.Sprintf(`<img alt="IndieWeb Avatar for %s" class="%s" loading="lazy" decoding="async" src="%s" width="60" height="60"`,
		html.EscapeString(u), html.EscapeString(classes), src)
	if onerror != "" {
		out += fmt.Sprintf(` onerror="%s"`, html.EscapeString(onerror))
	}
	return out + ">"
}
