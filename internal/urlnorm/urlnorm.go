
package urlnorm

import (
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/purell"
)

const normalizeFlags = purell.FlagLowercaseScheme |
	purell.FlagLowercaseHost |
	purell.FlagUppercaseEscapes |
	purell.FlagDecodeUnnecessaryEscapes |
	purell.FlagRemoveDefaultPort |
	purell.FlagRemoveFragment |
	purell.FlagRemoveDotSegments |
	purell.FlagRemoveDuplicateSlashes |
	purell.FlagRemoveTrailingSlash

// Normalize derives the base URL key used to group webmentions with the
// page they target. Scheme and host case, default ports, dot segments,
// duplicate and trailing slashes, query and fragment are all dropped, and
// http is folded into https. Unparseable input is returned unchanged.
func Normalize(raw string) string {
	clean, err := purell.NormalizeURLString(protectSlashes(raw), normalizeFlags)
	if err != nil {
		return raw
	}

	u, err := url.Parse(clean)
	if err != nil {
		return restoreSlashes(clean)
	}
	u.RawQuery = ""
	u.ForceQuery = false
	if u.Scheme == "http" {
		u.Scheme = "https"
	}
	return restoreSlashes(u.String())
}

// slashSentinel stands in for an encoded slash while purell works on the
// path, which would otherwise decode "a%2Fb" into two segments. It is the
// escaped form of U+E000, a private-use rune that url.URL re-escapes.
const slashSentinel = "%EE%80%80"

func protectSlashes(raw string) string {
	end := strings.IndexAny(raw, "?#")
	if end < 0 {
		end = len(raw)
	}
	path := strings.ReplaceAll(raw[:end], "%2F", slashSentinel)
	path = strings.ReplaceAll(path, "%2f", slashSentinel)
	return path + raw[end:]
}

func restoreSlashes(s string) string {
	return strings.ReplaceAll(s, slashSentinel, "%2F")
}

// Equal reports whether two URLs share a base URL key.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// AbsoluteURL resolves ref against base. When either fails to parse the
// input is returned as is.
func AbsoluteURL(ref, base string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return ref, err
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref, err
	}
	return b.ResolveReference(r).String(), nil
}

var errNoHost = errors.New("url has no host")

func Hostname(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", errNoHost
	}
	return u.Hostname(), nil
}

// Origin returns scheme://host for raw, or raw itself when it has none.
func Origin(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}
	return u.Scheme + "://" + u.Host
}

// TrimSite strips the site prefix from an absolute URL, leaving a
// root-relative path.
func TrimSite(absolute, site string) string {
	site = strings.TrimSuffix(site, "/")
	if site == "" {
		return absolute
	}
	return strings.Replace(absolute, site, "", 1)
}
