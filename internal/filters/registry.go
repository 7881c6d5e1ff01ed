
// Package filters exposes the site's template filters as named pure
// functions. The rendering layer looks them up by name; nothing here
// depends on a particular template engine.
package filters

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"indiesite/internal/classifier"
	"indiesite/internal/collections"
	"indiesite/internal/models"
	"indiesite/internal/parser"
	"indiesite/internal/urlnorm"
	"indiesite/internal/webmention"
	"indiesite/pkg/logger"
)

var (
	ErrUnknownFilter = errors.New("unknown filter")
	ErrBadArgument   = errors.New("bad filter argument")
)

// Filter transforms in using optional positional args.
type Filter func(in any, args ...any) (any, error)

// Env carries everything filters read. It is fixed for a build.
type Env struct {
	SiteURL    string
	Source     webmention.Source
	Classifier *classifier.Classifier
	Parser     *parser.Parser
	Now        func() time.Time
	Log        *logger.Logger
}

type Registry struct {
	env     Env
	filters map[string]Filter
}

func New(env Env) *Registry {
	if env.Classifier == nil {
		env.Classifier = classifier.New()
	}
	if env.Parser == nil {
		env.Parser = parser.New()
	}
	if env.Now == nil {
		env.Now = time.Now
	}
	r := &Registry{env: env, filters: map[string]Filter{}}
	r.registerText()
	r.registerDates()
	r.registerURLs()
	r.registerCollections()
	r.registerWebmentions()
	return r
}

func (r *Registry) Register(name string, f Filter) { r.filters[name] = f }

func (r *Registry) Lookup(name string) (Filter, bool) {
	f, ok := r.filters[name]
	return f, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.filters))
	for n := range r.filters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Apply runs the named filter.
func (r *Registry) Apply(name string, in any, args ...any) (any, error) {
	f, ok := r.filters[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, name)
	}
	out, err := f(in, args...)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", name, err)
	}
	return out, nil
}

func (r *Registry) registerText() {
	r.Register("leftpad", func(in any, args ...any) (any, error) {
		n, err := intArg(args, 0, 3)
		if err != nil {
			return nil, err
		}
		return LeftPad(toString(in), n), nil
	})
	r.Register("truncate", func(in any, args ...any) (any, error) {
		n, err := intArg(args, 0, 280)
		if err != nil {
			return nil, err
		}
		return Truncate(toString(in), n), nil
	})
	r.Register("numberString", func(in any, args ...any) (any, error) {
		n, err := toInt(in)
		if err != nil {
			return in, nil
		}
		return NumberString(n), nil
	})
	r.Register("renderNumber", func(in any, args ...any) (any, error) {
		n, err := toInt(in)
		if err != nil {
			return nil, err
		}
		return RenderNumber(int64(n)), nil
	})
	r.Register("round", func(in any, args ...any) (any, error) {
		f, err := toFloat(in)
		if err != nil {
			return nil, err
		}
		digits, err := intArg(args, 0, 2)
		if err != nil {
			return nil, err
		}
		return Round(f, digits), nil
	})
	r.Register("medialengthCleanup", stringFilter(MediaLengthCleanup))
	r.Register("encodeUriComponent", stringFilter(EncodeURIComponent))
	r.Register("htmlEntities", stringFilter(HTMLEntities))
	r.Register("longWordWrap", stringFilter(LongWordWrap))
	r.Register("orphanWrap", stringFilter(OrphanWrap))
	r.Register("emoji", stringFilter(Emoji))
	r.Register("removeNewlines", stringFilter(RemoveNewlines))
	r.Register("sanitizeHTML", stringFilter(SanitizeHTML))
	r.Register("wordcount", func(in any, args ...any) (any, error) {
		text := r.env.Parser.Text(toString(in))
		return WordCount(len(strings.Fields(text))), nil
	})
	r.Register("includes", func(in any, args ...any) (any, error) {
		if len(args) == 0 {
			return false, nil
		}
		return Includes(toStrings(in), toString(args[0])), nil
	})
	r.Register("head", func(in any, args ...any) (any, error) {
		n, err := intArg(args, 0, 0)
		if err != nil {
			return nil, err
		}
		switch v := in.(type) {
		case []models.Page:
			return Head(v, n), nil
		case []models.Interaction:
			return Head(v, n), nil
		case []string:
			return Head(v, n), nil
		case []any:
			return Head(v, n), nil
		}
		return nil, fmt.Errorf("%w: head of %T", ErrBadArgument, in)
	})
}

func (r *Registry) registerDates() {
	r.Register("readableDate", func(in any, args ...any) (any, error) {
		t, err := toTime(in)
		if err != nil {
			return nil, err
		}
		return ReadableDate(t), nil
	})
	r.Register("readableDateFromISO", func(in any, args ...any) (any, error) {
		layout := ""
		if len(args) > 0 {
			layout = toString(args[0])
		}
		return ReadableDateFromISO(toString(in), layout)
	})
	r.Register("timePosted", func(in any, args ...any) (any, error) {
		start, err := toTime(in)
		if err != nil {
			return nil, err
		}
		end := r.env.Now()
		if len(args) > 0 && args[0] != nil {
			if end, err = toTime(args[0]); err != nil {
				return nil, err
			}
		}
		return TimePosted(start, end), nil
	})
}

func (r *Registry) registerURLs() {
	r.Register("absoluteUrl", func(in any, args ...any) (any, error) {
		base := r.env.SiteURL
		if len(args) > 0 && toString(args[0]) != "" {
			base = toString(args[0])
		}
		out, err := urlnorm.AbsoluteURL(toString(in), base)
		if err != nil && r.env.Log != nil {
			r.env.Log.Debugf("absoluteUrl: could not resolve %q against %q: %v", in, base, err)
		}
		return out, nil
	})
	r.Register("hostnameFromUrl", func(in any, args ...any) (any, error) {
		return urlnorm.Hostname(toString(in))
	})
	r.Register("localUrl", func(in any, args ...any) (any, error) {
		return urlnorm.TrimSite(toString(in), r.env.SiteURL), nil
	})
	r.Register("twitterUsernameFromUrl", stringFilter(TwitterUsernameFromURL))
	r.Register("indieAvatar", func(in any, args ...any) (any, error) {
		return IndieAvatar(toString(in), stringArg(args, 0), stringArg(args, 1)), nil
	})
	r.Register("indieAvatarBare", func(in any, args ...any) (any, error) {
		return IndieAvatar(urlnorm.Origin(toString(in)), stringArg(args, 0), "this.parentNode.classList.add('error')"), nil
	})
}

func (r *Registry) registerCollections() {
	r.Register("getFilterCategories", func(in any, args ...any) (any, error) {
		p, ok := in.(models.Page)
		if !ok {
			return nil, fmt.Errorf("%w: want page, got %T", ErrBadArgument, in)
		}
		return r.env.Classifier.Classify(p).String(), nil
	})
	r.Register("rssNewestUpdatedDate", func(in any, args ...any) (any, error) {
		pages, err := toPages(in)
		if err != nil {
			return nil, err
		}
		d, err := collections.NewestDate(pages)
		if err != nil {
			return nil, err
		}
		return d.Format(time.RFC3339), nil
	})
	r.Register("getPostCountForYear", func(in any, args ...any) (any, error) {
		pages, year, err := pagesAndInt(in, args, 0)
		if err != nil {
			return nil, err
		}
		return collections.PostCountForYear(pages, year), nil
	})
	r.Register("getYearlyPostCount", func(in any, args ...any) (any, error) {
		pages, start, err := pagesAndInt(in, args, 2007)
		if err != nil {
			return nil, err
		}
		return collections.JoinCounts(collections.YearlyPostCounts(pages, start, r.env.Now().Year())), nil
	})
	r.Register("getMonthlyPostCount", func(in any, args ...any) (any, error) {
		pages, year, err := pagesAndInt(in, args, r.env.Now().Year())
		if err != nil {
			return nil, err
		}
		return collections.JoinCounts(collections.MonthlyPostCounts(pages, year)), nil
	})
	r.Register("getSpeakingCount", func(in any, args ...any) (any, error) {
		pages, err := toPages(in)
		if err != nil {
			return nil, err
		}
		return collections.SpeakingCount(pages, stringArg(args, 0), stringArg(args, 1)), nil
	})
	r.Register("getSpeakingUniqueCount", func(in any, args ...any) (any, error) {
		pages, err := toPages(in)
		if err != nil {
			return nil, err
		}
		return collections.SpeakingUniqueCount(pages, stringArg(args, 0)), nil
	})
}

func (r *Registry) registerWebmentions() {
	r.Register("webmentionIsType", func(in any, args ...any) (any, error) {
		it, ok := in.(models.Interaction)
		if !ok {
			return nil, fmt.Errorf("%w: want interaction, got %T", ErrBadArgument, in)
		}
		return webmention.IsType(it, models.Kind(stringArg(args, 0))), nil
	})
	// in is the mention store to read, or nil for the build's own.
	r.Register("webmentionsForUrl", func(in any, args ...any) (any, error) {
		src := r.env.Source
		switch v := in.(type) {
		case nil:
		case models.MentionStore:
			src.Store = v
		case webmention.Source:
			src = v
		default:
			return nil, fmt.Errorf("%w: want mention store, got %T", ErrBadArgument, in)
		}
		return src.ForURLTypes(stringArg(args, 0), stringArg(args, 1)), nil
	})
}

func stringFilter(fn func(string) string) Filter {
	return func(in any, args ...any) (any, error) {
		return fn(toString(in)), nil
	}
}

func toString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}

func toStrings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, len(s))
		for i, it := range s {
			out[i] = toString(it)
		}
		return out
	}
	return nil
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not an integer", ErrBadArgument, n)
		}
		return i, nil
	}
	return 0, fmt.Errorf("%w: %T is not an integer", ErrBadArgument, v)
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrBadArgument, n)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: %T is not a number", ErrBadArgument, v)
}

func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := dateparse.ParseAny(t)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %v", ErrBadArgument, err)
		}
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("%w: %T is not a time", ErrBadArgument, v)
}

func toPages(v any) ([]models.Page, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case []models.Page:
		return p, nil
	}
	return nil, fmt.Errorf("%w: want pages, got %T", ErrBadArgument, v)
}

func pagesAndInt(in any, args []any, def int) ([]models.Page, int, error) {
	pages, err := toPages(in)
	if err != nil {
		return nil, 0, err
	}
	n, err := intArg(args, 0, def)
	return pages, n, err
}

func intArg(args []any, i, def int) (int, error) {
	if i >= len(args) || args[i] == nil {
		return def, nil
	}
	return toInt(args[i])
}

func stringArg(args []any, i int) string {
	if i >= len(args) {
		return ""
	}
	return toString(args[i])
}
