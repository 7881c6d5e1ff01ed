
package ioformats

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"gopkg.in/yaml.v3"

	"indiesite/internal/models"
)

var (
	frontMatterDelim = []byte("---")
	datedNameRe      = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)$`)
	pageExts         = map[string]bool{".md": true, ".html": true, ".liquid": true, ".njk": true}
)

// stringList decodes either a single YAML string or a sequence of them.
type stringList []string

func (s *stringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Value != "" {
			*s = stringList{n.Value}
		}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := n.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	return fmt.Errorf("line %d: expected string or list", n.Line)
}

type frontMatter struct {
	Title       string     `yaml:"title"`
	Date        string     `yaml:"date"`
	Tags        stringList `yaml:"tags"`
	Categories  stringList `yaml:"categories"`
	Permalink   string     `yaml:"permalink"`
	Deprecated  bool       `yaml:"deprecated"`
	ExternalURL string     `yaml:"external_url"`
	Metadata    struct {
		Speaking map[string]any `yaml:"speaking"`
	} `yaml:"metadata"`
}

// skipDirs are never content: templates, data, build output and tooling.
var skipDirs = map[string]bool{
	"_includes":    true,
	"_data":        true,
	"_site":        true,
	"node_modules": true,
}

// ReadPages reads every content file under root, using its YAML front
// matter as page metadata. Pages are returned in input path order.
func ReadPages(root string) ([]models.Page, error) {
	var pages []models.Page
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if p != root && (skipDirs[name] || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !pageExts[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		page, err := ParsePage(inputPath(p), data)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		pages = append(pages, page)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].InputPath < pages[j].InputPath })
	return pages, nil
}

// ParsePage builds a page from a content file's bytes. Files without
// front matter yield a page with only path-derived fields.
func ParsePage(inputPath string, data []byte) (models.Page, error) {
	var fm frontMatter
	if raw, ok := splitFrontMatter(data); ok {
		if err := yaml.Unmarshal(raw, &fm); err != nil {
			return models.Page{}, fmt.Errorf("front matter: %w", err)
		}
	}

	base := strings.TrimSuffix(path.Base(inputPath), path.Ext(inputPath))
	page := models.Page{
		InputPath:   inputPath,
		Permalink:   fm.Permalink,
		Title:       fm.Title,
		Tags:        []string(fm.Tags),
		Categories:  []string(fm.Categories),
		Deprecated:  fm.Deprecated,
		ExternalURL: fm.ExternalURL,
	}
	if page.Tags == nil {
		page.Tags = []string{}
	}
	if page.Categories == nil {
		page.Categories = []string{}
	}

	slug := base
	if m := datedNameRe.FindStringSubmatch(base); m != nil {
		slug = m[2]
		if fm.Date == "" {
			fm.Date = m[1]
		}
	}
	if fm.Date != "" {
		d, err := dateparse.ParseIn(fm.Date, time.UTC)
		if err != nil {
			return models.Page{}, fmt.Errorf("date %q: %w", fm.Date, err)
		}
		page.Date = d
	}

	page.URL = permalinkURL(fm.Permalink, path.Dir(inputPath), slug)
	if len(fm.Metadata.Speaking) > 0 {
		page.Speaking = make(map[string]string, len(fm.Metadata.Speaking))
		for k, v := range fm.Metadata.Speaking {
			page.Speaking[k] = fmt.Sprint(v)
		}
	}
	return page, nil
}

// inputPath renders p the way page collections expect it: slash
// separated and explicitly relative.
func inputPath(p string) string {
	p = filepath.ToSlash(filepath.Clean(p))
	if path.IsAbs(p) || strings.HasPrefix(p, "../") {
		return p
	}
	return "./" + p
}

func splitFrontMatter(data []byte) ([]byte, bool) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	if !sc.Scan() || !bytes.Equal(bytes.TrimSpace(sc.Bytes()), frontMatterDelim) {
		return nil, false
	}
	var buf bytes.Buffer
	for sc.Scan() {
		line := sc.Bytes()
		if bytes.Equal(bytes.TrimSpace(line), frontMatterDelim) {
			return buf.Bytes(), true
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}
	return nil, false
}

// permalinkURL turns a permalink (or the file location when none is set)
// into the root-relative URL the page is published at.
func permalinkURL(permalink, dir, slug string) string {
	if permalink == "" {
		var segs []string
		for _, seg := range strings.Split(path.Clean(dir), "/") {
			if seg == "" || seg == "." || seg == ".." || strings.HasPrefix(seg, "_") {
				continue
			}
			segs = append(segs, seg)
		}
		return "/" + path.Join(append(segs, slug)...) + "/"
	}
	u := strings.TrimSuffix(permalink, "index.html")
	if !strings.HasPrefix(u, "/") {
		u = "/" + u
	}
	return u
}
