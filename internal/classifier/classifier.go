
package classifier

import (
	"regexp"
	"strings"

	"indiesite/internal/models"
)

const (
	LabelSpeaking = "speaking"
	LabelWriting  = "writing"
	LabelWebFonts = "web-fonts"
)

var defaultPassThrough = []string{"eleventy", "project", "note", "web-components"}

var postsRe = regexp.MustCompile(`/_posts/`)

type Classifier struct {
	partners    []string
	passThrough []string
}

func New() *Classifier {
	return &Classifier{partners: []string{"filamentgroup.com"}, passThrough: defaultPassThrough}
}

// WithPartners replaces the domains whose external posts still count as
// writing.
func (c *Classifier) WithPartners(domains ...string) *Classifier {
	cp := *c
	cp.partners = append([]string(nil), domains...)
	return &cp
}

// WithPassThrough replaces the tags copied verbatim into labels.
func (c *Classifier) WithPassThrough(tags ...string) *Classifier {
	cp := *c
	cp.passThrough = append([]string(nil), tags...)
	return &cp
}

// Classify derives every label that applies to p. It never fails; a page
// without tags or categories simply gets no labels.
func (c *Classifier) Classify(p models.Page) models.Classification {
	labels := []string{}
	reason := map[string]string{}

	if c.IsSpeaking(p) {
		labels = append(labels, LabelSpeaking)
		if p.HasCategory("presentations") {
			reason[LabelSpeaking] = "presentations category"
		} else {
			reason[LabelSpeaking] = "speaking tag"
		}
	}
	if c.IsWriting(p) {
		labels = append(labels, LabelWriting)
		reason[LabelWriting] = "post outside speaking and notes"
	}
	if c.IsWebFonts(p) {
		labels = append(labels, LabelWebFonts)
		reason[LabelWebFonts] = "font-loading tag or category"
	}
	for _, tag := range c.passThrough {
		if p.HasTag(tag) {
			labels = append(labels, tag)
			reason[tag] = "tag"
		}
	}
	return models.Classification{Labels: labels, Reason: reason}
}

func (c *Classifier) IsSpeaking(p models.Page) bool {
	return p.HasCategory("presentations") || p.HasTag("speaking")
}

// IsWriting matches posts, excluding talks and notes. External posts only
// count when tagged writing or published on a partner domain.
func (c *Classifier) IsWriting(p models.Page) bool {
	if !IsPost(p) {
		return false
	}
	if p.HasTag("external") && !p.HasTag("writing") && !c.onPartner(p.ExternalURL) {
		return false
	}
	return !p.HasTag("speaking") && !p.HasTag("note") && !p.HasCategory("presentations")
}

func (c *Classifier) IsWebFonts(p models.Page) bool {
	return p.HasTag("font-loading") || p.HasCategory("font-loading")
}

func (c *Classifier) onPartner(externalURL string) bool {
	if externalURL == "" {
		return false
	}
	for _, d := range c.partners {
		if d != "" && strings.Contains(externalURL, d) {
			return true
		}
	}
	return false
}

// IsPost reports whether the page's source lives under the posts area.
func IsPost(p models.Page) bool {
	return postsRe.MatchString(filepathSlash(p.InputPath))
}

func filepathSlash(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}
