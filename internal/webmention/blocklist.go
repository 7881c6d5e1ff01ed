
package webmention

import (
	"strings"

	"indiesite/internal/models"
)

// IsBlocked reports whether sourceURL starts with, or contains, any entry
// of the block list. The containment test ignores the entry's scheme, so
// "https://spam.example" also blocks "https://ok.example/ref/spam.example".
// Empty source URLs and empty entries never match.
func IsBlocked(sourceURL string, blocks models.BlockList) bool {
	if sourceURL == "" {
		return false
	}
	for _, entry := range blocks {
		if entry == "" {
			continue
		}
		if strings.HasPrefix(sourceURL, entry) {
			return true
		}
		if bare := stripScheme(entry); bare != "" && strings.Contains(sourceURL, bare) {
			return true
		}
	}
	return false
}

func stripScheme(entry string) string {
	if i := strings.Index(entry, "://"); i >= 0 {
		return entry[i+3:]
	}
	return entry
}

// FilterBlocked drops every interaction whose source is blocked.
func FilterBlocked(in []models.Interaction, blocks models.BlockList) []models.Interaction {
	out := make([]models.Interaction, 0, len(in))
	for _, it := range in {
		if IsBlocked(it.SourceURL, blocks) {
			continue
		}
		out = append(out, it)
	}
	return out
}
