
package webmention

import "indiesite/internal/models"

// Dedupe collapses interactions sharing a source URL, keeping the first one
// seen. Interactions without a source URL are always kept.
func Dedupe(in []models.Interaction) []models.Interaction {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.Interaction, 0, len(in))
	for _, it := range in {
		if it.SourceURL != "" {
			if _, dup := seen[it.SourceURL]; dup {
				continue
			}
			seen[it.SourceURL] = struct{}{}
		}
		out = append(out, it)
	}
	return out
}
