
package webmention

import (
	"strings"

	"indiesite/internal/models"
)

// ParseKinds splits a comma delimited allow list. An empty list means every
// known kind. Unknown names are kept but can never match an interaction.
func ParseKinds(list string) []models.Kind {
	if strings.TrimSpace(list) == "" {
		return append([]models.Kind(nil), models.AllKinds...)
	}
	var kinds []models.Kind
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			kinds = append(kinds, models.Kind(part))
		}
	}
	return kinds
}

// FilterByKind keeps interactions whose kind is allowed, preserving order.
// A nil allow list admits all known kinds.
func FilterByKind(in []models.Interaction, allowed []models.Kind) []models.Interaction {
	if allowed == nil {
		allowed = models.AllKinds
	}
	set := make(map[models.Kind]struct{}, len(allowed))
	for _, k := range allowed {
		if k.Known() {
			set[k] = struct{}{}
		}
	}
	out := make([]models.Interaction, 0, len(in))
	for _, it := range in {
		if _, ok := set[it.Kind]; ok {
			out = append(out, it)
		}
	}
	return out
}

func IsType(it models.Interaction, kind models.Kind) bool {
	return it.Kind == kind
}

// CountByKind tallies interactions per kind.
func CountByKind(in []models.Interaction) map[models.Kind]int {
	counts := make(map[models.Kind]int)
	for _, it := range in {
		counts[it.Kind]++
	}
	return counts
}
