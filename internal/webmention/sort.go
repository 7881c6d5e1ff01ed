
package webmention

import (
	"slices"

	"indiesite/internal/models"
)

// SortOldestFirst returns a copy ordered by SortKey ascending. Equal keys
// keep their input order so rebuilds over unchanged data are identical.
func SortOldestFirst(in []models.Interaction) []models.Interaction {
	out := slices.Clone(in)
	if out == nil {
		out = []models.Interaction{}
	}
	slices.SortStableFunc(out, func(a, b models.Interaction) int {
		return a.SortKey().Compare(b.SortKey())
	})
	return out
}
