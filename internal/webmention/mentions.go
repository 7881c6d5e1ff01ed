
package webmention

import (
	"indiesite/internal/models"
	"indiesite/internal/urlnorm"
)

// Source is a read-only view over one build's webmention data.
type Source struct {
	Store  models.MentionStore
	Blocks models.BlockList
}

func NewSource(store models.MentionStore, blocks models.BlockList) Source {
	return Source{Store: store, Blocks: blocks}
}

// ForURL selects the interactions relevant to the page at url, restricted
// to kinds (nil for all), with blocked sources and duplicate sources
// removed, oldest first.
func (s Source) ForURL(url string, kinds []models.Kind) []models.Interaction {
	if url == "" {
		return []models.Interaction{}
	}
	key := urlnorm.Normalize(url)
	raw := s.Store.ForTarget(key)
	if len(raw) == 0 {
		return []models.Interaction{}
	}

	matched := FilterBlocked(FilterByKind(raw, kinds), s.Blocks)
	onTarget := matched[:0]
	for _, it := range matched {
		if urlnorm.Normalize(it.TargetURL) == key {
			onTarget = append(onTarget, it)
		}
	}
	return SortOldestFirst(Dedupe(onTarget))
}

// ForURLTypes is ForURL with the comma delimited kind list used by markup.
func (s Source) ForURLTypes(url, types string) []models.Interaction {
	var kinds []models.Kind
	if types != "" {
		kinds = ParseKinds(types)
	}
	return s.ForURL(url, kinds)
}
