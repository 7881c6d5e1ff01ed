
package collections

import (
	"strconv"
	"strings"

	"indiesite/internal/models"
)

// countable: untagged pages always count.
func countable(p models.Page, skipDeprecated bool) bool {
	if len(p.Tags) == 0 {
		return true
	}
	if skipDeprecated && p.Deprecated {
		return false
	}
	return !p.IsDraft()
}

func PostCountForYear(posts []models.Page, year int) int {
	n := 0
	for _, p := range posts {
		if countable(p, false) && p.Date.Year() == year {
			n++
		}
	}
	return n
}

// YearlyPostCounts counts posts per year from start through end inclusive.
func YearlyPostCounts(posts []models.Page, start, end int) []int {
	var counts []int
	for y := start; y <= end; y++ {
		n := 0
		for _, p := range posts {
			if countable(p, true) && p.Date.Year() == y {
				n++
			}
		}
		counts = append(counts, n)
	}
	return counts
}

func MonthlyPostCounts(posts []models.Page, year int) []int {
	counts := make([]int, 12)
	for _, p := range posts {
		if countable(p, true) && p.Date.Year() == year {
			counts[int(p.Date.Month())-1]++
		}
	}
	return counts
}

// JoinCounts renders counts for sparkline URLs.
func JoinCounts(counts []int) string {
	parts := make([]string, len(counts))
	for i, c := range counts {
		parts[i] = strconv.Itoa(c)
	}
	return strings.Join(parts, ",")
}

// SpeakingCount counts pages with the speaking property set, optionally
// equal to match.
func SpeakingCount(pages []models.Page, prop, match string) int {
	n := 0
	for _, p := range pages {
		v := p.Speaking[prop]
		if v != "" && (match == "" || v == match) {
			n++
		}
	}
	return n
}

func SpeakingUniqueCount(pages []models.Page, prop string) int {
	seen := map[string]struct{}{}
	for _, p := range pages {
		if v := p.Speaking[prop]; v != "" {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}
