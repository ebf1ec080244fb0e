package search

import "github.com/trovato-shop/trovato/internal/domain"

// mergeRanked orders candidates by the model's ranking, then appends whatever
// the model left out in original candidate order. Indices outside the
// candidate set and repeats are ignored.
func mergeRanked(candidates []domain.Item, ranked []int, limit int) []domain.Match {
	matches := make([]domain.Match, 0, len(candidates))
	taken := make(map[int]bool, len(candidates))

	for _, idx := range ranked {
		if idx < 0 || idx >= len(candidates) || taken[idx] {
			continue
		}
		taken[idx] = true
		matches = append(matches, domain.Match{Item: candidates[idx], Source: domain.RankVisual})
	}

	for i, it := range candidates {
		if taken[i] {
			continue
		}
		matches = append(matches, domain.Match{Item: it, Source: domain.RankUnranked})
	}

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
