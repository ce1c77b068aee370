// Package ranking orders repositories and languages for display on a résumé.
package ranking

import (
	"github.com/jonathan/github-resume/internal/types"
)

// Weights for repository scoring. Engagement dominates; completeness and
// freshness only break ties.
const (
	starWeight        = 3.0
	forkWeight        = 2.0
	descriptionBonus  = 5.0
	languageBonus     = 2.0
	recencyNormalizer = 1e12 // milliseconds since epoch -> roughly 1.0-2.0
)

// RepositoryScore computes the composite ranking score for a repository.
func RepositoryScore(repo *types.Repository) float64 {
	score := starWeight*float64(repo.StargazersCount) +
		forkWeight*float64(repo.ForksCount) +
		recencyScore(repo)

	if repo.Description != "" {
		score += descriptionBonus
	}
	if repo.Language != "" {
		score += languageBonus
	}
	return score
}

// recencyScore maps the last update time to a small tie-breaking term.
func recencyScore(repo *types.Repository) float64 {
	if repo.UpdatedAt.IsZero() {
		return 0
	}
	ms := repo.UpdatedAt.UnixMilli()
	if ms < 0 {
		return 0
	}
	return float64(ms) / recencyNormalizer
}
