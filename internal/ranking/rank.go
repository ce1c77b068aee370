package ranking

import (
	"sort"

	"github.com/jonathan/github-resume/internal/types"
)

// FeaturedProjectCount is how many repositories the résumé features.
const FeaturedProjectCount = 4

// RankedRepository pairs a repository with its score.
type RankedRepository struct {
	Repository types.Repository
	Score      float64
}

// LanguageShare is a language with its share of all bytes.
type LanguageShare struct {
	Language string
	Bytes    int64
	Percent  float64 // 0-100
}

// RankRepositories returns repositories sorted by descending score.
// Equal scores keep input order. The input slice is not modified.
func RankRepositories(repos []types.Repository) []RankedRepository {
	ranked := make([]RankedRepository, len(repos))
	for i := range repos {
		ranked[i] = RankedRepository{
			Repository: repos[i],
			Score:      RepositoryScore(&repos[i]),
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked
}

// TopRepositories returns at most n repositories by descending score.
func TopRepositories(repos []types.Repository, n int) []types.Repository {
	ranked := RankRepositories(repos)
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	top := make([]types.Repository, len(ranked))
	for i, r := range ranked {
		top[i] = r.Repository
	}
	return top
}

// RankLanguages returns languages by descending byte count.
// Ties keep first-seen order.
func RankLanguages(languages types.LanguageHistogram) []LanguageShare {
	total := languages.Total()

	shares := make([]LanguageShare, len(languages))
	for i, e := range languages {
		pct := 0.0
		if total > 0 {
			pct = float64(e.Bytes) / float64(total) * 100
		}
		shares[i] = LanguageShare{Language: e.Language, Bytes: e.Bytes, Percent: pct}
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Bytes > shares[j].Bytes
	})

	return shares
}

// MostStarred returns at most n repositories by descending star count, ties in input order.
func MostStarred(repos []types.Repository, n int) []types.Repository {
	sorted := make([]types.Repository, len(repos))
	copy(sorted, repos)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StargazersCount > sorted[j].StargazersCount
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
