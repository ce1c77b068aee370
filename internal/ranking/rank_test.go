package ranking

import (
	"testing"
	"time"

	"github.com/jonathan/github-resume/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(year int) types.Timestamp {
	return types.Timestamp{Time: time.Date(year, 6, 1, 0, 0, 0, 0, time.UTC)}
}

func names(repos []types.Repository) []string {
	out := make([]string, len(repos))
	for i, r := range repos {
		out[i] = r.Name
	}
	return out
}

func TestRepositoryScore_Components(t *testing.T) {
	bare := types.Repository{Name: "bare", StargazersCount: 2, ForksCount: 1}
	assert.Equal(t, 8.0, RepositoryScore(&bare))

	complete := bare
	complete.Description = "something"
	complete.Language = "Go"
	assert.Equal(t, 15.0, RepositoryScore(&complete))
}

func TestRepositoryScore_RecencyIsSmall(t *testing.T) {
	repo := types.Repository{UpdatedAt: ts(2024)}
	score := RepositoryScore(&repo)
	assert.Greater(t, score, 1.0)
	assert.Less(t, score, 2.0)
}

func TestRankRepositories_CompletenessBreaksTies(t *testing.T) {
	repos := []types.Repository{
		{Name: "plain", StargazersCount: 10, ForksCount: 2, UpdatedAt: ts(2024)},
		{Name: "documented", StargazersCount: 10, ForksCount: 2, UpdatedAt: ts(2024), Description: "docs", Language: "Go"},
	}

	ranked := RankRepositories(repos)
	require.Len(t, ranked, 2)
	assert.Equal(t, "documented", ranked[0].Repository.Name)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestRankRepositories_EngagementDominates(t *testing.T) {
	repos := []types.Repository{
		{Name: "complete", StargazersCount: 0, Description: "docs", Language: "Go", UpdatedAt: ts(2025)},
		{Name: "popular", StargazersCount: 3, UpdatedAt: ts(2010)},
	}

	top := TopRepositories(repos, 1)
	assert.Equal(t, []string{"popular"}, names(top))
}

func TestRankRepositories_RecencyBreaksRemainingTies(t *testing.T) {
	repos := []types.Repository{
		{Name: "old", StargazersCount: 1, UpdatedAt: ts(2015)},
		{Name: "new", StargazersCount: 1, UpdatedAt: ts(2024)},
	}
	assert.Equal(t, []string{"new", "old"}, names(TopRepositories(repos, 10)))
}

func TestRankRepositories_DoesNotMutateInput(t *testing.T) {
	repos := []types.Repository{
		{Name: "a", StargazersCount: 1},
		{Name: "b", StargazersCount: 5},
	}
	_ = RankRepositories(repos)
	assert.Equal(t, []string{"a", "b"}, names(repos))
}

func TestTopRepositories_Limit(t *testing.T) {
	var repos []types.Repository
	for i := 0; i < 6; i++ {
		repos = append(repos, types.Repository{Name: string(rune('a' + i)), StargazersCount: i})
	}

	top := TopRepositories(repos, FeaturedProjectCount)
	assert.Equal(t, []string{"f", "e", "d", "c"}, names(top))
	assert.Empty(t, TopRepositories(nil, FeaturedProjectCount))
}

func TestRankLanguages_DescendingWithStableTies(t *testing.T) {
	h := types.LanguageHistogram{
		{Language: "Python", Bytes: 500},
		{Language: "Rust", Bytes: 200},
		{Language: "TypeScript", Bytes: 1000},
		{Language: "Go", Bytes: 200},
	}

	shares := RankLanguages(h)
	require.Len(t, shares, 4)
	assert.Equal(t, "TypeScript", shares[0].Language)
	assert.Equal(t, "Python", shares[1].Language)
	assert.Equal(t, "Rust", shares[2].Language)
	assert.Equal(t, "Go", shares[3].Language)
	assert.InDelta(t, 1000.0/1900.0*100, shares[0].Percent, 1e-9)
}

func TestRankLanguages_EmptyAndZero(t *testing.T) {
	assert.Empty(t, RankLanguages(nil))

	shares := RankLanguages(types.LanguageHistogram{{Language: "Go", Bytes: 0}})
	require.Len(t, shares, 1)
	assert.Equal(t, 0.0, shares[0].Percent)
}

func TestMostStarred(t *testing.T) {
	repos := []types.Repository{
		{Name: "a", StargazersCount: 1},
		{Name: "b", StargazersCount: 9},
		{Name: "c", StargazersCount: 9},
	}
	assert.Equal(t, []string{"b", "c"}, names(MostStarred(repos, 2)))
	assert.Equal(t, []string{"a"}, names(repos[:1]))
}
