package github

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/github-resume/internal/types"
	"github.com/stretchr/testify/assert"
)

type fakeSource struct {
	languages map[string]types.LanguageHistogram
	delays    map[string]time.Duration
	inFlight  atomic.Int32
	peak      atomic.Int32
}

func (f *fakeSource) FetchProfile(context.Context, string) (*types.Profile, error) {
	return &types.Profile{Login: "ada"}, nil
}

func (f *fakeSource) FetchRepositories(context.Context, string, string) ([]types.Repository, error) {
	return nil, nil
}

func (f *fakeSource) FetchLanguageBytes(_ context.Context, _ string, owner, repo string) (types.LanguageHistogram, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	time.Sleep(f.delays[repo])
	langs, ok := f.languages[repo]
	if !ok {
		return nil, &Error{URL: owner + "/" + repo, Status: 404, Message: "Not Found"}
	}
	return langs, nil
}

func repo(name string) types.Repository {
	return types.Repository{Name: name, FullName: "ada/" + name, Owner: types.RepositoryOwner{Login: "ada"}}
}

func TestAggregateLanguages_MergesInRepositoryOrder(t *testing.T) {
	src := &fakeSource{
		languages: map[string]types.LanguageHistogram{
			"slow": {{Language: "Rust", Bytes: 10}, {Language: "Go", Bytes: 5}},
			"fast": {{Language: "Go", Bytes: 10}, {Language: "C", Bytes: 1}},
		},
		delays: map[string]time.Duration{"slow": 20 * time.Millisecond},
	}

	agg := AggregateLanguages(context.Background(), src, "tok", []types.Repository{repo("slow"), repo("fast")}, 4)

	assert.Equal(t, types.LanguageHistogram{
		{Language: "Rust", Bytes: 10},
		{Language: "Go", Bytes: 15},
		{Language: "C", Bytes: 1},
	}, agg.Languages)
	assert.Empty(t, agg.Failed)
}

func TestAggregateLanguages_DegradesPerRepository(t *testing.T) {
	src := &fakeSource{
		languages: map[string]types.LanguageHistogram{
			"ok": {{Language: "Go", Bytes: 100}},
		},
	}

	agg := AggregateLanguages(context.Background(), src, "tok", []types.Repository{repo("missing"), repo("ok")}, 2)

	assert.Equal(t, types.LanguageHistogram{{Language: "Go", Bytes: 100}}, agg.Languages)
	assert.Equal(t, []string{"ada/missing"}, agg.Failed)
}

func TestAggregateLanguages_RespectsConcurrencyLimit(t *testing.T) {
	src := &fakeSource{
		languages: map[string]types.LanguageHistogram{},
		delays:    map[string]time.Duration{},
	}
	var repos []types.Repository
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		src.languages[name] = types.LanguageHistogram{{Language: "Go", Bytes: 1}}
		src.delays[name] = 10 * time.Millisecond
		repos = append(repos, repo(name))
	}

	agg := AggregateLanguages(context.Background(), src, "tok", repos, 2)

	assert.Equal(t, types.LanguageHistogram{{Language: "Go", Bytes: 6}}, agg.Languages)
	assert.LessOrEqual(t, src.peak.Load(), int32(2))
}

func TestAggregateLanguages_Empty(t *testing.T) {
	agg := AggregateLanguages(context.Background(), &fakeSource{}, "tok", nil, 0)
	assert.Empty(t, agg.Languages)
	assert.NotNil(t, agg.Languages)
	assert.Empty(t, agg.Failed)
}

func TestAggregateLanguages_FailedErrorsAreTyped(t *testing.T) {
	src := &fakeSource{languages: map[string]types.LanguageHistogram{}}
	_, err := src.FetchLanguageBytes(context.Background(), "tok", "ada", "x")
	var ghErr *Error
	assert.True(t, errors.As(err, &ghErr))
}
