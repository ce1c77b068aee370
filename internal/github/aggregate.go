package github

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/github-resume/internal/types"
)

// DefaultConcurrency bounds parallel language fetches.
const DefaultConcurrency = 8

// Aggregate is the merged language histogram for a set of repositories.
// Failed lists the repositories whose languages could not be fetched;
// they contribute nothing to Languages.
type Aggregate struct {
	Languages types.LanguageHistogram
	Failed    []string
}

// AggregateLanguages fetches language bytes for every repository with at
// most concurrency requests in flight and merges them in repository order,
// so the result does not depend on completion order. A failing repository
// is logged and skipped rather than failing the aggregation.
func AggregateLanguages(ctx context.Context, src DataSource, credential string, repos []types.Repository, concurrency int) *Aggregate {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	perRepo := make([]types.LanguageHistogram, len(repos))
	failed := make([]bool, len(repos))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range repos {
		repo := &repos[i]
		g.Go(func() error {
			languages, err := src.FetchLanguageBytes(gctx, credential, repo.OwnerLogin(), repo.Name)
			if err != nil {
				slog.Warn("language fetch failed, continuing without it",
					"repo", repo.Key(),
					"error", err,
				)
				failed[i] = true
				return nil
			}
			perRepo[i] = languages
			return nil
		})
	}
	_ = g.Wait()

	result := &Aggregate{Languages: types.LanguageHistogram{}}
	for i, languages := range perRepo {
		if failed[i] {
			result.Failed = append(result.Failed, repos[i].Key())
			continue
		}
		result.Languages.Merge(languages)
	}
	return result
}
