package analytics

import (
	"context"

	"github.com/Polceze/AI-Study-Assistant-Project/internal/model"
)

// BreakdownFetcher is the backend aggregation call the breakdown view needs.
// *api.Client satisfies it.
type BreakdownFetcher interface {
	TypeDifficultyBreakdown(ctx context.Context, sessionIDs []int64) (model.Breakdown, error)
}

// FetchBreakdown asks the backend for per-kind and per-difficulty accuracy
// over exactly the filtered subset. The breakdown is not recomputed locally:
// the per-question rows never leave the server, so the client sends the id
// list and receives pre-aggregated counts. An empty subset skips the call.
func FetchBreakdown(ctx context.Context, fetcher BreakdownFetcher, snapshot Snapshot) (model.Breakdown, error) {
	ids := snapshot.SessionIDs()
	if len(ids) == 0 {
		return model.Breakdown{}, nil
	}
	return fetcher.TypeDifficultyBreakdown(ctx, ids)
}
