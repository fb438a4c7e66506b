package conversation

import (
	"context"

	"github.com/rs/zerolog"

	"responses-api/internal/infrastructure/metrics"
	"responses-api/internal/utils/platformerrors"
)

// Reconstructor walks parent links to rebuild the ancestor chain of a
// response.
type Reconstructor struct {
	repo Repository
	log  zerolog.Logger
}

// NewReconstructor constructs the chain walker.
func NewReconstructor(repo Repository, log zerolog.Logger) *Reconstructor {
	return &Reconstructor{
		repo: repo,
		log:  log.With().Str("component", "chain-reconstructor").Logger(),
	}
}

// Chain returns the full ancestor chain of responseID in chronological
// (oldest-first) order, the given response included. A lookup miss terminates
// the walk: a missing root and a dangling parent reference both yield the
// visited prefix rather than an error. Lookups are sequential; each step
// needs the previous step's parent id. Cycles cannot occur because a response
// may only reference a strictly earlier, pre-existing response and is never
// re-parented.
func (r *Reconstructor) Chain(ctx context.Context, responseID string) ([]Response, error) {
	var visited []Response
	next := &responseID

	for next != nil {
		resp, err := r.repo.GetResponse(ctx, *next)
		if err != nil {
			if platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound) {
				if len(visited) > 0 {
					r.log.Warn().
						Str("response_id", responseID).
						Str("missing_id", *next).
						Msg("chain walk hit a dangling parent reference, returning visited prefix")
				}
				break
			}
			return nil, err
		}
		visited = append(visited, *resp)
		next = resp.PreviousResponseID
	}

	// Visitation order is newest-first; reverse for chronological order.
	for i, j := 0, len(visited)-1; i < j; i, j = i+1, j-1 {
		visited[i], visited[j] = visited[j], visited[i]
	}

	metrics.ChainLength.Observe(float64(len(visited)))
	return visited, nil
}
