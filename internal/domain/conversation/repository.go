package conversation

import "context"

// Repository defines persistence operations for responses and their items.
// Storage faults surface as platform errors with type DATABASE_ERROR; callers
// do not retry at this layer.
type Repository interface {
	// CreateResponse inserts a new response. Fails with CONFLICT when the
	// public id already exists and with INVALID_REFERENCE when
	// PreviousResponseID does not resolve to a stored response.
	CreateResponse(ctx context.Context, resp *Response) error

	// GetResponse fetches a response by public id. Fails with NOT_FOUND on a
	// miss; no side effects.
	GetResponse(ctx context.Context, publicID string) (*Response, error)

	// CreateInputItem appends an input item under an existing response.
	CreateInputItem(ctx context.Context, item *InputItem) error

	// CreateOutputItem appends an output item under an existing response.
	CreateOutputItem(ctx context.Context, item *OutputItem) error

	// ListInputItems returns the response's input items ordered by creation
	// time ascending.
	ListInputItems(ctx context.Context, responseID string) ([]InputItem, error)

	// ListOutputItems returns the response's output items ordered by creation
	// time ascending.
	ListOutputItems(ctx context.Context, responseID string) ([]OutputItem, error)

	// DeleteResponse removes a response and cascades removal of its items.
	// Reports whether a row existed. Fails with CONFLICT while other
	// responses still reference the target as their previous response.
	DeleteResponse(ctx context.Context, publicID string) (bool, error)

	// UpdateStatus mutates the status column in place, leaving every other
	// field untouched.
	UpdateStatus(ctx context.Context, publicID string, status Status) error

	// UpdateUsage records the token counters once the underlying call
	// completed.
	UpdateUsage(ctx context.Context, publicID string, inputTokens, outputTokens, totalTokens int64) error

	// MarkFailed sets the failed status together with the error payload.
	MarkFailed(ctx context.Context, publicID string, errorPayload string) error
}
