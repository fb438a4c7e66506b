// Package conversation holds the persisted conversation records: responses
// chained through previous_response_id plus their ordered input and output
// items.
package conversation

import (
	"time"

	"responses-api/internal/domain/metadata"
)

// Status represents the lifecycle of a stored response.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusIncomplete Status = "incomplete"
)

// IsTerminal returns true if the status is a terminal state.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusIncomplete
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Response is one persisted conversational turn. A response with no
// PreviousResponseID is a conversation root. After creation only status,
// usage and error fields are mutated; the parent link never changes.
type Response struct {
	ID                 uint
	PublicID           string
	Object             string
	Status             Status
	Model              string
	PreviousResponseID *string
	Instructions       *string
	MaxOutputTokens    *int64
	Temperature        *float64
	TopP               *float64
	Store              bool
	Metadata           *metadata.Metadata
	UserID             *string
	SafetyIdentifier   *string
	PromptCacheKey     *string
	UsageInputTokens   *int64
	UsageOutputTokens  *int64
	UsageTotalTokens   *int64
	Error              *string // JSON payload when the underlying call failed
	IncompleteDetails  *string // JSON payload
	CreatedAt          time.Time
}

// InputItem is an ordered child record capturing what was sent to the model.
// Immutable after creation; removed when the parent response is deleted.
type InputItem struct {
	ID         uint
	PublicID   string
	ResponseID string
	ItemType   string
	Role       *Role
	Content    string // opaque type-tagged JSON
	CreatedAt  time.Time
}

// OutputItem is an ordered child record capturing what the model produced.
type OutputItem struct {
	ID         uint
	PublicID   string
	ResponseID string
	ItemType   string
	Role       *Role
	Content    string
	Status     string
	CreatedAt  time.Time
}
