package responses

import (
	"encoding/json"
	"fmt"

	"responses-api/internal/domain/conversation"
	"responses-api/internal/domain/metadata"
)

// ResponseObject is the Responses API result shape. Fields the source of a
// conversion did not populate stay nil: absence is round-trippably distinct
// from an empty container.
type ResponseObject struct {
	ID                 string                 `json:"id"`
	Object             string                 `json:"object"`
	CreatedAt          int64                  `json:"created_at"`
	Model              string                 `json:"model"`
	Status             conversation.Status    `json:"status"`
	PreviousResponseID *string                `json:"previous_response_id,omitempty"`
	Instructions       *string                `json:"instructions,omitempty"`
	MaxOutputTokens    *int64                 `json:"max_output_tokens,omitempty"`
	Temperature        *float64               `json:"temperature,omitempty"`
	TopP               *float64               `json:"top_p,omitempty"`
	Store              *bool                  `json:"store,omitempty"`
	Metadata           *metadata.Metadata     `json:"metadata,omitempty"`
	User               *string                `json:"user,omitempty"`
	SafetyIdentifier   *string                `json:"safety_identifier,omitempty"`
	PromptCacheKey     *string                `json:"prompt_cache_key,omitempty"`
	Tools              []Tool                 `json:"tools,omitempty"`
	ToolChoice         *ToolChoice            `json:"tool_choice,omitempty"`
	ParallelToolCalls  *bool                  `json:"parallel_tool_calls,omitempty"`
	Output             []OutputItem           `json:"output"`
	Error              *ResponseError         `json:"error,omitempty"`
	IncompleteDetails  *IncompleteDetails     `json:"incomplete_details,omitempty"`
	Usage              *Usage                 `json:"usage,omitempty"`
	Reasoning          *Reasoning             `json:"reasoning,omitempty"`
	Truncation         *string                `json:"truncation,omitempty"`
	Verbosity          *string                `json:"verbosity,omitempty"`
}

// OutputItem is one produced item, usually an assistant message.
type OutputItem struct {
	ID      string            `json:"id"`
	Type    string            `json:"type"`
	Status  string            `json:"status"`
	Role    *conversation.Role `json:"role,omitempty"`
	Content []OutputContent   `json:"content,omitempty"`
}

// Output content kinds recognized on the wire.
const (
	OutputContentText     = "output_text"
	OutputContentToolCall = "tool_call"
)

// OutputToolCall carries a produced tool invocation.
type OutputToolCall struct {
	ID       string `json:"id"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

// OutputContent is one content block, discriminated by the wire "type"
// field. Annotations stays nil when the source had none.
type OutputContent struct {
	Type        string
	Text        string
	Annotations []json.RawMessage
	ToolCall    *OutputToolCall
}

type outputContentWire struct {
	Type        string            `json:"type"`
	Text        *string           `json:"text,omitempty"`
	Annotations []json.RawMessage `json:"annotations,omitempty"`
	ToolCall    *OutputToolCall   `json:"tool_call,omitempty"`
}

// UnmarshalJSON selects the content variant by the type discriminant.
func (oc *OutputContent) UnmarshalJSON(data []byte) error {
	var wire outputContentWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	oc.Type = wire.Type
	oc.Text = ""
	oc.Annotations = nil
	oc.ToolCall = nil

	switch wire.Type {
	case OutputContentText:
		if wire.Text != nil {
			oc.Text = *wire.Text
		}
		oc.Annotations = wire.Annotations
	case OutputContentToolCall:
		if wire.ToolCall == nil {
			return fmt.Errorf("tool_call content missing payload")
		}
		oc.ToolCall = wire.ToolCall
	}
	return nil
}

// MarshalJSON renders the resolved variant with its discriminant.
func (oc OutputContent) MarshalJSON() ([]byte, error) {
	wire := outputContentWire{Type: oc.Type}
	switch oc.Type {
	case OutputContentText:
		text := oc.Text
		wire.Text = &text
		wire.Annotations = oc.Annotations
	case OutputContentToolCall:
		wire.ToolCall = oc.ToolCall
	}
	return json.Marshal(wire)
}

// ResponseError is the machine readable failure payload.
type ResponseError struct {
	Type    string  `json:"type"`
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Param   *string `json:"param,omitempty"`
}

// IncompleteDetails explains a truncated response.
type IncompleteDetails struct {
	Type   string  `json:"type"`
	Reason *string `json:"reason,omitempty"`
}

// Usage aggregates token accounting.
type Usage struct {
	InputTokens         int64         `json:"input_tokens"`
	OutputTokens        int64         `json:"output_tokens"`
	TotalTokens         int64         `json:"total_tokens"`
	InputTokensDetails  *TokenDetails `json:"input_tokens_details,omitempty"`
	OutputTokensDetails *TokenDetails `json:"output_tokens_details,omitempty"`
}

// TokenDetails refines a usage counter.
type TokenDetails struct {
	CachedTokens    *int64 `json:"cached_tokens,omitempty"`
	ReasoningTokens *int64 `json:"reasoning_tokens,omitempty"`
}

// Reasoning carries reasoning configuration echoes.
type Reasoning struct {
	Effort           *string `json:"effort,omitempty"`
	Summary          *string `json:"summary,omitempty"`
	EncryptedContent *string `json:"encrypted_content,omitempty"`
}

// DeleteResponseResult acknowledges a delete.
type DeleteResponseResult struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// InputItemResource is a stored input item as listed over the API.
type InputItemResource struct {
	ID        string             `json:"id"`
	Type      string             `json:"type"`
	Role      *conversation.Role `json:"role,omitempty"`
	Content   json.RawMessage    `json:"content,omitempty"`
	CreatedAt int64              `json:"created_at"`
}

// InputItemList is the list envelope for stored input items.
type InputItemList struct {
	Object  string              `json:"object"`
	Data    []InputItemResource `json:"data"`
	FirstID string              `json:"first_id"`
	LastID  string              `json:"last_id"`
	HasMore bool                `json:"has_more"`
}
