package responses

import (
	"fmt"

	"responses-api/internal/domain/conversation"
	"responses-api/internal/domain/llm"
	"responses-api/internal/infrastructure/metrics"
)

// TranslationError reports a content item that could not be interpreted as
// any recognized kind, tagged with the offending item's type and position.
type TranslationError struct {
	ItemType string
	ItemID   string
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("cannot translate input item %s of type %q", e.ItemID, e.ItemType)
}

// Warning codes recorded during translation.
const (
	WarnInputItemDropped    = "input_item_dropped"
	WarnToolDropped         = "tool_dropped"
	WarnToolChoiceDowngrade = "tool_choice_downgraded"
	WarnRoleCoerced         = "role_coerced"
)

// TranslationWarning is one recovered lossy-conversion event. The translator
// returns these instead of logging so callers decide how to surface them.
type TranslationWarning struct {
	Code     string
	Message  string
	ItemType string
	ItemID   string
}

// ToChatCompletionRequest flattens the request and its reconstructed
// ancestor history into a single chat-completion request. The conversion is
// intentionally lossy; every dropped or downgraded element is reported as a
// warning. Pure and synchronous.
func (r *ResponseRequest) ToChatCompletionRequest(history []conversation.Response) (llm.ChatCompletionRequest, []TranslationWarning, error) {
	var messages []llm.ChatMessage
	var warnings []TranslationWarning

	// Ancestor instructions become system messages, oldest first.
	for _, ancestor := range history {
		if ancestor.Instructions != nil && *ancestor.Instructions != "" {
			messages = append(messages, llm.ChatMessage{
				Role:    conversation.RoleSystem.String(),
				Content: *ancestor.Instructions,
			})
		}
	}

	if r.Instructions != nil && *r.Instructions != "" {
		messages = append(messages, llm.ChatMessage{
			Role:    conversation.RoleSystem.String(),
			Content: *r.Instructions,
		})
	}

	if r.Input != nil {
		inputMessages, inputWarnings, err := r.Input.toChatMessages()
		if err != nil {
			return llm.ChatCompletionRequest{}, nil, err
		}
		messages = append(messages, inputMessages...)
		warnings = append(warnings, inputWarnings...)
	}

	var tools []llm.ToolDefinition
	for i, tool := range r.Tools {
		if tool.Type != ToolTypeFunction || tool.Function == nil {
			warnings = append(warnings, TranslationWarning{
				Code:     WarnToolDropped,
				Message:  fmt.Sprintf("tool type %q is recognized but not forwarded", tool.Type),
				ItemType: tool.Type,
				ItemID:   fmt.Sprintf("tools[%d]", i),
			})
			metrics.TranslationDropsTotal.WithLabelValues(WarnToolDropped).Inc()
			continue
		}
		def := llm.ToolDefinition{
			Type: ToolTypeFunction,
			Function: llm.ToolFunctionSchema{
				Name:       tool.Function.Name,
				Parameters: tool.Function.Parameters,
			},
		}
		if tool.Function.Description != nil {
			def.Function.Description = *tool.Function.Description
		}
		tools = append(tools, def)
	}

	var toolChoice *llm.ToolChoice
	if r.ToolChoice != nil {
		switch r.ToolChoice.Mode {
		case ToolChoiceAuto:
			toolChoice = &llm.ToolChoice{Mode: llm.ToolChoiceAuto}
		case ToolChoiceNone:
			toolChoice = &llm.ToolChoice{Mode: llm.ToolChoiceNone}
		case ToolChoiceRequired:
			toolChoice = &llm.ToolChoice{Mode: llm.ToolChoiceRequired}
		case ToolChoiceFunction:
			// Named-function forcing is not supported downstream yet.
			toolChoice = &llm.ToolChoice{Mode: llm.ToolChoiceAuto}
			warnings = append(warnings, TranslationWarning{
				Code:    WarnToolChoiceDowngrade,
				Message: fmt.Sprintf("named function choice %q downgraded to auto", r.ToolChoice.FunctionName),
			})
		}
	}

	req := llm.ChatCompletionRequest{
		Model:               r.Model,
		Messages:            messages,
		Tools:               tools,
		ToolChoice:          toolChoice,
		Temperature:         r.Temperature,
		TopP:                r.TopP,
		MaxCompletionTokens: r.MaxOutputTokens,
	}
	if r.Stream != nil {
		req.Stream = *r.Stream
	}
	if r.User != nil {
		req.User = *r.User
	}
	return req, warnings, nil
}

func (in *Input) toChatMessages() ([]llm.ChatMessage, []TranslationWarning, error) {
	if in.Kind == InputKindText {
		return []llm.ChatMessage{{
			Role:    conversation.RoleUser.String(),
			Content: in.Text,
		}}, nil, nil
	}

	var messages []llm.ChatMessage
	var warnings []TranslationWarning
	for i, item := range in.Items {
		itemID := fmt.Sprintf("input[%d]", i)
		switch item.Content.Kind {
		case ContentKindText:
			role := conversation.RoleUser
			if item.Role != nil {
				parsed, recognized := conversation.ParseRole(*item.Role)
				if !recognized {
					warnings = append(warnings, TranslationWarning{
						Code:     WarnRoleCoerced,
						Message:  fmt.Sprintf("unknown role %q coerced to user", *item.Role),
						ItemType: item.Type,
						ItemID:   itemID,
					})
				}
				role = parsed
			}
			// Only system keeps its role; assistant and user alike are sent
			// as user messages in the flat request.
			if role != conversation.RoleSystem {
				role = conversation.RoleUser
			}
			messages = append(messages, llm.ChatMessage{
				Role:    role.String(),
				Content: item.Content.Text,
			})
		case ContentKindImage, ContentKindFile:
			// Recognized but unsupported input classes are dropped, by
			// documented policy.
			warnings = append(warnings, TranslationWarning{
				Code:     WarnInputItemDropped,
				Message:  fmt.Sprintf("%s content is not forwarded to the model", item.Content.Kind),
				ItemType: item.Type,
				ItemID:   itemID,
			})
			metrics.TranslationDropsTotal.WithLabelValues(WarnInputItemDropped).Inc()
		default:
			return nil, nil, &TranslationError{ItemType: item.Type, ItemID: itemID}
		}
	}
	return messages, warnings, nil
}

// ResponseObjectFromCompletion converts a chat-completion result into a
// Responses result. Each choice becomes one completed assistant message
// holding a single text content block; usage counters copy verbatim; fields
// the completion did not populate stay absent.
func ResponseObjectFromCompletion(completion *llm.ChatCompletionResponse) *ResponseObject {
	output := make([]OutputItem, 0, len(completion.Choices))
	for _, choice := range completion.Choices {
		role := conversation.RoleAssistant
		output = append(output, OutputItem{
			ID:     NewMessageID(),
			Type:   "message",
			Status: string(conversation.StatusCompleted),
			Role:   &role,
			Content: []OutputContent{{
				Type: OutputContentText,
				Text: llm.TextContent(choice.Message.Content),
			}},
		})
	}

	store := true
	obj := &ResponseObject{
		ID:        completion.ID,
		Object:    "response",
		CreatedAt: completion.Created,
		Model:     completion.Model,
		Status:    conversation.StatusCompleted,
		Store:     &store,
		Output:    output,
	}
	if completion.Usage != nil {
		obj.Usage = &Usage{
			InputTokens:  completion.Usage.PromptTokens,
			OutputTokens: completion.Usage.CompletionTokens,
			TotalTokens:  completion.Usage.TotalTokens,
		}
	}
	return obj
}
