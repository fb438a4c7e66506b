package responses

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"responses-api/internal/domain/conversation"
	"responses-api/internal/domain/llm"
	"responses-api/internal/infrastructure/metrics"
	"responses-api/internal/utils/platformerrors"
)

// Service exposes the Responses API operations.
type Service interface {
	Create(ctx context.Context, req *ResponseRequest) (*ResponseObject, error)
	Get(ctx context.Context, publicID string) (*ResponseObject, error)
	Delete(ctx context.Context, publicID string) (*DeleteResponseResult, error)
	ListInputItems(ctx context.Context, publicID string) (*InputItemList, error)
}

// ServiceImpl sequences store, chain reconstruction, translation, the model
// call and persistence. All operations are synchronous; retries, if any,
// belong to callers above this layer.
type ServiceImpl struct {
	store    conversation.Repository
	chain    *conversation.Reconstructor
	provider llm.Provider
	log      zerolog.Logger
	now      func() time.Time
}

// NewService wires dependencies.
func NewService(
	store conversation.Repository,
	chain *conversation.Reconstructor,
	provider llm.Provider,
	log zerolog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		store:    store,
		chain:    chain,
		provider: provider,
		log:      log.With().Str("component", "responses-service").Logger(),
		now:      time.Now,
	}
}

// Create runs a complete response lifecycle: persist the in_progress record
// and its input items, rebuild the ancestor chain, translate, call the
// model, persist the outcome.
func (s *ServiceImpl) Create(ctx context.Context, req *ResponseRequest) (*ResponseObject, error) {
	stored := req.Store == nil || *req.Store
	created := s.now()

	record := s.newRecord(req, created)

	if stored {
		if err := s.store.CreateResponse(ctx, record); err != nil {
			return nil, err
		}
		if err := s.persistInputItems(ctx, record.PublicID, req.Input, created); err != nil {
			return s.failResponse(ctx, record, err)
		}
	}

	var history []conversation.Response
	if req.PreviousResponseID != nil {
		var err error
		history, err = s.chain.Chain(ctx, *req.PreviousResponseID)
		if err != nil {
			if stored {
				return s.failResponse(ctx, record, err)
			}
			return nil, err
		}
	}

	chatReq, warnings, err := req.ToChatCompletionRequest(history)
	if err != nil {
		if stored {
			return s.failResponse(ctx, record, err)
		}
		return nil, err
	}
	for _, warning := range warnings {
		s.log.Warn().
			Str("response_id", record.PublicID).
			Str("code", warning.Code).
			Str("item", warning.ItemID).
			Msg(warning.Message)
	}

	start := s.now()
	completion, err := s.provider.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		metrics.LLMCallDuration.WithLabelValues(req.Model, "error").Observe(time.Since(start).Seconds())
		if stored {
			return s.failResponse(ctx, record, err)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerDomain,
			platformerrors.ErrorTypeExternal,
			"chat completion call failed",
			err,
			"1f2f7a84-4f0e-4f43-9f55-2f1f0db0c6a1",
		)
	}
	metrics.LLMCallDuration.WithLabelValues(req.Model, "ok").Observe(time.Since(start).Seconds())

	result := ResponseObjectFromCompletion(completion)
	s.echoRequest(result, req, record, created, stored)

	if stored {
		if err := s.persistOutcome(ctx, record.PublicID, result, created); err != nil {
			return s.failResponse(ctx, record, err)
		}
	}

	return result, nil
}

// Get hydrates a stored response with its output items.
func (s *ServiceImpl) Get(ctx context.Context, publicID string) (*ResponseObject, error) {
	record, err := s.store.GetResponse(ctx, publicID)
	if err != nil {
		return nil, err
	}

	items, err := s.store.ListOutputItems(ctx, publicID)
	if err != nil {
		return nil, err
	}

	return objectFromRecord(record, items)
}

// Delete removes the response and, by cascade, its items. The store rejects
// the delete while later responses still chain onto this one.
func (s *ServiceImpl) Delete(ctx context.Context, publicID string) (*DeleteResponseResult, error) {
	existed, err := s.store.DeleteResponse(ctx, publicID)
	if err != nil {
		return nil, err
	}
	return &DeleteResponseResult{
		ID:      publicID,
		Object:  "response",
		Deleted: existed,
	}, nil
}

// ListInputItems returns the stored input items in creation order.
func (s *ServiceImpl) ListInputItems(ctx context.Context, publicID string) (*InputItemList, error) {
	if _, err := s.store.GetResponse(ctx, publicID); err != nil {
		return nil, err
	}

	items, err := s.store.ListInputItems(ctx, publicID)
	if err != nil {
		return nil, err
	}

	list := &InputItemList{
		Object: "list",
		Data:   make([]InputItemResource, 0, len(items)),
	}
	for _, item := range items {
		list.Data = append(list.Data, InputItemResource{
			ID:        item.PublicID,
			Type:      item.ItemType,
			Role:      item.Role,
			Content:   json.RawMessage(item.Content),
			CreatedAt: item.CreatedAt.Unix(),
		})
	}
	if len(list.Data) > 0 {
		list.FirstID = list.Data[0].ID
		list.LastID = list.Data[len(list.Data)-1].ID
	}
	return list, nil
}

func (s *ServiceImpl) newRecord(req *ResponseRequest, created time.Time) *conversation.Response {
	stored := req.Store == nil || *req.Store
	return &conversation.Response{
		PublicID:           NewResponseID(),
		Object:             "response",
		Status:             conversation.StatusInProgress,
		Model:              req.Model,
		PreviousResponseID: req.PreviousResponseID,
		Instructions:       req.Instructions,
		MaxOutputTokens:    req.MaxOutputTokens,
		Temperature:        req.Temperature,
		TopP:               req.TopP,
		Store:              stored,
		Metadata:           req.Metadata,
		UserID:             req.User,
		SafetyIdentifier:   req.SafetyIdentifier,
		PromptCacheKey:     req.PromptCacheKey,
		CreatedAt:          created,
	}
}

// persistInputItems writes one item row per input element. Timestamps step
// monotonically from the response creation time so the created_at ordering
// is total.
func (s *ServiceImpl) persistInputItems(ctx context.Context, responseID string, input *Input, base time.Time) error {
	if input == nil {
		return nil
	}

	put := func(seq int, itemType string, role *conversation.Role, content interface{}) error {
		payload, err := json.Marshal(content)
		if err != nil {
			return err
		}
		return s.store.CreateInputItem(ctx, &conversation.InputItem{
			PublicID:   NewInputItemID(),
			ResponseID: responseID,
			ItemType:   itemType,
			Role:       role,
			Content:    string(payload),
			CreatedAt:  base.Add(time.Duration(seq+1) * time.Microsecond),
		})
	}

	if input.Kind == InputKindText {
		role := conversation.RoleUser
		return put(0, "message", &role, map[string]string{"text": input.Text})
	}

	for i, item := range input.Items {
		var role *conversation.Role
		if item.Role != nil {
			parsed, recognized := conversation.ParseRole(*item.Role)
			if !recognized {
				s.log.Warn().
					Str("response_id", responseID).
					Str("role", *item.Role).
					Msg("unknown input item role coerced to user")
			}
			role = &parsed
		}
		if err := put(i, item.Type, role, item.Content.wireForm()); err != nil {
			return err
		}
	}
	return nil
}

func (s *ServiceImpl) persistOutcome(ctx context.Context, responseID string, result *ResponseObject, base time.Time) error {
	for i, item := range result.Output {
		payload, err := json.Marshal(item.Content)
		if err != nil {
			return err
		}
		out := &conversation.OutputItem{
			PublicID:   item.ID,
			ResponseID: responseID,
			ItemType:   item.Type,
			Role:       item.Role,
			Content:    string(payload),
			Status:     item.Status,
			CreatedAt:  s.now().Add(time.Duration(i+1) * time.Microsecond),
		}
		if err := s.store.CreateOutputItem(ctx, out); err != nil {
			return err
		}
	}

	if result.Usage != nil {
		if err := s.store.UpdateUsage(ctx, responseID, result.Usage.InputTokens, result.Usage.OutputTokens, result.Usage.TotalTokens); err != nil {
			return err
		}
	}

	return s.store.UpdateStatus(ctx, responseID, conversation.StatusCompleted)
}

// echoRequest overlays identity and request echoes on the converted result.
func (s *ServiceImpl) echoRequest(result *ResponseObject, req *ResponseRequest, record *conversation.Response, created time.Time, stored bool) {
	result.ID = record.PublicID
	result.CreatedAt = created.Unix()
	result.Model = req.Model
	result.PreviousResponseID = req.PreviousResponseID
	result.Instructions = req.Instructions
	result.MaxOutputTokens = req.MaxOutputTokens
	result.Temperature = req.Temperature
	result.TopP = req.TopP
	result.Store = &stored
	result.Metadata = req.Metadata
	result.User = req.User
	result.SafetyIdentifier = req.SafetyIdentifier
	result.PromptCacheKey = req.PromptCacheKey
	result.Tools = req.Tools
	result.ToolChoice = req.ToolChoice
	result.ParallelToolCalls = req.ParallelToolCalls
}

func (s *ServiceImpl) failResponse(ctx context.Context, record *conversation.Response, failure error) (*ResponseObject, error) {
	payload, err := json.Marshal(ResponseError{
		Type:    "server_error",
		Code:    "response_failed",
		Message: failure.Error(),
	})
	if err == nil {
		if markErr := s.store.MarkFailed(ctx, record.PublicID, string(payload)); markErr != nil {
			s.log.Error().Err(markErr).Str("response_id", record.PublicID).Msg("mark failed response")
		}
	}
	return nil, failure
}

// objectFromRecord rebuilds the API object for a stored response.
func objectFromRecord(record *conversation.Response, items []conversation.OutputItem) (*ResponseObject, error) {
	obj := &ResponseObject{
		ID:                 record.PublicID,
		Object:             record.Object,
		CreatedAt:          record.CreatedAt.Unix(),
		Model:              record.Model,
		Status:             record.Status,
		PreviousResponseID: record.PreviousResponseID,
		Instructions:       record.Instructions,
		MaxOutputTokens:    record.MaxOutputTokens,
		Temperature:        record.Temperature,
		TopP:               record.TopP,
		Store:              &record.Store,
		Metadata:           record.Metadata,
		User:               record.UserID,
		SafetyIdentifier:   record.SafetyIdentifier,
		PromptCacheKey:     record.PromptCacheKey,
		Output:             make([]OutputItem, 0, len(items)),
	}

	for _, item := range items {
		out := OutputItem{
			ID:     item.PublicID,
			Type:   item.ItemType,
			Status: item.Status,
			Role:   item.Role,
		}
		if item.Content != "" {
			if err := json.Unmarshal([]byte(item.Content), &out.Content); err != nil {
				return nil, &TranslationError{ItemType: item.ItemType, ItemID: item.PublicID}
			}
		}
		obj.Output = append(obj.Output, out)
	}

	if record.UsageInputTokens != nil || record.UsageOutputTokens != nil || record.UsageTotalTokens != nil {
		usage := &Usage{}
		if record.UsageInputTokens != nil {
			usage.InputTokens = *record.UsageInputTokens
		}
		if record.UsageOutputTokens != nil {
			usage.OutputTokens = *record.UsageOutputTokens
		}
		if record.UsageTotalTokens != nil {
			usage.TotalTokens = *record.UsageTotalTokens
		}
		obj.Usage = usage
	}

	if record.Error != nil {
		var respErr ResponseError
		if err := json.Unmarshal([]byte(*record.Error), &respErr); err == nil {
			obj.Error = &respErr
		}
	}
	if record.IncompleteDetails != nil {
		var details IncompleteDetails
		if err := json.Unmarshal([]byte(*record.IncompleteDetails), &details); err == nil {
			obj.IncompleteDetails = &details
		}
	}

	return obj, nil
}

var _ Service = (*ServiceImpl)(nil)
