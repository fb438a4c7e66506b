// Package conversation provides the PostgreSQL-backed conversation store.
package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	domain "responses-api/internal/domain/conversation"
	"responses-api/internal/domain/metadata"
	"responses-api/internal/infrastructure/database/entities"
	"responses-api/internal/infrastructure/metrics"
	"responses-api/internal/utils/platformerrors"
)

// PostgresRepository persists responses and their items.
type PostgresRepository struct {
	db  *gorm.DB
	log zerolog.Logger
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(db *gorm.DB, log zerolog.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:  db,
		log: log.With().Str("component", "conversation-repository").Logger(),
	}
}

// CreateResponse inserts a new response row. The public id must be fresh and
// the parent link, when set, must resolve to a stored response.
func (r *PostgresRepository) CreateResponse(ctx context.Context, resp *domain.Response) error {
	defer observe("create_response", time.Now())

	if resp.PreviousResponseID != nil {
		var count int64
		if err := r.db.WithContext(ctx).Model(&entities.Response{}).
			Where("public_id = ?", *resp.PreviousResponseID).
			Count(&count).Error; err != nil {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeDatabaseError,
				"failed to check previous response",
				err,
				"2c0a6f4e-8d31-4b6a-9a7e-5c1d3e8f2b90",
			)
		}
		if count == 0 {
			return platformerrors.NewErrorWithContext(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeInvalidReference,
				"previous response does not exist",
				nil,
				"3d1b7a5f-9e42-4c7b-8b6f-6d2e4f9a3ca1",
				map[string]any{"previous_response_id": *resp.PreviousResponseID},
			)
		}
	}

	entity, err := mapToEntity(resp)
	if err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInternal,
			"failed to map response to entity",
			err,
			"4e2c8b6a-0f53-4d8c-9c7a-7e3f5a0b4db2",
		)
	}

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueViolation(err) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				"response id already exists",
				err,
				"5f3d9c7b-1a64-4e9d-8d8b-8f4a6b1c5ec3",
			)
		}
		// The parent can vanish between the count above and the insert; the
		// FK closes that window.
		if isForeignKeyViolation(err) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeInvalidReference,
				"previous response does not exist",
				err,
				"0b6e2d8f-4a53-4c1e-9d2a-8e5f1b7c3da2",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create response",
			err,
			"6a4e0d8c-2b75-4f0e-9e9c-0a5b7c2d6fd4",
		)
	}

	resp.ID = entity.ID
	return nil
}

// GetResponse fetches a response by public id.
func (r *PostgresRepository) GetResponse(ctx context.Context, publicID string) (*domain.Response, error) {
	defer observe("get_response", time.Now())

	var entity entities.Response
	if err := r.db.WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound,
				"response not found",
				err,
				"7b5f1e9d-3c86-4a1f-8f0d-1b6c8d3e7ae5",
			)
		}
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to find response by public id",
			err,
			"8c6a2f0e-4d97-4b2a-9a1e-2c7d9e4f8bf6",
		)
	}

	resp := &domain.Response{}
	if err := r.mapFromEntity(ctx, &entity, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CreateInputItem appends an input item row.
func (r *PostgresRepository) CreateInputItem(ctx context.Context, item *domain.InputItem) error {
	defer observe("create_input_item", time.Now())

	if err := r.checkResponseExists(ctx, item.ResponseID); err != nil {
		return err
	}

	entity := entities.InputItem{
		PublicID:   item.PublicID,
		ResponseID: item.ResponseID,
		ItemType:   item.ItemType,
		Role:       roleToString(item.Role),
		Content:    datatypes.JSON(item.Content),
		CreatedAt:  item.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		if isForeignKeyViolation(err) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeInvalidReference,
				"owning response does not exist",
				err,
				"9d7b3a1f-5ea8-4c3b-8b2f-3d8e0f5a9ca7",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create input item",
			err,
			"1c8e4b2d-6fc9-4e5a-8a3b-9f6a2c8d4eb3",
		)
	}
	item.ID = entity.ID
	return nil
}

// CreateOutputItem appends an output item row.
func (r *PostgresRepository) CreateOutputItem(ctx context.Context, item *domain.OutputItem) error {
	defer observe("create_output_item", time.Now())

	if err := r.checkResponseExists(ctx, item.ResponseID); err != nil {
		return err
	}

	entity := entities.OutputItem{
		PublicID:   item.PublicID,
		ResponseID: item.ResponseID,
		ItemType:   item.ItemType,
		Role:       roleToString(item.Role),
		Content:    datatypes.JSON(item.Content),
		Status:     item.Status,
		CreatedAt:  item.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		if isForeignKeyViolation(err) {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeInvalidReference,
				"owning response does not exist",
				err,
				"0e8c4b2a-6fb9-4d4c-9c3a-4e9f1a6b0db8",
			)
		}
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to create output item",
			err,
			"2d9f5c3e-7adb-4f6b-9b4c-0a7b3d9e5fc4",
		)
	}
	item.ID = entity.ID
	return nil
}

// ListInputItems returns the response's input items oldest first.
func (r *PostgresRepository) ListInputItems(ctx context.Context, responseID string) ([]domain.InputItem, error) {
	defer observe("list_input_items", time.Now())

	var rows []entities.InputItem
	if err := r.db.WithContext(ctx).
		Where("response_id = ?", responseID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list input items",
			err,
			"1f9d5c3b-7aca-4e5d-8d4b-5f0a2b7c1ec9",
		)
	}

	items := make([]domain.InputItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.InputItem{
			ID:         row.ID,
			PublicID:   row.PublicID,
			ResponseID: row.ResponseID,
			ItemType:   row.ItemType,
			Role:       r.roleFromString(row.Role, row.PublicID),
			Content:    string(row.Content),
			CreatedAt:  row.CreatedAt,
		})
	}
	return items, nil
}

// ListOutputItems returns the response's output items oldest first.
func (r *PostgresRepository) ListOutputItems(ctx context.Context, responseID string) ([]domain.OutputItem, error) {
	defer observe("list_output_items", time.Now())

	var rows []entities.OutputItem
	if err := r.db.WithContext(ctx).
		Where("response_id = ?", responseID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to list output items",
			err,
			"2a0e6d4c-8bdb-4f6e-9e5c-6a1b3c8d2fda",
		)
	}

	items := make([]domain.OutputItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.OutputItem{
			ID:         row.ID,
			PublicID:   row.PublicID,
			ResponseID: row.ResponseID,
			ItemType:   row.ItemType,
			Role:       r.roleFromString(row.Role, row.PublicID),
			Content:    string(row.Content),
			Status:     row.Status,
			CreatedAt:  row.CreatedAt,
		})
	}
	return items, nil
}

// DeleteResponse removes the response row and its items in one transaction.
// The parent FK restricts the delete while later responses still reference
// this one; that surfaces as Conflict.
func (r *PostgresRepository) DeleteResponse(ctx context.Context, publicID string) (bool, error) {
	defer observe("delete_response", time.Now())

	var existed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("response_id = ?", publicID).Delete(&entities.InputItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("response_id = ?", publicID).Delete(&entities.OutputItem{}).Error; err != nil {
			return err
		}
		result := tx.Where("public_id = ?", publicID).Delete(&entities.Response{})
		if result.Error != nil {
			return result.Error
		}
		existed = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, platformerrors.NewErrorWithContext(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeConflict,
				"response is still referenced as a previous response",
				err,
				"3b1f7e5d-9cec-4a7f-8f6d-7b2c4d9e3aeb",
				map[string]any{"response_id": publicID},
			)
		}
		return false, platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to delete response",
			err,
			"4c2b8f6e-0dad-4b8a-9a7e-8c3d5e0f4cfb",
		)
	}
	return existed, nil
}

// UpdateStatus mutates only the status column.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, publicID string, status domain.Status) error {
	defer observe("update_status", time.Now())

	return r.updateColumns(ctx, publicID, map[string]interface{}{
		"status": string(status),
	}, "4c2a8f6e-0dfd-4b8a-9a7e-8c3d5e0f4bfc")
}

// UpdateUsage records the token counters.
func (r *PostgresRepository) UpdateUsage(ctx context.Context, publicID string, inputTokens, outputTokens, totalTokens int64) error {
	defer observe("update_usage", time.Now())

	return r.updateColumns(ctx, publicID, map[string]interface{}{
		"usage_input_tokens":  inputTokens,
		"usage_output_tokens": outputTokens,
		"usage_total_tokens":  totalTokens,
	}, "5d3b9a7f-1e0e-4c9b-8b8f-9d4e6f1a5cad")
}

// MarkFailed sets the failed status together with the error payload.
func (r *PostgresRepository) MarkFailed(ctx context.Context, publicID string, errorPayload string) error {
	defer observe("mark_failed", time.Now())

	return r.updateColumns(ctx, publicID, map[string]interface{}{
		"status": string(domain.StatusFailed),
		"error":  datatypes.JSON(errorPayload),
	}, "6e4c0b8a-2f1f-4d0c-9c9a-0e5f7a2b6dbe")
}

// checkResponseExists guards item appends against orphan rows.
func (r *PostgresRepository) checkResponseExists(ctx context.Context, publicID string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Response{}).
		Where("public_id = ?", publicID).
		Count(&count).Error; err != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to check owning response",
			err,
			"8a6d2e0c-4b3a-4f2b-9b1d-2c7e9f4a8dbc",
		)
	}
	if count == 0 {
		return platformerrors.NewErrorWithContext(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeInvalidReference,
			"owning response does not exist",
			nil,
			"9b7e3f1d-5c4b-4a3c-8c2e-3d8f0a5b9ecd",
			map[string]any{"response_id": publicID},
		)
	}
	return nil
}

func (r *PostgresRepository) updateColumns(ctx context.Context, publicID string, columns map[string]interface{}, errUUID string) error {
	result := r.db.WithContext(ctx).Model(&entities.Response{}).
		Where("public_id = ?", publicID).
		Updates(columns)
	if result.Error != nil {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError,
			"failed to update response",
			result.Error,
			errUUID,
		)
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(
			ctx,
			platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound,
			"response not found",
			nil,
			errUUID,
		)
	}
	return nil
}

func mapToEntity(resp *domain.Response) (*entities.Response, error) {
	entity := &entities.Response{
		PublicID:           resp.PublicID,
		Object:             resp.Object,
		Status:             string(resp.Status),
		Model:              resp.Model,
		PreviousResponseID: resp.PreviousResponseID,
		Instructions:       resp.Instructions,
		MaxOutputTokens:    resp.MaxOutputTokens,
		Temperature:        resp.Temperature,
		TopP:               resp.TopP,
		Store:              resp.Store,
		UserID:             resp.UserID,
		SafetyIdentifier:   resp.SafetyIdentifier,
		PromptCacheKey:     resp.PromptCacheKey,
		UsageInputTokens:   resp.UsageInputTokens,
		UsageOutputTokens:  resp.UsageOutputTokens,
		UsageTotalTokens:   resp.UsageTotalTokens,
		CreatedAt:          resp.CreatedAt,
	}

	if resp.Metadata != nil && !resp.Metadata.IsEmpty() {
		form, err := resp.Metadata.ToStorageForm()
		if err != nil {
			return nil, err
		}
		entity.Metadata = datatypes.JSON(form)
	}
	if resp.Error != nil {
		entity.Error = datatypes.JSON(*resp.Error)
	}
	if resp.IncompleteDetails != nil {
		entity.IncompleteDetails = datatypes.JSON(*resp.IncompleteDetails)
	}
	return entity, nil
}

func (r *PostgresRepository) mapFromEntity(ctx context.Context, entity *entities.Response, resp *domain.Response) error {
	resp.ID = entity.ID
	resp.PublicID = entity.PublicID
	resp.Object = entity.Object
	resp.Status = domain.Status(entity.Status)
	resp.Model = entity.Model
	resp.PreviousResponseID = entity.PreviousResponseID
	resp.Instructions = entity.Instructions
	resp.MaxOutputTokens = entity.MaxOutputTokens
	resp.Temperature = entity.Temperature
	resp.TopP = entity.TopP
	resp.Store = entity.Store
	resp.UserID = entity.UserID
	resp.SafetyIdentifier = entity.SafetyIdentifier
	resp.PromptCacheKey = entity.PromptCacheKey
	resp.UsageInputTokens = entity.UsageInputTokens
	resp.UsageOutputTokens = entity.UsageOutputTokens
	resp.UsageTotalTokens = entity.UsageTotalTokens
	resp.CreatedAt = entity.CreatedAt

	if len(entity.Metadata) > 0 {
		// Persisted rows predate or survive limit changes; loading never
		// re-validates.
		md, err := metadata.FromStorageForm(string(entity.Metadata))
		if err != nil {
			return platformerrors.NewError(
				ctx,
				platformerrors.LayerRepository,
				platformerrors.ErrorTypeInternal,
				"failed to decode stored metadata",
				err,
				"7f5d1c9b-3a2a-4e1d-8d0b-1f6a8b3c7ecf",
			)
		}
		resp.Metadata = md
	}
	if len(entity.Error) > 0 {
		payload := string(entity.Error)
		resp.Error = &payload
	}
	if len(entity.IncompleteDetails) > 0 {
		payload := string(entity.IncompleteDetails)
		resp.IncompleteDetails = &payload
	}
	return nil
}

func roleToString(role *domain.Role) *string {
	if role == nil {
		return nil
	}
	s := role.String()
	return &s
}

// roleFromString parses a stored role, logging when a row carries a value the
// current vocabulary no longer recognizes.
func (r *PostgresRepository) roleFromString(raw *string, itemID string) *domain.Role {
	if raw == nil {
		return nil
	}
	role, recognized := domain.ParseRole(*raw)
	if !recognized {
		r.log.Warn().
			Str("item_id", itemID).
			Str("role", *raw).
			Msg("stored role coerced to user")
	}
	return &role
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23503"
	}
	return err != nil && strings.Contains(err.Error(), "foreign key")
}

func observe(operation string, start time.Time) {
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

var _ domain.Repository = (*PostgresRepository)(nil)
