package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"responses-api/internal/domain/conversation"
	"responses-api/internal/domain/responses"
	"responses-api/internal/interfaces/httpserver/handlers"
	"responses-api/internal/utils/platformerrors"
)

// MockResponseService is a func-field mock of responses.Service.
type MockResponseService struct {
	CreateFunc         func(ctx context.Context, req *responses.ResponseRequest) (*responses.ResponseObject, error)
	GetFunc            func(ctx context.Context, publicID string) (*responses.ResponseObject, error)
	DeleteFunc         func(ctx context.Context, publicID string) (*responses.DeleteResponseResult, error)
	ListInputItemsFunc func(ctx context.Context, publicID string) (*responses.InputItemList, error)
}

func (m *MockResponseService) Create(ctx context.Context, req *responses.ResponseRequest) (*responses.ResponseObject, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockResponseService) Get(ctx context.Context, publicID string) (*responses.ResponseObject, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, publicID)
	}
	return nil, nil
}

func (m *MockResponseService) Delete(ctx context.Context, publicID string) (*responses.DeleteResponseResult, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, publicID)
	}
	return nil, nil
}

func (m *MockResponseService) ListInputItems(ctx context.Context, publicID string) (*responses.InputItemList, error) {
	if m.ListInputItemsFunc != nil {
		return m.ListInputItemsFunc(ctx, publicID)
	}
	return nil, nil
}

var _ responses.Service = (*MockResponseService)(nil)

func newTestRouter(service responses.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	handler := handlers.NewResponseHandler(service, zerolog.Nop())
	engine.POST("/v1/responses", handler.Create)
	engine.GET("/v1/responses/:response_id", handler.Get)
	engine.DELETE("/v1/responses/:response_id", handler.Delete)
	engine.GET("/v1/responses/:response_id/input_items", handler.ListInputItems)
	return engine
}

func TestResponseHandler_Create(t *testing.T) {
	service := &MockResponseService{
		CreateFunc: func(ctx context.Context, req *responses.ResponseRequest) (*responses.ResponseObject, error) {
			if req.Model != "gpt-test" {
				t.Errorf("model = %q, want gpt-test", req.Model)
			}
			if req.Input == nil || req.Input.Kind != responses.InputKindText {
				t.Errorf("input not decoded as text: %+v", req.Input)
			}
			return &responses.ResponseObject{
				ID:     "resp_123",
				Object: "response",
				Model:  req.Model,
				Status: conversation.StatusCompleted,
			}, nil
		},
	}
	router := newTestRouter(service)

	body := bytes.NewBufferString(`{"model":"gpt-test","input":"hello"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/responses", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp responses.ResponseObject
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "resp_123" {
		t.Errorf("id = %q, want resp_123", resp.ID)
	}
}

func TestResponseHandler_Create_MissingModel(t *testing.T) {
	router := newTestRouter(&MockResponseService{})

	body := bytes.NewBufferString(`{"input":"hello"}`)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/responses", body)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestResponseHandler_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name      string
		errorType platformerrors.ErrorType
		want      int
	}{
		{"not found maps to 404", platformerrors.ErrorTypeNotFound, http.StatusNotFound},
		{"conflict maps to 409", platformerrors.ErrorTypeConflict, http.StatusConflict},
		{"invalid reference maps to 422", platformerrors.ErrorTypeInvalidReference, http.StatusUnprocessableEntity},
		{"translation maps to 400", platformerrors.ErrorTypeTranslation, http.StatusBadRequest},
		{"external maps to 502", platformerrors.ErrorTypeExternal, http.StatusBadGateway},
		{"database maps to 500", platformerrors.ErrorTypeDatabaseError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &MockResponseService{
				CreateFunc: func(ctx context.Context, req *responses.ResponseRequest) (*responses.ResponseObject, error) {
					return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
						tt.errorType, "boom", nil, "")
				},
			}
			router := newTestRouter(service)

			body := bytes.NewBufferString(`{"model":"gpt-test","input":"hello"}`)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/v1/responses", body)
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestResponseHandler_Get_NotFound(t *testing.T) {
	service := &MockResponseService{
		GetFunc: func(ctx context.Context, publicID string) (*responses.ResponseObject, error) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound, "response not found", nil, "")
		},
	}
	router := newTestRouter(service)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/responses/resp_missing", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestResponseHandler_Delete(t *testing.T) {
	service := &MockResponseService{
		DeleteFunc: func(ctx context.Context, publicID string) (*responses.DeleteResponseResult, error) {
			return &responses.DeleteResponseResult{
				ID:      publicID,
				Object:  "response",
				Deleted: publicID == "resp_live",
			}, nil
		},
	}
	router := newTestRouter(service)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/responses/resp_live", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/v1/responses/resp_gone", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for unknown id", w.Code)
	}
}

func TestResponseHandler_ListInputItems(t *testing.T) {
	service := &MockResponseService{
		ListInputItemsFunc: func(ctx context.Context, publicID string) (*responses.InputItemList, error) {
			return &responses.InputItemList{
				Object:  "list",
				Data:    []responses.InputItemResource{{ID: "item_1", Type: "message"}},
				FirstID: "item_1",
				LastID:  "item_1",
			}, nil
		},
	}
	router := newTestRouter(service)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/responses/resp_123/input_items", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var list responses.InputItemList
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Object != "list" || len(list.Data) != 1 {
		t.Errorf("unexpected list payload: %+v", list)
	}
}
