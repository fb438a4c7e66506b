package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"responses-api/internal/domain/responses"
	"responses-api/internal/infrastructure/observability"
	"responses-api/internal/utils/platformerrors"
)

// ResponseHandler exposes HTTP entrypoints for the Responses API.
type ResponseHandler struct {
	service responses.Service
	log     zerolog.Logger
}

// NewResponseHandler constructs the handler.
func NewResponseHandler(service responses.Service, log zerolog.Logger) *ResponseHandler {
	return &ResponseHandler{
		service: service,
		log:     log.With().Str("handler", "response").Logger(),
	}
}

// Create handles POST /v1/responses.
func (h *ResponseHandler) Create(c *gin.Context) {
	var req responses.ResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.renderError(c, platformerrors.NewError(
			c.Request.Context(),
			platformerrors.LayerHandler,
			platformerrors.ErrorTypeValidation,
			err.Error(),
			err,
			"8a6e2d0c-4b3b-4f2e-9e1c-2a7b9c4d8eda",
		))
		return
	}

	ctx, span := observability.StartResponseSpan(c.Request.Context(), "create", req.Model)
	defer span.End()

	resp, err := h.service.Create(ctx, &req)
	if err != nil {
		observability.RecordError(span, err)
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Get handles GET /v1/responses/:response_id.
func (h *ResponseHandler) Get(c *gin.Context) {
	resp, err := h.service.Get(c.Request.Context(), c.Param("response_id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete handles DELETE /v1/responses/:response_id.
func (h *ResponseHandler) Delete(c *gin.Context) {
	result, err := h.service.Delete(c.Request.Context(), c.Param("response_id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	if !result.Deleted {
		c.JSON(http.StatusNotFound, gin.H{
			"error": gin.H{
				"message": "response not found",
				"type":    string(platformerrors.ErrorTypeNotFound),
			},
		})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListInputItems handles GET /v1/responses/:response_id/input_items.
func (h *ResponseHandler) ListInputItems(c *gin.Context) {
	list, err := h.service.ListInputItems(c.Request.Context(), c.Param("response_id"))
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *ResponseHandler) renderError(c *gin.Context, err error) {
	var translationErr *responses.TranslationError
	if errors.As(err, &translationErr) {
		err = platformerrors.NewError(
			c.Request.Context(),
			platformerrors.LayerHandler,
			platformerrors.ErrorTypeTranslation,
			translationErr.Error(),
			translationErr,
			"9b7f3e1d-5c4c-4a3f-8f2d-3b8c0d5e9feb",
		)
	}

	platformErr := platformerrors.AsError(c.Request.Context(), platformerrors.LayerHandler, err, "request failed")
	platformerrors.LogError(h.log, platformErr)

	c.JSON(platformerrors.ErrorTypeToHTTPStatus(platformErr.Type), gin.H{
		"error": gin.H{
			"message": platformErr.Message,
			"type":    string(platformErr.Type),
		},
	})
}
