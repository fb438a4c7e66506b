package handlers

import (
	"github.com/rs/zerolog"

	"responses-api/internal/domain/responses"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Response *ResponseHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(responseService responses.Service, log zerolog.Logger) *Provider {
	return &Provider{
		Response: NewResponseHandler(responseService, log),
	}
}
