// Package llmprovider implements the llm.Provider interface against an
// OpenAI-compatible chat-completions endpoint.
package llmprovider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"responses-api/internal/domain/llm"
)

// Client is a Resty-backed chat-completions client.
type Client struct {
	httpClient *resty.Client
}

// NewClient creates a client against baseURL with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 75 * time.Second
	}
	return &Client{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(timeout),
	}
}

// CreateChatCompletion calls POST /v1/chat/completions and decodes the
// result.
func (c *Client) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	var completion llm.ChatCompletionResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&completion).
		Post("/v1/chat/completions")
	if err != nil {
		return nil, err
	}

	if resp.IsError() {
		return nil, fmt.Errorf("chat completion api error: %s", resp.String())
	}
	return &completion, nil
}

var _ llm.Provider = (*Client)(nil)
