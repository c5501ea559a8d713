// Copyright 2025 AxonFlow
// SPDX-License-Identifier: BUSL-1.1

// Package azure implements the llm.Client interface against Azure OpenAI
// chat deployments. It supports both classic api-key authentication and
// Entra ID bearer tokens for Azure AI Foundry endpoints.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"

	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/orchestrator/llm"
)

const (
	// DefaultAPIVersion is the default Azure OpenAI API version.
	DefaultAPIVersion = "2024-08-01-preview"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 120 * time.Second

	// DefaultMaxTokens is the default max output tokens for completions.
	DefaultMaxTokens = 4096

	// DefaultTemperature is the default temperature for completions.
	DefaultTemperature = 0.7

	// TokenScope is the Entra ID scope for Azure OpenAI bearer tokens.
	TokenScope = "https://cognitiveservices.azure.com/.default"
)

// HTTPClient is an interface for HTTP client operations (enables testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// AuthType represents the authentication method for Azure OpenAI.
type AuthType string

const (
	// AuthTypeAPIKey uses the api-key header (classic Azure OpenAI).
	AuthTypeAPIKey AuthType = "api-key"

	// AuthTypeBearer uses an Authorization: Bearer header (Azure AI Foundry).
	AuthTypeBearer AuthType = "bearer"
)

// Config contains configuration for the Azure OpenAI chat client.
type Config struct {
	Endpoint   string                // Required: Azure OpenAI endpoint URL
	APIKey     string                // API key; required unless Credential is set
	Deployment string                // Required: default deployment name
	APIVersion string                // Optional: API version (default: 2024-08-01-preview)
	AuthType   AuthType              // Optional: auto-detected from endpoint if empty
	Credential azcore.TokenCredential // Optional: Entra ID credential (forces bearer auth)
	Timeout    time.Duration         // Optional: HTTP timeout (default: 120s)
}

// Client implements llm.Client for Azure OpenAI.
type Client struct {
	endpoint   string
	apiKey     string
	deployment string
	apiVersion string
	authType   AuthType
	credential azcore.TokenCredential
	client     HTTPClient

	mu          sync.Mutex
	cachedToken string
	tokenExpiry time.Time
}

// NewClient creates a new Azure OpenAI chat client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("azure OpenAI endpoint is required")
	}

	if cfg.APIKey == "" && cfg.Credential == nil {
		return nil, fmt.Errorf("azure OpenAI API key or credential is required")
	}

	if cfg.Deployment == "" {
		return nil, fmt.Errorf("azure OpenAI deployment name is required")
	}

	cfg.Endpoint = strings.TrimRight(cfg.Endpoint, "/")

	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	authType := cfg.AuthType
	if authType == "" {
		if cfg.Credential != nil {
			authType = AuthTypeBearer
		} else {
			authType = detectAuthType(cfg.Endpoint)
		}
	}

	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		deployment: cfg.Deployment,
		apiVersion: cfg.APIVersion,
		authType:   authType,
		credential: cfg.Credential,
		client:     &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// detectAuthType auto-detects the authentication type from the endpoint URL.
// Classic Azure OpenAI (*.openai.azure.com) uses the api-key header; Azure
// AI Foundry (*.cognitiveservices.azure.com) uses bearer tokens.
func detectAuthType(endpoint string) AuthType {
	if strings.Contains(strings.ToLower(endpoint), ".cognitiveservices.azure.com") {
		return AuthTypeBearer
	}
	return AuthTypeAPIKey
}

// Name returns the client name.
func (c *Client) Name() string {
	return "azure-openai"
}

// GetAuthType returns the authentication type being used.
func (c *Client) GetAuthType() AuthType {
	return c.authType
}

// SetHTTPClient sets a custom HTTP client for testing.
func (c *Client) SetHTTPClient(client HTTPClient) {
	c.client = client
}

// bearerToken returns a cached Entra ID token, refreshing when within a
// minute of expiry. Falls back to the static APIKey when no credential
// is configured (pre-issued tokens).
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	if c.credential == nil {
		return c.apiKey, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cachedToken != "" && time.Until(c.tokenExpiry) > time.Minute {
		return c.cachedToken, nil
	}

	tok, err := c.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{TokenScope}})
	if err != nil {
		return "", fmt.Errorf("failed to acquire bearer token: %w", err)
	}

	c.cachedToken = tok.Token
	c.tokenExpiry = tok.ExpiresOn
	return c.cachedToken, nil
}

func (c *Client) setAuthHeaders(ctx context.Context, req *http.Request) error {
	req.Header.Set("Content-Type", "application/json")
	switch c.authType {
	case AuthTypeBearer:
		token, err := c.bearerToken(ctx)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	default:
		req.Header.Set("api-key", c.apiKey)
	}
	return nil
}

// buildURL constructs the Azure OpenAI chat completions URL.
func (c *Client) buildURL(deployment string) string {
	return fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, deployment, c.apiVersion)
}

// Complete generates a completion for the given request.
func (c *Client) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	deployment := c.deployment
	if req.Deployment != "" {
		deployment = req.Deployment
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	// Temperature 0.0 is valid (deterministic), negative means default.
	temperature := req.Temperature
	if temperature < 0 {
		temperature = DefaultTemperature
	}

	messages := make([]map[string]string, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, map[string]string{
			"role":    m.Role,
			"content": m.Content,
		})
	}

	apiReq := map[string]any{
		"messages":    messages,
		"max_tokens":  maxTokens,
		"temperature": temperature,
	}

	if req.JSONMode {
		apiReq["response_format"] = map[string]string{"type": "json_object"}
	}

	reqBody, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.buildURL(deployment), bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if err := c.setAuthHeaders(ctx, httpReq); err != nil {
		return nil, err
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("azure OpenAI API error: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, parseAPIError(resp.StatusCode, body)
	}

	var apiResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	content := ""
	finishReason := "unknown"
	if len(apiResp.Choices) > 0 {
		content = apiResp.Choices[0].Message.Content
		finishReason = mapFinishReason(apiResp.Choices[0].FinishReason)
	}

	return &llm.Response{
		Content:    content,
		Model:      apiResp.Model,
		StopReason: finishReason,
		Usage: llm.Usage{
			InputTokens:  apiResp.Usage.PromptTokens,
			OutputTokens: apiResp.Usage.CompletionTokens,
			TotalTokens:  apiResp.Usage.TotalTokens,
		},
	}, nil
}

// parseAPIError parses an API error response.
func parseAPIError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Type    string `json:"type"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err != nil {
		return fmt.Errorf("azure OpenAI API error (status %d): %s", statusCode, string(body))
	}

	return &APIError{
		StatusCode: statusCode,
		Code:       errResp.Error.Code,
		Type:       errResp.Error.Type,
		Message:    errResp.Error.Message,
	}
}

// mapFinishReason maps Azure OpenAI finish reasons to standard reasons.
func mapFinishReason(reason string) string {
	switch reason {
	case "stop":
		return "stop"
	case "length":
		return "max_tokens"
	case "content_filter":
		return "content_filter"
	default:
		return reason
	}
}

// APIError represents an Azure OpenAI API error.
type APIError struct {
	StatusCode int
	Code       string
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("azure OpenAI API error (status %d, code %s, type %s): %s",
		e.StatusCode, e.Code, e.Type, e.Message)
}

// IsRateLimitError returns true if this is a rate limit error.
func (e *APIError) IsRateLimitError() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Code == "rate_limit_exceeded"
}

// IsAuthError returns true if this is an authentication error.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == http.StatusUnauthorized ||
		e.StatusCode == http.StatusForbidden ||
		e.Code == "invalid_api_key"
}

// IsContentFilterError returns true if the request was rejected by the
// service-side content filter.
func (e *APIError) IsContentFilterError() bool {
	return e.Code == "content_filter" || e.Type == "content_filter"
}

// Internal API types (OpenAI-compatible format)

type chatResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
