// Copyright 2025 AxonFlow
// SPDX-License-Identifier: BUSL-1.1

// Package imagegen routes image generation across two incompatible Azure
// OpenAI model families and normalizes their responses into one result
// shape. Prompt text is budgeted before submission because both families
// truncate overlong prompts silently.
package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
)

// Family identifies an image-model family. The set is closed: adding a
// family means adding a request builder and a response normalizer here.
type Family string

const (
	// FamilyDalle covers DALL·E-class deployments (URL or b64 responses,
	// revised_prompt support, style/quality options).
	FamilyDalle Family = "dalle"

	// FamilyGPTImage covers GPT-image-class deployments (always inline
	// base64, no revised prompt).
	FamilyGPTImage Family = "gpt-image"
)

// ParseFamily validates a configured family name.
func ParseFamily(s string) (Family, error) {
	switch Family(s) {
	case FamilyDalle, FamilyGPTImage:
		return Family(s), nil
	default:
		return "", fmt.Errorf("unknown image model family: %q", s)
	}
}

// MaxPromptChars is the prompt budget applied to both families.
const MaxPromptChars = 4000

const (
	defaultAPIVersion = "2024-02-01"
	defaultTimeout    = 180 * time.Second
	tokenScope        = "https://cognitiveservices.azure.com/.default"
)

// Result is the normalized outcome of one image generation attempt.
// Exactly one of ImageBase64 and Error is populated.
type Result struct {
	Success       bool   `json:"success"`
	ImageBase64   string `json:"image_base64,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
	Model         string `json:"model,omitempty"`
	PromptUsed    string `json:"prompt_used,omitempty"`
	Error         string `json:"error,omitempty"`
}

// HTTPClient is an interface for HTTP client operations (enables testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config contains configuration for the image router.
type Config struct {
	Family        Family
	Endpoint      string // Required
	APIKey        string // Required unless Credential is set
	Deployment    string // Required
	APIVersion    string
	Credential    azcore.TokenCredential
	BrandPreamble string // prepended to every prompt
	Timeout       time.Duration
}

// Router dispatches image generation requests to the configured family.
type Router struct {
	family        Family
	endpoint      string
	apiKey        string
	deployment    string
	apiVersion    string
	credential    azcore.TokenCredential
	brandPreamble string
	client        HTTPClient

	mu          sync.Mutex
	cachedToken string
	tokenExpiry time.Time
}

// NewRouter creates an image router for one model family.
func NewRouter(cfg Config) (*Router, error) {
	if _, err := ParseFamily(string(cfg.Family)); err != nil {
		return nil, err
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("image endpoint is required")
	}
	if cfg.APIKey == "" && cfg.Credential == nil {
		return nil, fmt.Errorf("image API key or credential is required")
	}
	if cfg.Deployment == "" {
		return nil, fmt.Errorf("image deployment name is required")
	}

	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Router{
		family:        cfg.Family,
		endpoint:      strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:        cfg.APIKey,
		deployment:    cfg.Deployment,
		apiVersion:    cfg.APIVersion,
		credential:    cfg.Credential,
		brandPreamble: cfg.BrandPreamble,
		client:        &http.Client{Timeout: cfg.Timeout},
	}, nil
}

// SetHTTPClient sets a custom HTTP client for testing.
func (r *Router) SetHTTPClient(client HTTPClient) {
	r.client = client
}

// Family returns the configured model family.
func (r *Router) Family() Family {
	return r.family
}

// GenerateImage assembles the final prompt from a base creative prompt
// plus truncated product and scene text, then dispatches to the family.
// Provider errors are not retried; every failure becomes Result.Error.
func (r *Router) GenerateImage(ctx context.Context, basePrompt, productDesc, sceneDesc string) Result {
	var b strings.Builder
	if r.brandPreamble != "" {
		b.WriteString(r.brandPreamble)
		b.WriteString("\n\n")
	}
	if productDesc != "" {
		b.WriteString("Product details:\n")
		b.WriteString(TruncateForImage(productDesc, 1500))
		b.WriteString("\n\n")
	}
	if sceneDesc != "" {
		b.WriteString("Scene:\n")
		b.WriteString(TruncateForImage(sceneDesc, 1000))
		b.WriteString("\n\n")
	}
	b.WriteString(basePrompt)

	// Final safety net: the assembled prompt must fit the budget too.
	prompt := TruncateForImage(b.String(), MaxPromptChars)
	return r.GenerateFromPrompt(ctx, prompt)
}

// GenerateFromPrompt dispatches an already-assembled prompt. Used by the
// regeneration path, where an agent revises a previous prompt.
func (r *Router) GenerateFromPrompt(ctx context.Context, prompt string) Result {
	prompt = TruncateForImage(prompt, MaxPromptChars)

	var payload map[string]any
	switch r.family {
	case FamilyGPTImage:
		payload = buildGPTImageRequest(prompt)
	default:
		payload = buildDalleRequest(prompt)
	}

	raw, err := r.post(ctx, payload)
	if err != nil {
		return Result{Success: false, Error: err.Error(), PromptUsed: prompt, Model: r.deployment}
	}

	var normalized Result
	switch r.family {
	case FamilyGPTImage:
		normalized = r.normalizeGPTImage(raw)
	default:
		normalized = r.normalizeDalle(ctx, raw)
	}

	normalized.PromptUsed = prompt
	normalized.Model = r.deployment
	return normalized
}

func (r *Router) buildURL() string {
	return fmt.Sprintf("%s/openai/deployments/%s/images/generations?api-version=%s",
		r.endpoint, r.deployment, r.apiVersion)
}

func (r *Router) bearerToken(ctx context.Context) (string, error) {
	if r.credential == nil {
		return r.apiKey, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cachedToken != "" && time.Until(r.tokenExpiry) > time.Minute {
		return r.cachedToken, nil
	}

	tok, err := r.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{tokenScope}})
	if err != nil {
		return "", fmt.Errorf("failed to acquire bearer token: %w", err)
	}

	r.cachedToken = tok.Token
	r.tokenExpiry = tok.ExpiresOn
	return r.cachedToken, nil
}

func (r *Router) post(ctx context.Context, payload map[string]any) (*imageResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.buildURL(), bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.credential != nil {
		token, err := r.bearerToken(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	} else {
		req.Header.Set("api-key", r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image API error: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return nil, parseImageAPIError(resp.StatusCode, data)
	}

	var apiResp imageResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &apiResp, nil
}

// normalizeDalle handles both response shapes DALL·E deployments produce:
// inline base64 or a short-lived URL. URL responses are fetched exactly
// once; a non-200 fetch is a failure, not a retry.
func (r *Router) normalizeDalle(ctx context.Context, resp *imageResponse) Result {
	if len(resp.Data) == 0 {
		return Result{Success: false, Error: "image response contained no data"}
	}

	item := resp.Data[0]
	if item.B64JSON != "" {
		return Result{Success: true, ImageBase64: item.B64JSON, RevisedPrompt: item.RevisedPrompt}
	}

	if item.URL == "" {
		return Result{Success: false, Error: "image response contained neither base64 data nor a URL"}
	}

	req, err := http.NewRequestWithContext(ctx, "GET", item.URL, nil)
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("failed to build image fetch request: %v", err)}
	}

	fetchResp, err := r.client.Do(req)
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("failed to fetch generated image: %v", err)}
	}
	defer func() {
		_ = fetchResp.Body.Close()
	}()

	if fetchResp.StatusCode != http.StatusOK {
		return Result{Success: false, Error: fmt.Sprintf("image fetch returned status %d", fetchResp.StatusCode)}
	}

	data, err := io.ReadAll(fetchResp.Body)
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("failed to read generated image: %v", err)}
	}

	return Result{
		Success:       true,
		ImageBase64:   base64.StdEncoding.EncodeToString(data),
		RevisedPrompt: item.RevisedPrompt,
	}
}

// normalizeGPTImage handles GPT-image deployments, which always return
// inline base64 and never revise the prompt.
func (r *Router) normalizeGPTImage(resp *imageResponse) Result {
	if len(resp.Data) == 0 {
		return Result{Success: false, Error: "image response contained no data"}
	}
	if resp.Data[0].B64JSON == "" {
		return Result{Success: false, Error: "image response contained no base64 data"}
	}
	return Result{Success: true, ImageBase64: resp.Data[0].B64JSON}
}

func buildDalleRequest(prompt string) map[string]any {
	return map[string]any{
		"prompt":          prompt,
		"n":               1,
		"size":            "1024x1024",
		"quality":         "standard",
		"style":           "natural",
		"response_format": "b64_json",
	}
}

func buildGPTImageRequest(prompt string) map[string]any {
	// GPT-image deployments reject response_format; output is always b64.
	return map[string]any{
		"prompt":  prompt,
		"n":       1,
		"size":    "1024x1024",
		"quality": "medium",
	}
}

func parseImageAPIError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return fmt.Errorf("image API error (status %d): %s", statusCode, string(body))
	}
	return fmt.Errorf("image API error (status %d, code %s): %s",
		statusCode, errResp.Error.Code, errResp.Error.Message)
}

type imageResponse struct {
	Created int64 `json:"created"`
	Data    []struct {
		URL           string `json:"url,omitempty"`
		B64JSON       string `json:"b64_json,omitempty"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}
