// Copyright 2025 AxonFlow
// SPDX-License-Identifier: BUSL-1.1

// Package llm defines the chat-model abstraction the orchestration layer
// builds on: a minimal completion client plus a lightweight Agent type
// that couples instructions with a deployment. Retries and failover are
// deliberately absent; they belong to the transport, not this layer.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a chat completion request.
type Request struct {
	Messages    []Message
	Deployment  string  // deployment override; client default when empty
	MaxTokens   int     // 0 means client default
	Temperature float64 // negative means client default
	JSONMode    bool    // request a json_object response format
}

// Usage contains token usage statistics.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Response is a chat completion response.
type Response struct {
	Content    string
	Model      string
	StopReason string
	Usage      Usage
}

// Client is the minimal chat surface agents need.
type Client interface {
	// Complete generates a single completion. Implementations must honor
	// ctx cancellation and return an error rather than retry internally.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Name identifies the client for logging.
	Name() string
}

// Agent couples a named instruction set with a deployment. Agents are
// cheap value objects; the same agent is reused across turns.
type Agent struct {
	Name         string
	Instructions string
	Deployment   string
	Temperature  float64
	MaxTokens    int
	JSONMode     bool
}

// Run sends the agent's instructions plus a single user input and returns
// the assistant text.
func (a *Agent) Run(ctx context.Context, client Client, input string) (string, error) {
	return a.RunMessages(ctx, client, []Message{{Role: RoleUser, Content: input}})
}

// RunMessages sends the agent's instructions plus a prepared message list.
func (a *Agent) RunMessages(ctx context.Context, client Client, messages []Message) (string, error) {
	if client == nil {
		return "", fmt.Errorf("agent %s: no chat client configured", a.Name)
	}

	msgs := make([]Message, 0, len(messages)+1)
	if a.Instructions != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: a.Instructions})
	}
	msgs = append(msgs, messages...)

	temperature := a.Temperature
	if temperature == 0 {
		temperature = -1 // client default
	}

	resp, err := client.Complete(ctx, Request{
		Messages:    msgs,
		Deployment:  a.Deployment,
		MaxTokens:   a.MaxTokens,
		Temperature: temperature,
		JSONMode:    a.JSONMode,
	})
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", a.Name, err)
	}

	return strings.TrimSpace(resp.Content), nil
}
