// Copyright 2025 AxonFlow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/orchestrator/llm"
	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/shared/logger"
)

// ErrContentBlocked is returned when the safety gate refuses an input.
// Callers translate it into the fixed refusal message.
var ErrContentBlocked = errors.New("content blocked by safety filter")

// maxHandoffs bounds one workflow run. The longest legitimate chain is
// triage -> planning -> research -> text -> image -> compliance; anything
// deeper is a routing loop.
const maxHandoffs = 8

// workflowRunner executes the agent handoff loop. It is an interface so
// coordinator tests can run canned workflows without a chat model.
type workflowRunner interface {
	run(ctx context.Context, o *ContentOrchestrator, startAgent, conversationID string,
		transcript []llm.Message, out chan<- AgentEvent)
}

// pausedWorkflow is the saved state of a run waiting on user input.
type pausedWorkflow struct {
	agentID        string
	conversationID string
	transcript     []llm.Message
}

// ContentOrchestrator coordinates the multi-agent content generation
// workflow: it gates input, routes turns through the handoff graph,
// scrubs agent output, and pauses runs that need user input.
type ContentOrchestrator struct {
	chat    llm.Client
	agents  map[string]*llm.Agent
	graph   *HandoffGraph
	runner  workflowRunner
	pending sync.Map // requestID -> *pausedWorkflow
	log     *logger.Logger
}

// NewContentOrchestrator builds an orchestrator with the default agent
// roster and handoff topology.
func NewContentOrchestrator(chat llm.Client) *ContentOrchestrator {
	o := &ContentOrchestrator{
		chat:   chat,
		agents: defaultAgents(),
		graph:  defaultHandoffGraph(),
		log:    logger.New("orchestrator"),
	}
	o.runner = &handoffRunner{}
	return o
}

func defaultAgents() map[string]*llm.Agent {
	return map[string]*llm.Agent{
		AgentTriage:       {Name: AgentTriage, Instructions: TriageInstructions},
		AgentPlanning:     {Name: AgentPlanning, Instructions: PlanningInstructions},
		AgentResearch:     {Name: AgentResearch, Instructions: ResearchInstructions},
		AgentTextContent:  {Name: AgentTextContent, Instructions: TextContentInstructions, Temperature: 0.8},
		AgentImageContent: {Name: AgentImageContent, Instructions: ImageContentInstructions, Temperature: 0.8},
		AgentCompliance:   {Name: AgentCompliance, Instructions: ComplianceInstructions, JSONMode: true},
		AgentRAI:          {Name: AgentRAI, Instructions: RAIInstructions, MaxTokens: 8},
	}
}

// ProcessMessage runs one conversational turn. The returned channel
// carries the client-facing event stream and is closed when the turn
// completes, pauses, or fails. Harmful input short-circuits to a single
// terminal refusal event without any model call.
func (o *ContentOrchestrator) ProcessMessage(ctx context.Context, message, conversationID string, history []llm.Message) <-chan AgentEvent {
	out := make(chan AgentEvent, 16)

	if harmful, category := CheckHarmfulContent(message); harmful {
		o.log.Warn(conversationID, "", "input blocked by safety filter",
			map[string]interface{}{"category": category})
		out <- AgentEvent{Type: EventMessage, Content: HarmfulContentResponse, IsFinal: true}
		close(out)
		return out
	}

	transcript := []llm.Message{{Role: llm.RoleUser, Content: withContextBlock(history, message)}}
	go o.runScrubbed(ctx, AgentTriage, conversationID, transcript, out)
	return out
}

// withContextBlock serializes prior turns into a Context: block ahead of
// the user text, so agents see the conversation without the orchestrator
// replaying it message by message.
func withContextBlock(history []llm.Message, message string) string {
	if len(history) == 0 {
		return message
	}
	var sb strings.Builder
	sb.WriteString("Context:\n")
	for _, m := range history {
		sb.WriteString(m.Role)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(message)
	return sb.String()
}

// SendUserResponse resumes a workflow that paused for user input. A
// request ID is consumed only when the workflow actually resumes: a
// blocked response leaves the pause in place so the user can answer
// again, and the refusal event echoes the request ID to signal that.
func (o *ContentOrchestrator) SendUserResponse(ctx context.Context, requestID, message string) (<-chan AgentEvent, error) {
	value, ok := o.pending.Load(requestID)
	if !ok {
		return nil, fmt.Errorf("no pending workflow for request %s", requestID)
	}
	paused := value.(*pausedWorkflow)

	out := make(chan AgentEvent, 16)

	if harmful, category := CheckHarmfulContent(message); harmful {
		o.log.Warn(paused.conversationID, requestID, "user response blocked by safety filter",
			map[string]interface{}{"category": category})
		out <- AgentEvent{Type: EventMessage, Content: HarmfulContentResponse, RequestID: requestID, IsFinal: true}
		close(out)
		return out, nil
	}

	// Claim the pause only now that the response passed the gate.
	if _, claimed := o.pending.LoadAndDelete(requestID); !claimed {
		close(out)
		return nil, fmt.Errorf("no pending workflow for request %s", requestID)
	}
	transcript := append(paused.transcript, llm.Message{Role: llm.RoleUser, Content: message})
	go o.runScrubbed(ctx, paused.agentID, paused.conversationID, transcript, out)
	return out, nil
}

// runScrubbed executes the runner and relays its events after scrubbing.
// Events whose content scrubs away to nothing are dropped unless they
// carry a request ID, which the client needs to resume.
func (o *ContentOrchestrator) runScrubbed(ctx context.Context, startAgent, conversationID string, transcript []llm.Message, out chan<- AgentEvent) {
	defer close(out)

	raw := make(chan AgentEvent, 16)
	go func() {
		defer close(raw)
		o.runner.run(ctx, o, startAgent, conversationID, transcript, raw)
	}()

	for ev := range raw {
		ev.Content = FilterSystemPrompt(ev.Content)
		if ev.Content == "" && ev.RequestID == "" && ev.Type != EventError {
			continue
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			// Keep draining so the runner can finish and exit.
			go func() {
				for range raw {
				}
			}()
			return
		}
	}
}

// handoffRunner is the production workflow loop: run the current agent,
// follow its directive, repeat until a final reply or a pause.
type handoffRunner struct{}

func (r *handoffRunner) run(ctx context.Context, o *ContentOrchestrator, startAgent, conversationID string, transcript []llm.Message, out chan<- AgentEvent) {
	current := startAgent

	for hop := 0; hop < maxHandoffs; hop++ {
		agent, ok := o.agents[current]
		if !ok {
			out <- AgentEvent{Type: EventError, Content: "An internal routing error occurred.", IsFinal: true}
			return
		}

		reply, err := agent.RunMessages(ctx, o.chat, transcript)
		if err != nil {
			o.log.ErrorWithErr(conversationID, "", "agent turn failed", err,
				map[string]interface{}{"agent": current})
			out <- AgentEvent{Type: EventError, Content: "Something went wrong generating a response. Please try again.", AgentName: current, IsFinal: true}
			return
		}

		text, target, awaitUser := parseDirective(reply)
		transcript = append(transcript, llm.Message{Role: llm.RoleAssistant, Content: reply})

		if awaitUser {
			requestID := uuid.New().String()
			o.pending.Store(requestID, &pausedWorkflow{
				agentID:        current,
				conversationID: conversationID,
				transcript:     transcript,
			})
			out <- AgentEvent{Type: EventMessage, Content: text, AgentName: current, IsFinal: true, RequestID: requestID}
			return
		}

		if target != "" {
			if _, exists := o.agents[target]; exists && o.graph.CanHandoff(current, target) {
				if text != "" {
					out <- AgentEvent{Type: EventThinking, Content: text, AgentName: current}
				}
				o.log.Debug(conversationID, "", "agent handoff",
					map[string]interface{}{"from": current, "to": target})
				current = target
				continue
			}
			o.log.Warn(conversationID, "", "handoff rejected",
				map[string]interface{}{"from": current, "to": target})
		}

		out <- AgentEvent{Type: EventMessage, Content: text, AgentName: current, IsFinal: true}
		return
	}

	o.log.Error(conversationID, "", "handoff limit reached", map[string]interface{}{"start": startAgent})
	out <- AgentEvent{Type: EventError, Content: "The request could not be completed.", IsFinal: true}
}

// ParseBrief extracts a creative brief from the conversation so far.
// The local safety gate runs first; the RAI agent then gives a second
// opinion, failing open when it is unreachable. A TRUE classification
// blocks the parse with ErrContentBlocked.
func (o *ContentOrchestrator) ParseBrief(ctx context.Context, conversationText, conversationID string) (BriefExtraction, error) {
	if harmful, category := CheckHarmfulContent(conversationText); harmful {
		o.log.Warn(conversationID, "", "brief parse blocked by safety filter",
			map[string]interface{}{"category": category})
		return BriefExtraction{}, ErrContentBlocked
	}

	verdict, err := o.agents[AgentRAI].Run(ctx, o.chat, conversationText)
	if err != nil {
		// The classifier being down must not stall the product; the
		// local gate already ran.
		o.log.ErrorWithErr(conversationID, "", "RAI classification failed, continuing", err, nil)
	} else if strings.EqualFold(strings.TrimSpace(verdict), "TRUE") {
		o.log.Warn(conversationID, "", "brief parse blocked by RAI classifier", nil)
		return BriefExtraction{}, ErrContentBlocked
	}

	prompt := "Produce the creative brief from this conversation:\n\n" + conversationText
	reply, err := o.agents[AgentPlanning].Run(ctx, o.chat, prompt)
	if err != nil {
		return BriefExtraction{}, fmt.Errorf("planning agent: %w", err)
	}

	return ExtractBrief(reply), nil
}

// SelectProducts resolves a product selection request against the
// catalog. A reply the research agent cannot express as JSON becomes an
// "error" action rather than a failed call, so the conversation can
// continue.
func (o *ContentOrchestrator) SelectProducts(ctx context.Context, request string, current, catalog []Product, conversationID string) (ProductSelection, error) {
	if harmful, _ := CheckHarmfulContent(request); harmful {
		return ProductSelection{}, ErrContentBlocked
	}

	currentJSON, _ := json.Marshal(current)
	catalogJSON, _ := json.Marshal(catalog)
	prompt := fmt.Sprintf("Currently selected products:\n%s\n\nCatalog:\n%s\n\nUser request: %s",
		currentJSON, catalogJSON, request)

	reply, err := o.agents[AgentResearch].Run(ctx, o.chat, prompt)
	if err != nil {
		return ProductSelection{}, fmt.Errorf("research agent: %w", err)
	}

	var selection ProductSelection
	if err := json.Unmarshal([]byte(extractJSONObject(reply)), &selection); err != nil {
		o.log.Warn(conversationID, "", "unparseable product selection reply",
			map[string]interface{}{"reply_length": len(reply)})
		return ProductSelection{
			Action:  "error",
			Message: "I couldn't process that product selection. Could you rephrase it?",
		}, nil
	}
	return selection, nil
}

// extractJSONObject returns the first top-level JSON object in text, or
// the text itself when none is found. Models wrap JSON in prose often
// enough that the cheap scan pays for itself.
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	if start < 0 {
		return text
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return text
}
