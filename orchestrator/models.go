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

import "strings"

// CreativeBrief is the structured campaign requirement object driving
// content generation. Every field is always a plain string; extraction
// coerces whatever shape the model produced (see brief.go). A brief is
// immutable once constructed, except for full replacement on re-parse.
type CreativeBrief struct {
	Overview         string `json:"overview"`
	Objectives       string `json:"objectives"`
	TargetAudience   string `json:"target_audience"`
	KeyMessage       string `json:"key_message"`
	ToneAndStyle     string `json:"tone_and_style"`
	Deliverable      string `json:"deliverable"`
	Timelines        string `json:"timelines"`
	VisualGuidelines string `json:"visual_guidelines"`
	CTA              string `json:"cta"`
}

// Summary renders the brief as prose for safety classification and as
// agent input.
func (b CreativeBrief) Summary() string {
	parts := []struct{ label, value string }{
		{"Overview", b.Overview},
		{"Objectives", b.Objectives},
		{"Target Audience", b.TargetAudience},
		{"Key Message", b.KeyMessage},
		{"Tone and Style", b.ToneAndStyle},
		{"Deliverable", b.Deliverable},
		{"Timelines", b.Timelines},
		{"Visual Guidelines", b.VisualGuidelines},
		{"CTA", b.CTA},
	}

	var sb strings.Builder
	for _, p := range parts {
		if p.value == "" {
			continue
		}
		sb.WriteString(p.label)
		sb.WriteString(": ")
		sb.WriteString(p.value)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// IsEmpty reports whether no field was extracted.
func (b CreativeBrief) IsEmpty() bool {
	return b == CreativeBrief{}
}

// AgentEventType tags client-facing events.
type AgentEventType string

const (
	EventThinking AgentEventType = "thinking"
	EventMessage  AgentEventType = "message"
	EventError    AgentEventType = "error"
)

// AgentEvent is one element of the client-facing response stream.
// Ordering is the emission order of the underlying workflow; later events
// may supersede earlier non-final ones, but none are retracted.
type AgentEvent struct {
	Type      AgentEventType `json:"type"`
	Content   string         `json:"content"`
	AgentName string         `json:"agent_name,omitempty"`
	IsFinal   bool           `json:"is_final"`
	// RequestID is set when the workflow paused for user input; the
	// client echoes it back through the user-response endpoint.
	RequestID string `json:"request_id,omitempty"`
}

// ComplianceViolation is one finding from the compliance agent.
type ComplianceViolation struct {
	Severity string `json:"severity"` // "info", "warning", or "error"
	Message  string `json:"message"`
}

// ComplianceResult aggregates the compliance agent's findings.
type ComplianceResult struct {
	Violations []ComplianceViolation `json:"violations"`
}

// HasErrors reports whether any violation carries error severity.
func (r ComplianceResult) HasErrors() bool {
	for _, v := range r.Violations {
		if v.Severity == "error" {
			return true
		}
	}
	return false
}

// HasWarnings reports whether any violation carries warning severity.
func (r ComplianceResult) HasWarnings() bool {
	for _, v := range r.Violations {
		if v.Severity == "warning" {
			return true
		}
	}
	return false
}

// Product is one catalog entry offered to or selected by the user.
type Product struct {
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

// ProductSelection is the outcome of a product selection request.
// Action "error" signals an unparseable model response; the message is
// safe to show the user.
type ProductSelection struct {
	SelectedProducts []Product `json:"selected_products"`
	Action           string    `json:"action"` // "add", "remove", "replace", "none", "error"
	Message          string    `json:"message"`
}

// ContentResult is the outcome of the one-shot generation and image
// regeneration paths. RAIBlocked and ImageError are distinct so callers
// can tell "refused" from "failed". At most one of ImageBlobURL and
// ImageBase64 is set: inline base64 is the fallback when blob storage
// is unavailable.
type ContentResult struct {
	TextContent          string           `json:"text_content,omitempty"`
	Compliance           ComplianceResult `json:"compliance"`
	RequiresModification bool             `json:"requires_modification"`
	ImagePrompt          string           `json:"image_prompt,omitempty"`
	ImageBlobURL         string           `json:"image_blob_url,omitempty"`
	ImageBase64          string           `json:"image_base64,omitempty"`
	ImageError           string           `json:"image_error,omitempty"`
	RAIBlocked           bool             `json:"rai_blocked,omitempty"`
	Error                string           `json:"error,omitempty"`
}
