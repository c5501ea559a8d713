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
	"regexp"
	"strings"
)

// HandoffGraph is the set of permitted agent-to-agent transfers. An
// agent's reply may only route to a target the graph allows; anything
// else ends the workflow at that agent.
type HandoffGraph struct {
	edges map[string]map[string]bool
}

// HandoffBuilder assembles a HandoffGraph edge by edge.
type HandoffBuilder struct {
	graph *HandoffGraph
}

// NewHandoffBuilder starts an empty graph.
func NewHandoffBuilder() *HandoffBuilder {
	return &HandoffBuilder{graph: &HandoffGraph{edges: make(map[string]map[string]bool)}}
}

// Allow permits transfers from one agent to each of the listed targets.
func (b *HandoffBuilder) Allow(from string, targets ...string) *HandoffBuilder {
	set := b.graph.edges[from]
	if set == nil {
		set = make(map[string]bool)
		b.graph.edges[from] = set
	}
	for _, t := range targets {
		set[t] = true
	}
	return b
}

// Build returns the assembled graph.
func (b *HandoffBuilder) Build() *HandoffGraph {
	return b.graph
}

// CanHandoff reports whether the graph permits the transfer.
func (g *HandoffGraph) CanHandoff(from, to string) bool {
	if g == nil {
		return false
	}
	return g.edges[from][to]
}

// Targets returns the permitted targets for an agent, unordered.
func (g *HandoffGraph) Targets(from string) []string {
	var out []string
	for t := range g.edges[from] {
		out = append(out, t)
	}
	return out
}

// defaultHandoffGraph is the content generation workflow topology.
// rai_agent is reachable from everywhere: any agent can escalate a
// suspicious turn for classification.
func defaultHandoffGraph() *HandoffGraph {
	b := NewHandoffBuilder().
		Allow(AgentTriage, AgentPlanning, AgentResearch).
		Allow(AgentPlanning, AgentResearch, AgentTextContent).
		Allow(AgentResearch, AgentTextContent).
		Allow(AgentTextContent, AgentImageContent, AgentCompliance).
		Allow(AgentImageContent, AgentCompliance)
	for _, from := range []string{AgentTriage, AgentPlanning, AgentResearch, AgentTextContent, AgentImageContent, AgentCompliance} {
		b.Allow(from, AgentRAI)
	}
	return b.Build()
}

var handoffDirectiveRe = regexp.MustCompile(`\[handoff:([\w-]+)\]`)

// parseDirective inspects an agent reply for a trailing workflow
// directive. It returns the reply with the directive removed, the
// handoff target if one was requested, and whether the agent asked to
// pause for user input. When a reply carries both, the pause wins and
// the handoff is discarded.
func parseDirective(reply string) (text, target string, awaitUser bool) {
	text = reply
	if strings.Contains(text, awaitUserDirective) {
		awaitUser = true
		text = strings.ReplaceAll(text, awaitUserDirective, "")
	}
	if m := handoffDirectiveRe.FindStringSubmatch(text); m != nil {
		if !awaitUser {
			target = m[1]
		}
		text = handoffDirectiveRe.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text), target, awaitUser
}
