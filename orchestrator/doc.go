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

/*
Package orchestrator coordinates the multi-agent marketing content
generation workflow.

A user turn enters through ProcessMessage, passes the local safety
filter, and is routed through a fixed roster of agents (triage,
planning, research, text, image, compliance) connected by a handoff
graph. Agents steer the workflow with trailing directives in their
replies; the coordinator validates each transfer against the graph,
scrubs internal detail from everything the client sees, and pauses runs
that need another user answer.

The one-shot path lives in ContentPipeline: given a completed creative
brief it generates copy, runs a compliance review, and optionally
produces an accompanying image through the imagegen router, persisting
it to blob storage with an inline base64 fallback.

Run wires the HTTP surface: SSE chat streams, brief extraction, product
selection, generation, image regeneration with task polling, and
conversation history backed by Cosmos DB.
*/
package orchestrator
