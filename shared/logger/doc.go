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
Package logger provides structured JSON logging for the content-generation
service components.

# Overview

The logger outputs single-line JSON to stdout, making logs easily consumable
by Azure Monitor, ELK, or any other log aggregation system.

Each log entry includes:
  - Timestamp (RFC3339Nano format)
  - Log level (DEBUG, INFO, WARN, ERROR)
  - Component name (orchestrator, imagegen, cosmos, etc.)
  - Instance ID and container name (for distributed tracing)
  - Conversation ID (for per-conversation correlation)
  - Request ID (for request correlation)
  - Custom fields

# Usage

Create a logger for your component:

	log := logger.New("orchestrator")

Log messages with conversation and request context:

	log.Info("conv-123", "req-456", "Processing message", map[string]interface{}{
	    "agent": "triage",
	})

Log errors with the underlying error attached:

	log.ErrorWithErr("conv-123", "req-456", "Image generation failed", err, nil)

Log with duration tracking:

	start := time.Now()
	// ... do work ...
	log.InfoWithDuration("conv-123", "req-456", "Generation completed",
	    float64(time.Since(start).Milliseconds()), nil)

# Thread Safety

Logger instances are safe for concurrent use from multiple goroutines.
*/
package logger
