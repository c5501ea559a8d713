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

package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"testing"
	"time"
)

// captureEntry runs fn with log output captured and returns the parsed entry.
func captureEntry(t *testing.T, fn func()) LogEntry {
	t.Helper()

	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	fn()

	output := buf.String()
	jsonStart := strings.Index(output, "{")
	if jsonStart == -1 {
		t.Fatalf("no JSON found in log output: %q", output)
	}

	var entry LogEntry
	if err := json.Unmarshal([]byte(strings.TrimSpace(output[jsonStart:])), &entry); err != nil {
		t.Fatalf("failed to parse JSON log: %v\noutput: %s", err, output)
	}
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name           string
		component      string
		instanceID     string
		expectedInstID string
	}{
		{
			name:           "with instance ID set",
			component:      "orchestrator",
			instanceID:     "instance-123",
			expectedInstID: "instance-123",
		},
		{
			name:           "without instance ID",
			component:      "imagegen",
			instanceID:     "",
			expectedInstID: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.instanceID != "" {
				t.Setenv("INSTANCE_ID", tt.instanceID)
			} else {
				if err := os.Unsetenv("INSTANCE_ID"); err != nil {
					t.Fatalf("failed to unset INSTANCE_ID: %v", err)
				}
			}

			l := New(tt.component)

			if l.Component != tt.component {
				t.Errorf("expected component %s, got %s", tt.component, l.Component)
			}
			if l.InstanceID != tt.expectedInstID {
				t.Errorf("expected instance ID %s, got %s", tt.expectedInstID, l.InstanceID)
			}
			if l.Container == "" {
				t.Error("expected container to be set from hostname")
			}
		})
	}
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		name           string
		logFunc        func(*Logger, string, string, string, map[string]interface{})
		level          LogLevel
		message        string
		conversationID string
		requestID      string
		fields         map[string]interface{}
	}{
		{
			name:           "Info log",
			logFunc:        (*Logger).Info,
			level:          INFO,
			message:        "processing message",
			conversationID: "conv-123",
			requestID:      "req-456",
			fields:         map[string]interface{}{"agent": "triage"},
		},
		{
			name:           "Error log",
			logFunc:        (*Logger).Error,
			level:          ERROR,
			message:        "image generation failed",
			conversationID: "conv-789",
			requestID:      "req-012",
			fields:         map[string]interface{}{"model": "dall-e-3"},
		},
		{
			name:           "Warn log",
			logFunc:        (*Logger).Warn,
			level:          WARN,
			message:        "RAI check unavailable",
			conversationID: "conv-abc",
			requestID:      "req-def",
			fields:         nil,
		},
		{
			name:           "Debug log",
			logFunc:        (*Logger).Debug,
			level:          DEBUG,
			message:        "brief parse fell through to line scraping",
			conversationID: "conv-xyz",
			requestID:      "req-uvw",
			fields:         map[string]interface{}{"tier": 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := captureEntry(t, func() {
				l := New("test-component")
				tt.logFunc(l, tt.conversationID, tt.requestID, tt.message, tt.fields)
			})

			if entry.Level != tt.level {
				t.Errorf("expected level %s, got %s", tt.level, entry.Level)
			}
			if entry.Message != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, entry.Message)
			}
			if entry.ConversationID != tt.conversationID {
				t.Errorf("expected conversation ID %q, got %q", tt.conversationID, entry.ConversationID)
			}
			if entry.RequestID != tt.requestID {
				t.Errorf("expected request ID %q, got %q", tt.requestID, entry.RequestID)
			}
			if _, err := time.Parse(time.RFC3339Nano, entry.Timestamp); err != nil {
				t.Errorf("invalid timestamp format: %s", entry.Timestamp)
			}
		})
	}
}

func TestInfoWithDuration(t *testing.T) {
	entry := captureEntry(t, func() {
		l := New("test-component")
		l.InfoWithDuration("conv-123", "req-456", "generation completed", 123.45, map[string]interface{}{
			"operation": "generate_content",
		})
	})

	if entry.Fields["duration_ms"] != 123.45 {
		t.Errorf("expected duration_ms 123.45, got %v", entry.Fields["duration_ms"])
	}
	if entry.Fields["operation"] != "generate_content" {
		t.Errorf("expected operation field to be preserved, got %v", entry.Fields["operation"])
	}
	if entry.Level != INFO {
		t.Errorf("expected INFO level, got %s", entry.Level)
	}
}

func TestErrorWithErr(t *testing.T) {
	entry := captureEntry(t, func() {
		l := New("test-component")
		l.ErrorWithErr("conv-123", "req-456", "blob upload failed", errors.New("connection refused"), nil)
	})

	if entry.Level != ERROR {
		t.Errorf("expected ERROR level, got %s", entry.Level)
	}
	if entry.Fields["error"] != "connection refused" {
		t.Errorf("expected error field, got %v", entry.Fields["error"])
	}
}

func TestJSONMarshalError(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	l := New("test-component")

	// Channels cannot be marshaled to JSON
	l.Info("conv-123", "req-456", "test message", map[string]interface{}{
		"channel": make(chan int),
	})

	if !strings.Contains(buf.String(), "Failed to marshal log entry") {
		t.Error("expected error message about JSON marshaling failure")
	}
}
