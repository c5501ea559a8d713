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
	"strings"
	"unicode"

	"github.com/ScorpiusDraconis83/document-generation-solution-accelerator/orchestrator/llm"
)

const defaultConversationTitle = "New Conversation"

// GenerateTitle summarizes a conversation into a short list title. The
// model is asked for four words or fewer; whatever comes back is clamped
// and stripped of punctuation so a misbehaving reply still yields a
// usable title. Model failure falls back to the first words of the
// user's opening message.
func (o *ContentOrchestrator) GenerateTitle(ctx context.Context, conversationText string) string {
	agent := &llm.Agent{Name: "title_agent", Instructions: TitleInstructions, MaxTokens: 16}

	reply, err := agent.Run(ctx, o.chat, conversationText)
	if err != nil {
		o.log.ErrorWithErr("", "", "title generation failed, using fallback", err, nil)
		return fallbackTitle(conversationText)
	}

	title := sanitizeTitle(reply)
	if title == "" {
		return fallbackTitle(conversationText)
	}
	return title
}

// sanitizeTitle strips quotes and punctuation and clamps to four words.
func sanitizeTitle(raw string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, raw)

	words := strings.Fields(cleaned)
	if len(words) > 4 {
		words = words[:4]
	}
	return strings.Join(words, " ")
}

func fallbackTitle(conversationText string) string {
	if title := sanitizeTitle(firstLine(conversationText)); title != "" {
		return title
	}
	return defaultConversationTitle
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
