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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBriefStrictJSON(t *testing.T) {
	raw := `{
		"status": "complete",
		"extracted_fields": {
			"overview": "Spring paint launch",
			"objectives": "Drive awareness",
			"target_audience": "Homeowners",
			"key_message": "Color that lasts",
			"tone_and_style": "Warm and confident",
			"deliverable": "Social media campaign",
			"timelines": "Q2 2026",
			"visual_guidelines": "Bright, airy rooms",
			"cta": "Shop the collection"
		},
		"missing_fields": [],
		"clarifying_message": ""
	}`

	ex := ExtractBrief(raw)
	assert.Equal(t, "json", ex.Source)
	assert.True(t, ex.Complete)
	assert.Equal(t, "Spring paint launch", ex.Brief.Overview)
	assert.Equal(t, "Shop the collection", ex.Brief.CTA)
	assert.Empty(t, ex.MissingFields)
}

func TestExtractBriefIncompleteWithClarification(t *testing.T) {
	raw := `{
		"status": "incomplete",
		"extracted_fields": {"overview": "New sneaker line"},
		"missing_fields": ["target_audience", "cta"],
		"clarifying_message": "Who is the campaign for?"
	}`

	ex := ExtractBrief(raw)
	assert.False(t, ex.Complete)
	assert.Equal(t, []string{"target_audience", "cta"}, ex.MissingFields)
	assert.Equal(t, "Who is the campaign for?", ex.ClarifyingMessage)
	assert.Equal(t, "New sneaker line", ex.Brief.Overview)
}

func TestExtractBriefCreativeBriefEnvelope(t *testing.T) {
	raw := `{
		"creative_brief": {
			"overview": "Holiday promo",
			"objectives": "Boost December sales",
			"target_audience": "Gift shoppers",
			"key_message": "Give something lasting",
			"tone_and_style": "Festive",
			"deliverable": "Email series",
			"timelines": "December",
			"visual_guidelines": "Red and gold",
			"cta": "Order by Dec 20"
		},
		"is_complete": true
	}`

	ex := ExtractBrief(raw)
	assert.Equal(t, "json", ex.Source)
	assert.True(t, ex.Complete)
	assert.Equal(t, "Holiday promo", ex.Brief.Overview)
	assert.Equal(t, "Order by Dec 20", ex.Brief.CTA)
}

func TestExtractBriefFencedBlock(t *testing.T) {
	raw := "Here is the brief you asked for:\n```json\n" +
		`{"extracted_fields": {"overview": "Gym membership drive", "cta": "Join today"}, "status": "incomplete"}` +
		"\n```\nLet me know if anything needs adjusting."

	ex := ExtractBrief(raw)
	assert.Equal(t, "fenced", ex.Source)
	assert.Equal(t, "Gym membership drive", ex.Brief.Overview)
	assert.Equal(t, "Join today", ex.Brief.CTA)
}

func TestExtractBriefLineScraping(t *testing.T) {
	raw := `Here's what I have so far:

Overview: Launch campaign for eco-friendly detergent
Objectives: Grow market share by 5%
Target Audience: Environmentally conscious families
Key Message: Clean clothes, clean conscience
Tone and Style: Fresh and optimistic
Deliverable: Video ad script
Timelines: Next quarter
Visual Guidelines: Green palette, natural light
CTA: Try it free`

	ex := ExtractBrief(raw)
	assert.Equal(t, "scrape", ex.Source)
	assert.True(t, ex.Complete)
	assert.Equal(t, "Environmentally conscious families", ex.Brief.TargetAudience)
	assert.Equal(t, "Clean clothes, clean conscience", ex.Brief.KeyMessage)
	assert.Equal(t, "Try it free", ex.Brief.CTA)
}

func TestExtractBriefScrapePartialIsIncomplete(t *testing.T) {
	raw := "Overview: A campaign\nCTA: Buy now"

	ex := ExtractBrief(raw)
	assert.Equal(t, "scrape", ex.Source)
	assert.False(t, ex.Complete)
	assert.Equal(t, "A campaign", ex.Brief.Overview)
	assert.Equal(t, "Buy now", ex.Brief.CTA)
}

func TestExtractBriefJSONWinsOverScraping(t *testing.T) {
	// Valid JSON must not fall through to the scraper even though the
	// values contain colons.
	raw := `{"extracted_fields": {"overview": "Ratio: 2:1 format test"}, "status": "incomplete"}`

	ex := ExtractBrief(raw)
	assert.Equal(t, "json", ex.Source)
	assert.Equal(t, "Ratio: 2:1 format test", ex.Brief.Overview)
}

func TestExtractBriefNothingFoundIsEmptyNotError(t *testing.T) {
	ex := ExtractBrief("I'm sorry, could you tell me more about your product?")
	assert.True(t, ex.Brief.IsEmpty())
	assert.False(t, ex.Complete)
	assert.Empty(t, ex.ClarifyingMessage)

	ex = ExtractBrief("")
	assert.True(t, ex.Brief.IsEmpty())
	assert.Empty(t, ex.Source)
}

func TestCoerceToString(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{"string", "  hello  ", "hello"},
		{"null", nil, ""},
		{"int", float64(42), "42"},
		{"float", 3.5, "3.5"},
		{"bool", true, "true"},
		{"list", []interface{}{"a", "b", "c"}, "a, b, c"},
		{"list with empties", []interface{}{"a", nil, "b"}, "a, b"},
		{"map sorted", map[string]interface{}{"tone": "warm", "pace": "fast"}, "pace: fast; tone: warm"},
		{"nested", map[string]interface{}{"colors": []interface{}{"red", "gold"}}, "colors: red, gold"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceToString(tt.value))
		})
	}
}

func TestBriefFromFieldsNameVariants(t *testing.T) {
	b := briefFromFields(map[string]interface{}{
		"Overview":       "x",
		"audience":       "families",
		"call to action": "buy",
		"tone":           "playful",
		"timeline":       "Q3",
	})
	assert.Equal(t, "x", b.Overview)
	assert.Equal(t, "families", b.TargetAudience)
	assert.Equal(t, "buy", b.CTA)
	assert.Equal(t, "playful", b.ToneAndStyle)
	assert.Equal(t, "Q3", b.Timelines)
}

func TestBriefSummaryOmitsEmptyFields(t *testing.T) {
	b := CreativeBrief{Overview: "A launch", CTA: "Go"}
	s := b.Summary()
	assert.Contains(t, s, "Overview: A launch")
	assert.Contains(t, s, "CTA: Go")
	assert.NotContains(t, s, "Objectives")
}
