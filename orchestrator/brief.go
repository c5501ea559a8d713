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
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// BriefExtraction is the outcome of parsing a planning agent reply.
type BriefExtraction struct {
	Brief             CreativeBrief
	Complete          bool
	MissingFields     []string
	ClarifyingMessage string
	// Source records which tier produced the result: "json", "fenced",
	// or "scrape".
	Source string
}

var fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ExtractBrief parses a planning agent reply into a creative brief.
// Three tiers run in order, each stricter than the next is lenient:
//
//  1. the whole reply is a JSON object
//  2. the reply contains a fenced ```json block
//  3. the reply is prose with "Label: value" lines to scrape
//
// The first tier that yields at least one populated field wins; later
// tiers never run, so a valid JSON reply is never second-guessed by the
// scraper. Degenerate input yields an empty, incomplete extraction
// rather than an error: the conversation continues either way.
func ExtractBrief(raw string) BriefExtraction {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return BriefExtraction{}
	}

	if ex, ok := extractFromJSON(trimmed); ok {
		ex.Source = "json"
		return ex
	}

	if m := fencedJSONRe.FindStringSubmatch(trimmed); m != nil {
		if ex, ok := extractFromJSON(m[1]); ok {
			ex.Source = "fenced"
			return ex
		}
	}

	if ex, ok := scrapeBriefLines(trimmed); ok {
		ex.Source = "scrape"
		return ex
	}

	return BriefExtraction{}
}

// extractFromJSON handles both reply shapes the planning agent produces:
//
//	{"status": ..., "extracted_fields": {...}, "missing_fields": [...], "clarifying_message": ...}
//	{"creative_brief": {...}, "is_complete": true}
func extractFromJSON(text string) (BriefExtraction, bool) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &envelope); err != nil {
		return BriefExtraction{}, false
	}

	var ex BriefExtraction
	var fields map[string]interface{}

	if rawFields, ok := envelope["extracted_fields"]; ok {
		if json.Unmarshal(rawFields, &fields) != nil {
			return BriefExtraction{}, false
		}
		var status string
		_ = json.Unmarshal(envelope["status"], &status)
		ex.Complete = strings.EqualFold(status, "complete")
		_ = json.Unmarshal(envelope["missing_fields"], &ex.MissingFields)
		_ = json.Unmarshal(envelope["clarifying_message"], &ex.ClarifyingMessage)
	} else if rawBrief, ok := envelope["creative_brief"]; ok {
		if json.Unmarshal(rawBrief, &fields) != nil {
			return BriefExtraction{}, false
		}
		_ = json.Unmarshal(envelope["is_complete"], &ex.Complete)
	} else {
		// A bare field object with no envelope at all.
		if json.Unmarshal([]byte(text), &fields) != nil {
			return BriefExtraction{}, false
		}
	}

	ex.Brief = briefFromFields(fields)
	if ex.Brief.IsEmpty() && ex.ClarifyingMessage == "" && len(ex.MissingFields) == 0 {
		return BriefExtraction{}, false
	}
	return ex, true
}

func briefFromFields(fields map[string]interface{}) CreativeBrief {
	var b CreativeBrief
	for key, value := range fields {
		s := coerceToString(value)
		switch normalizeFieldName(key) {
		case "overview":
			b.Overview = s
		case "objectives":
			b.Objectives = s
		case "target_audience":
			b.TargetAudience = s
		case "key_message":
			b.KeyMessage = s
		case "tone_and_style":
			b.ToneAndStyle = s
		case "deliverable":
			b.Deliverable = s
		case "timelines":
			b.Timelines = s
		case "visual_guidelines":
			b.VisualGuidelines = s
		case "cta":
			b.CTA = s
		}
	}
	return b
}

// normalizeFieldName maps the naming variants models produce onto the
// canonical snake_case field names.
func normalizeFieldName(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.NewReplacer(" ", "_", "-", "_").Replace(k)
	switch k {
	case "audience":
		return "target_audience"
	case "message":
		return "key_message"
	case "tone", "style", "tone_style":
		return "tone_and_style"
	case "deliverables":
		return "deliverable"
	case "timeline", "timing":
		return "timelines"
	case "visuals", "visual_guideline":
		return "visual_guidelines"
	case "call_to_action":
		return "cta"
	}
	return k
}

// coerceToString flattens whatever JSON value a model put in a brief
// field into a plain string. Objects become "key: value; key: value"
// with sorted keys, arrays join with commas, null becomes empty.
func coerceToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := coerceToString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+coerceToString(v[k]))
		}
		return strings.Join(parts, "; ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// briefLabels maps the prose labels the planning agent writes to field
// setters for the scraping tier. Longer labels must be checked before
// their prefixes ("Target Audience" before a hypothetical "Target").
var briefLabels = []struct {
	label string
	set   func(*CreativeBrief, string)
}{
	{"overview", func(b *CreativeBrief, v string) { b.Overview = v }},
	{"objectives", func(b *CreativeBrief, v string) { b.Objectives = v }},
	{"objective", func(b *CreativeBrief, v string) { b.Objectives = v }},
	{"target audience", func(b *CreativeBrief, v string) { b.TargetAudience = v }},
	{"audience", func(b *CreativeBrief, v string) { b.TargetAudience = v }},
	{"key message", func(b *CreativeBrief, v string) { b.KeyMessage = v }},
	{"tone and style", func(b *CreativeBrief, v string) { b.ToneAndStyle = v }},
	{"tone", func(b *CreativeBrief, v string) { b.ToneAndStyle = v }},
	{"deliverables", func(b *CreativeBrief, v string) { b.Deliverable = v }},
	{"deliverable", func(b *CreativeBrief, v string) { b.Deliverable = v }},
	{"timelines", func(b *CreativeBrief, v string) { b.Timelines = v }},
	{"timeline", func(b *CreativeBrief, v string) { b.Timelines = v }},
	{"visual guidelines", func(b *CreativeBrief, v string) { b.VisualGuidelines = v }},
	{"call to action", func(b *CreativeBrief, v string) { b.CTA = v }},
	{"cta", func(b *CreativeBrief, v string) { b.CTA = v }},
}

// scrapeBriefLines is the last-resort tier: pull "Label: value" lines
// out of a prose reply. Later lines overwrite earlier ones, so the
// final mention of a field wins.
func scrapeBriefLines(text string) (BriefExtraction, bool) {
	var b CreativeBrief
	found := false

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*# \t"))
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		label := strings.ToLower(strings.TrimSpace(strings.Trim(line[:idx], "*_")))
		value := strings.TrimSpace(strings.Trim(line[idx+1:], "*_ "))
		if value == "" {
			continue
		}
		for _, bl := range briefLabels {
			if label == bl.label {
				bl.set(&b, value)
				found = true
				break
			}
		}
	}

	if !found {
		return BriefExtraction{}, false
	}
	// Scraped briefs carry no completeness signal; treat every field
	// present as complete, anything less as needing another turn.
	complete := b.Overview != "" && b.Objectives != "" && b.TargetAudience != "" &&
		b.KeyMessage != "" && b.ToneAndStyle != "" && b.Deliverable != "" &&
		b.Timelines != "" && b.VisualGuidelines != "" && b.CTA != ""
	return BriefExtraction{Brief: b, Complete: complete}, true
}
