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

// harmfulPattern pairs a category label with a compiled matcher. The
// label is for logs only; it never reaches the user.
type harmfulPattern struct {
	Category string
	Pattern  *regexp.Regexp
}

// Patterns match intent, not bare keywords: "explosive growth" and
// "killer deal" are everyday marketing language and must pass, while
// "create explosive device" must not. Matching is case-insensitive and
// operates on the raw input.
var harmfulPatterns = []harmfulPattern{
	{"violence", regexp.MustCompile(`(?i)\b(?:make|build|making|building|construct)\b.{0,40}\bbombs?\b`)},
	{"violence", regexp.MustCompile(`(?i)\bbombs?\b.{0,30}\b(?:instructions|recipe|tutorial)\b`)},
	{"violence", regexp.MustCompile(`(?i)\bexplosive\s+devices?\b`)},
	{"violence", regexp.MustCompile(`(?i)\b(?:kill|murder|harm|hurt|attack)\b.{0,40}\b(?:people|person|someone|crowd|children|civilians)\b`)},
	{"violence", regexp.MustCompile(`(?i)\bmass\s+(?:shooting|casualt)`)},
	{"weapons", regexp.MustCompile(`(?i)\b(?:make|build|print|obtain)\b.{0,30}\b(?:untraceable|ghost)\s+guns?\b`)},
	{"illegal_drugs", regexp.MustCompile(`(?i)\b(?:sell|selling|buy|buying|make|making|cook|cooking|synthesize|deal|dealing|traffic)\b.{0,40}\bdrugs?\b`)},
	{"illegal_drugs", regexp.MustCompile(`(?i)\b(?:meth|methamphetamine|fentanyl|heroin|cocaine)\b.{0,30}\b(?:recipe|synthesis|make|cook)\b`)},
	{"cybercrime", regexp.MustCompile(`(?i)\b(?:create|write|creating|writing|build|spread|spreading|deploy)\b.{0,40}\b(?:malware|ransomware|spyware|keylogger|viruses)\b`)},
	{"cybercrime", regexp.MustCompile(`(?i)\bmalware\b.{0,30}\b(?:spread|distribute|deploy)\b`)},
	{"cybercrime", regexp.MustCompile(`(?i)\b(?:hack|hacking|break|breaking)\s+into\b.{0,40}\b(?:accounts?|systems?|networks?|computers?|databases?|servers?|phones?|emails?)\b`)},
	{"hate", regexp.MustCompile(`(?i)\b(?:racist|antisemitic|homophobic|xenophobic|white\s+supremacist)\b.{0,40}\b(?:content|campaign|material|propaganda|message|ad)`)},
	{"hate", regexp.MustCompile(`(?i)\b(?:create|write|generate|produce)\b.{0,40}\bhate\s*speech\b`)},
	{"self_harm", regexp.MustCompile(`(?i)\bsuicide\s+(?:methods?|techniques?|instructions?|how)\b`)},
	{"self_harm", regexp.MustCompile(`(?i)\bhow\s+to\s+(?:commit\s+suicide|self.?harm)\b`)},
	{"disinformation", regexp.MustCompile(`(?i)\b(?:spread|spreading|create|creating|launch)\b.{0,40}\b(?:fake\s+news|disinformation|misinformation)\b`)},
	{"disinformation", regexp.MustCompile(`(?i)\bfake\s+news\s+campaign\b`)},
}

// CheckHarmfulContent classifies input against the local pattern set.
// It returns whether the input is harmful and the matched category.
// Empty input is safe. This gate runs before any model call and is the
// cheap first tier; the RAI agent is the second opinion for free text.
func CheckHarmfulContent(text string) (bool, string) {
	if strings.TrimSpace(text) == "" {
		return false, ""
	}
	for _, p := range harmfulPatterns {
		if p.Pattern.MatchString(text) {
			return true, p.Category
		}
	}
	return false, ""
}

// Scrubbing patterns for model output. Agent replies sometimes leak
// internal orchestration detail; every outbound string passes through
// FilterSystemPrompt before the client sees it.
var (
	rolePreambleRe = regexp.MustCompile(`(?i)you\s+are\s+an?\s+[\w -]*agent\b[^.\n]*[.\n]?`)
	handoffTalkRe  = regexp.MustCompile(`(?i)[^.\n]*\bhand(?:ing)?\s*(?:off|over)?\s+to\s+\w+_agent\b[^.\n]*[.\n]?`)
	agentNameRe    = regexp.MustCompile(`\b\w+_agent\b`)
	criticalLineRe = regexp.MustCompile(`(?m)^\s*#{0,6}\s*CRITICAL:.*$`)
	directiveRe    = regexp.MustCompile(`\[(?:handoff:[\w-]+|await_user)\]`)
	blankRunsRe    = regexp.MustCompile(`\n{3,}`)
	spaceRunsRe    = regexp.MustCompile(`[ \t]{2,}`)
)

// FilterSystemPrompt removes instruction fragments, internal agent
// identifiers, and workflow directives from model output. Safe text
// passes through unchanged, and the filter is idempotent.
func FilterSystemPrompt(text string) string {
	if text == "" {
		return ""
	}
	// Directives first: agentNameRe would otherwise gut "[handoff:x]"
	// and leave an unmatchable bracket fragment behind.
	out := directiveRe.ReplaceAllString(text, "")
	out = rolePreambleRe.ReplaceAllString(out, "")
	out = handoffTalkRe.ReplaceAllString(out, "")
	out = agentNameRe.ReplaceAllString(out, "")
	out = criticalLineRe.ReplaceAllString(out, "")

	// Collapse the whitespace the removals leave behind.
	out = blankRunsRe.ReplaceAllString(out, "\n\n")
	out = spaceRunsRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
