// Copyright 2025 AxonFlow
// SPDX-License-Identifier: BUSL-1.1

package imagegen

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// TruncationMarker is appended whenever source text had to be dropped to
// fit an image-model prompt budget.
const TruncationMarker = "[Additional details truncated for image generation]"

var (
	headingLine = regexp.MustCompile(`^\s*#{1,6}\s+\S`)
	hexColor    = regexp.MustCompile(`#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)
	// Quoted descriptive sentences carry the visual cues worth keeping.
	quotedCue = regexp.MustCompile(`"[^"]*(?:appears as|appears|looks like)[^"]*"`)
)

// TruncateForImage fits text into maxChars, preserving the lines that
// matter most to an image model: markdown headings, hex color codes, and
// quoted descriptive sentences. Remaining budget is filled with ordinary
// lines in their original order. When anything is dropped a fixed marker
// is appended. Text already within budget is returned unchanged.
func TruncateForImage(text string, maxChars int) string {
	if maxChars <= 0 || len(text) <= maxChars {
		return text
	}

	lines := strings.Split(text, "\n")

	// Reserve room for the marker and its separating newline.
	budget := maxChars - len(TruncationMarker) - 1
	if budget < 0 {
		budget = 0
	}

	selected := make([]bool, len(lines))
	used := 0

	take := func(i int) bool {
		cost := len(lines[i])
		if used > 0 {
			cost++ // joining newline
		}
		if used+cost > budget {
			return false
		}
		selected[i] = true
		used += cost
		return true
	}

	// High-priority lines first, in original order.
	for i, line := range lines {
		if headingLine.MatchString(line) || hexColor.MatchString(line) || quotedCue.MatchString(line) {
			take(i)
		}
	}

	// Fill what remains with ordinary lines, in original order.
	for i := range lines {
		if selected[i] {
			continue
		}
		if strings.TrimSpace(lines[i]) == "" {
			continue
		}
		take(i)
	}

	var kept []string
	for i, line := range lines {
		if selected[i] {
			kept = append(kept, line)
		}
	}

	// A single overlong line with no structure to salvage: clip it rather
	// than return nothing.
	if len(kept) == 0 {
		for _, line := range lines {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				clipped := clipAtRune(trimmed, budget)
				if clipped != "" {
					kept = append(kept, clipped)
				}
				break
			}
		}
	}

	result := strings.Join(kept, "\n")
	if result == "" {
		return TruncationMarker[:min(len(TruncationMarker), maxChars)]
	}
	return result + "\n" + TruncationMarker
}

// clipAtRune cuts s to at most n bytes without splitting a UTF-8 rune.
func clipAtRune(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
