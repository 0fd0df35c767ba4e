// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import "strings"

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	// Handle ```json ... ``` blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		return text
	}

	// Handle generic ``` ... ``` blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			// If first line looks like a language identifier (no spaces, short), skip it
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		return text
	}

	return text
}

// ExtractFencedBlock returns the contents of the first fenced code block in
// text, trying the given language tags first and falling back to any fence.
// Returns "" and false when no fence is present.
func ExtractFencedBlock(text string, langs ...string) (string, bool) {
	for _, lang := range langs {
		marker := "```" + lang
		start := strings.Index(text, marker)
		if start < 0 {
			continue
		}
		rest := text[start+len(marker):]
		end := strings.Index(rest, "```")
		if end < 0 {
			continue
		}
		return strings.TrimSpace(rest[:end]), true
	}

	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]
	// Drop a language identifier on the opening fence line
	if idx := strings.Index(rest, "\n"); idx >= 0 && idx < 20 && !strings.Contains(rest[:idx], " ") {
		rest = rest[idx+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// ParseListLines splits LLM output into list entries, stripping numbered and
// bulleted enumeration prefixes. Entries shorter than minLen runes are
// dropped; at most max entries are returned (0 means no cap).
func ParseListLines(text string, minLen, max int) []string {
	var entries []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "0123456789")
		line = strings.TrimLeft(line, ".)")
		line = strings.TrimLeft(line, "-*•")
		line = strings.Trim(line, " \t")
		line = strings.Trim(line, "\"")
		if len([]rune(line)) <= minLen {
			continue
		}
		entries = append(entries, line)
		if max > 0 && len(entries) >= max {
			break
		}
	}
	return entries
}
