package maturity

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dstrand/maturity-agent/internal/llm"
	"github.com/dstrand/maturity-agent/internal/schemas"
	"github.com/dstrand/maturity-agent/internal/types"
)

const (
	minMaturityScore = 1.0
	maxMaturityScore = 5.0
	// fallbackScore is assumed when no score can be read from the response.
	fallbackScore = 2.0
	// defaultLevelName is used when the response names no level.
	defaultLevelName = "Initial"
	// maxListEntries caps gaps and best practices per framework.
	maxListEntries = 5
)

// Placeholder entries when the response yields no usable lists.
const (
	placeholderGap      = "No specific gaps were identified from the survey evidence"
	placeholderPractice = "No established best practices were identified"
)

// scoreOutOfFivePattern matches scores written as "2.5/5" or "3 / 5".
var scoreOutOfFivePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*/\s*5`)

// listLinePattern matches bulleted or numbered list lines.
var listLinePattern = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+(.+)$`)

// maturityLevelPayload is the structured block shape requested from the model.
type maturityLevelPayload struct {
	Score         float64  `json:"score"`
	Level         string   `json:"level"`
	Gaps          []string `json:"gaps"`
	BestPractices []string `json:"best_practices"`
}

// parseMaturityLevel turns a completion response into a MaturityLevel. It
// prefers the fenced structured block; failing that it scans the text. The
// returned error reports why the structured path was abandoned; the level is
// always usable.
func parseMaturityLevel(framework, response string) (types.MaturityLevel, error) {
	level, err := parseStructuredLevel(framework, response)
	if err == nil {
		return level, nil
	}
	return scanTextLevel(framework, response), err
}

// parseStructuredLevel parses the fenced JSON block path.
func parseStructuredLevel(framework, response string) (types.MaturityLevel, error) {
	block, ok := llm.ExtractFencedBlock(response, "json")
	if !ok {
		return types.MaturityLevel{}, fmt.Errorf("no fenced block in response")
	}
	if err := schemas.Validate(schemas.MaturityLevelSchema, block); err != nil {
		return types.MaturityLevel{}, fmt.Errorf("fenced block failed schema: %w", err)
	}

	var payload maturityLevelPayload
	if err := json.Unmarshal([]byte(block), &payload); err != nil {
		return types.MaturityLevel{}, fmt.Errorf("fenced block is not valid JSON: %w", err)
	}

	levelName := strings.TrimSpace(payload.Level)
	if levelName == "" {
		levelName = defaultLevelName
	}

	return types.MaturityLevel{
		Framework:     framework,
		CurrentLevel:  levelName,
		Score:         clampScore(payload.Score),
		Gaps:          capList(payload.Gaps, placeholderGap),
		BestPractices: capList(payload.BestPractices, placeholderPractice),
	}, nil
}

// scanTextLevel harvests a level from free-form response text.
func scanTextLevel(framework, response string) types.MaturityLevel {
	score := fallbackScore
	if m := scoreOutOfFivePattern.FindStringSubmatch(response); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			score = clampScore(v)
		}
	}

	levelName := defaultLevelName
	lower := strings.ToLower(response)
	for _, name := range maturityLevelNames {
		if strings.Contains(lower, strings.ToLower(name)) {
			levelName = name
		}
	}

	gaps, practices := harvestLists(response)

	return types.MaturityLevel{
		Framework:     framework,
		CurrentLevel:  levelName,
		Score:         score,
		Gaps:          capList(gaps, placeholderGap),
		BestPractices: capList(practices, placeholderPractice),
	}
}

// harvestLists collects list lines under "gap" and "practice" section
// markers. A marker line switches the target list; list lines before any
// marker are ignored.
func harvestLists(response string) (gaps, practices []string) {
	const (
		targetNone = iota
		targetGaps
		targetPractices
	)
	target := targetNone

	for _, line := range strings.Split(response, "\n") {
		lower := strings.ToLower(line)
		if m := listLinePattern.FindStringSubmatch(line); m != nil {
			entry := strings.TrimSpace(m[1])
			switch target {
			case targetGaps:
				gaps = append(gaps, entry)
			case targetPractices:
				practices = append(practices, entry)
			}
			continue
		}
		// Non-list lines may switch the section.
		switch {
		case strings.Contains(lower, "practice"):
			target = targetPractices
		case strings.Contains(lower, "gap"):
			target = targetGaps
		}
	}
	return gaps, practices
}

// capList trims a list to the entry cap, substituting a placeholder when the
// list is empty.
func capList(entries []string, placeholder string) []string {
	cleaned := make([]string, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		cleaned = append(cleaned, e)
		if len(cleaned) >= maxListEntries {
			break
		}
	}
	if len(cleaned) == 0 {
		return []string{placeholder}
	}
	return cleaned
}

func clampScore(v float64) float64 {
	if v < minMaturityScore {
		return minMaturityScore
	}
	if v > maxMaturityScore {
		return maxMaturityScore
	}
	return v
}
