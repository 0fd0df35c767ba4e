package statistics

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/dstrand/maturity-agent/internal/llm"
	"github.com/dstrand/maturity-agent/internal/prompts"
	"github.com/dstrand/maturity-agent/internal/types"
)

const (
	// maxThemes caps the extracted theme list.
	maxThemes = 5
	// maxSampledComments caps how many comments are sent to the model.
	maxSampledComments = 50
	// minThemeLength drops parsed entries that are too short to be themes.
	minThemeLength = 5
	// minTokenLength drops short tokens in the frequency fallback.
	minTokenLength = 3
)

// stopWords are excluded from the keyword-frequency fallback.
var stopWords = map[string]bool{
	"about": true, "after": true, "also": true, "been": true, "being": true,
	"both": true, "could": true, "data": true, "does": true, "from": true,
	"have": true, "into": true, "just": true, "more": true, "most": true,
	"much": true, "need": true, "needs": true, "only": true, "other": true,
	"our": true, "over": true, "some": true, "such": true, "than": true,
	"that": true, "their": true, "them": true, "there": true, "these": true,
	"they": true, "this": true, "very": true, "what": true, "when": true,
	"where": true, "which": true, "while": true, "will": true, "with": true,
	"would": true, "your": true,
}

// extractThemes returns up to five comment themes, most prominent first.
// The model path is best-effort; any failure falls back to keyword counting.
func (e *Extractor) extractThemes(ctx context.Context, dimension string, records []types.SurveyRecord) []string {
	comments := collectComments(records, maxSampledComments)
	if len(comments) == 0 {
		return nil
	}

	if e.client != nil {
		themes, err := e.themesFromModel(ctx, dimension, comments)
		if err == nil && len(themes) > 0 {
			return themes
		}
		e.logger.Warn("theme extraction fell back to keyword counting",
			zap.String("dimension", dimension),
			zap.Error(err))
	}

	return keywordThemes(comments)
}

// themesFromModel asks the completion model to enumerate the top themes.
func (e *Extractor) themesFromModel(ctx context.Context, dimension string, comments []string) ([]string, error) {
	prompt := prompts.Format(prompts.MustGet("statistics.json", "comment-themes"), map[string]string{
		"Dimension": dimension,
		"Comments":  "- " + strings.Join(comments, "\n- "),
	})

	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	resp, err := e.client.GenerateContent(callCtx, llm.Request{
		System: prompts.MustGet("statistics.json", "comment-themes-system"),
		Prompt: prompt,
		Tier:   llm.TierLite,
	})
	if err != nil {
		return nil, err
	}

	return llm.ParseListLines(resp, minThemeLength, maxThemes), nil
}

// collectComments flattens record comments up to the sampling cap.
func collectComments(records []types.SurveyRecord, limit int) []string {
	var comments []string
	for i := range records {
		for _, c := range records[i].Comments {
			c = strings.TrimSpace(c)
			if c == "" {
				continue
			}
			comments = append(comments, c)
			if len(comments) >= limit {
				return comments
			}
		}
	}
	return comments
}

// keywordThemes counts lowercase tokens across all comments and returns the
// five most frequent, ties broken alphabetically for determinism.
func keywordThemes(comments []string) []string {
	counts := make(map[string]int)
	for _, comment := range comments {
		for _, token := range tokenize(comment) {
			if len(token) <= minTokenLength || stopWords[token] {
				continue
			}
			counts[token]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(counts))
	for token := range counts {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if counts[tokens[i]] != counts[tokens[j]] {
			return counts[tokens[i]] > counts[tokens[j]]
		}
		return tokens[i] < tokens[j]
	})

	if len(tokens) > maxThemes {
		tokens = tokens[:maxThemes]
	}
	return tokens
}

// tokenize lowercases a comment and splits it on non-letter characters.
func tokenize(comment string) []string {
	return strings.FieldsFunc(strings.ToLower(comment), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
}
