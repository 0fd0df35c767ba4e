// Package prompts provides the embedded LLM prompt templates for each
// workflow stage. Each stage has one JSON file mapping prompt keys to
// template text; the "-system" suffix convention pairs a user prompt with
// its system instruction.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed *.json
var promptFiles embed.FS

var (
	mu      sync.Mutex
	catalog map[string]map[string]string
)

// Get retrieves a prompt by filename and key. The filename carries no path
// component, e.g. Get("maturity.json", "assess-framework").
func Get(filename, key string) (string, error) {
	prompts, err := filePrompts(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// MustGet is Get for prompts the stage cannot run without; a missing prompt
// file is a packaging defect, so it panics.
func MustGet(filename, key string) string {
	prompt, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load prompt: %v", err))
	}
	return prompt
}

// Format substitutes {{.Key}} placeholders with values from data.
// Placeholders with no matching key are left as-is.
func Format(template string, data map[string]string) string {
	result := template
	for key, value := range data {
		result = strings.ReplaceAll(result, "{{."+key+"}}", value)
	}
	return result
}

// List returns the prompt keys available in a file, sorted.
func List(filename string) ([]string, error) {
	prompts, err := filePrompts(filename)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(prompts))
	for key := range prompts {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// ClearCache drops the parsed catalog. Useful for testing.
func ClearCache() {
	mu.Lock()
	catalog = nil
	mu.Unlock()
}

// filePrompts returns the parsed key→template map for one file, parsing and
// caching every embedded file on first use.
func filePrompts(filename string) (map[string]string, error) {
	mu.Lock()
	defer mu.Unlock()

	if catalog == nil {
		parsed, err := parseAll()
		if err != nil {
			return nil, err
		}
		catalog = parsed
	}

	prompts, ok := catalog[filename]
	if !ok {
		return nil, fmt.Errorf("prompt file %s is not embedded", filename)
	}
	return prompts, nil
}

func parseAll() (map[string]map[string]string, error) {
	entries, err := promptFiles.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded prompts: %w", err)
	}

	parsed := make(map[string]map[string]string, len(entries))
	for _, entry := range entries {
		data, err := promptFiles.ReadFile(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read prompt file %s: %w", entry.Name(), err)
		}
		var prompts map[string]string
		if err := json.Unmarshal(data, &prompts); err != nil {
			return nil, fmt.Errorf("failed to parse prompt file %s: %w", entry.Name(), err)
		}
		parsed[entry.Name()] = prompts
	}
	return parsed, nil
}
