// Package prompts renders the embedded LLM prompt templates. Each JSON file maps a prompt key to a
// template with {{.Key}} placeholders.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Prompt files
const (
	ExtractionFile  = "extraction.json"
	AnalysisFile    = "analysis.json"
	EnhancementFile = "enhancement.json"
)

var placeholder = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// UnresolvedPlaceholderError is returned by Render when data lacks a value for a placeholder
type UnresolvedPlaceholderError struct {
	Keys []string
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("unresolved prompt placeholders: %s", strings.Join(e.Keys, ", "))
}

//go:embed *.json
var promptFiles embed.FS

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]map[string]string)
)

// Get returns the raw template stored under key in a prompt file such as "analysis.json"
func Get(filename, key string) (string, error) {
	prompts, err := loadFile(filename)
	if err != nil {
		return "", err
	}
	prompt, ok := prompts[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, filename)
	}
	return prompt, nil
}

// Render substitutes every {{.Key}} placeholder of template with data[Key].
// A prompt with unresolved placeholders is refused. Substitution is a
// single pass, so placeholder-like text inside values (resume content) is left untouched.
func Render(template string, data map[string]string) (string, error) {
	var missing []string
	seen := make(map[string]bool)
	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		key := m[1]
		if _, ok := data[key]; !ok && !seen[key] {
			missing = append(missing, key)
		}
		seen[key] = true
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", &UnresolvedPlaceholderError{Keys: missing}
	}

	return placeholder.ReplaceAllStringFunc(template, func(m string) string {
		return data[placeholder.FindStringSubmatch(m)[1]]
	}), nil
}

// RenderFile loads a prompt and renders it with data
func RenderFile(filename, key string, data map[string]string) (string, error) {
	template, err := Get(filename, key)
	if err != nil {
		return "", err
	}
	rendered, err := Render(template, data)
	if err != nil {
		return "", fmt.Errorf("prompt %s/%s: %w", filename, key, err)
	}
	return rendered, nil
}

// JSON renders v as indented JSON for embedding in a prompt
func JSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode prompt data: %w", err)
	}
	return string(data), nil
}

func loadFile(filename string) (map[string]string, error) {
	cacheMu.RLock()
	prompts, ok := cache[filename]
	cacheMu.RUnlock()
	if ok {
		return prompts, nil
	}

	data, err := promptFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = prompts
	cacheMu.Unlock()
	return prompts, nil
}
