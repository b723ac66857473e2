// Package prompts holds the model prompt templates, embedded as JSON objects of key → template.
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
var templateFiles embed.FS

// NarrativeFile holds one template per narrative kind, keyed by the kind name.
const NarrativeFile = "narrative.json"

// parsed caches decoded template files. The files are embedded, so entries never go stale.
var (
	parsedMu sync.RWMutex
	parsed   = make(map[string]map[string]string)
)

// Get returns the template stored under key in file.
func Get(file, key string) (string, error) {
	templates, err := load(file)
	if err != nil {
		return "", err
	}
	tmpl, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("prompt key %q not found in %s", key, file)
	}
	return tmpl, nil
}

// Keys returns the template keys of file in sorted order.
func Keys(file string) ([]string, error) {
	templates, err := load(file)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Require checks that file defines a non-blank template for every key.
// All missing keys are reported together.
func Require(file string, keys ...string) error {
	templates, err := load(file)
	if err != nil {
		return err
	}
	var missing []string
	for _, k := range keys {
		if strings.TrimSpace(templates[k]) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s is missing templates: %s", file, strings.Join(missing, ", "))
	}
	return nil
}

// Format replaces {{.Name}} placeholders with data["Name"]. Unknown placeholders are left as is.
func Format(template string, data map[string]string) string {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, 2*len(names))
	for _, name := range names {
		pairs = append(pairs, "{{."+name+"}}", data[name])
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func load(file string) (map[string]string, error) {
	parsedMu.RLock()
	templates, ok := parsed[file]
	parsedMu.RUnlock()
	if ok {
		return templates, nil
	}

	data, err := templateFiles.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file %s: %w", file, err)
	}
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse prompt file %s: %w", file, err)
	}

	parsedMu.Lock()
	parsed[file] = templates
	parsedMu.Unlock()
	return templates, nil
}
