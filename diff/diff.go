// Package diff compares two key/value mappings and partitions their keys.
package diff

import (
	"encoding/json"
	"reflect"
	"sort"
)

// Result partitions the keys of two mappings. Each slice is sorted.
type Result struct {
	Added     []string `json:"added"`
	Removed   []string `json:"removed"`
	Changed   []string `json:"changed"`
	Unchanged []string `json:"unchanged"`
}

// Compare partitions the keys of candidate and current. Values are compared
// structurally after ignoredKeys are stripped from nested mappings.
func Compare(candidate, current map[string]any, ignoredKeys ...string) Result {
	ignored := make(map[string]struct{}, len(ignoredKeys))
	for _, k := range ignoredKeys {
		ignored[k] = struct{}{}
	}

	result := Result{
		Added:     []string{},
		Removed:   []string{},
		Changed:   []string{},
		Unchanged: []string{},
	}

	for key, candidateValue := range candidate {
		currentValue, ok := current[key]
		if !ok {
			result.Added = append(result.Added, key)
			continue
		}
		if equal(strip(normalize(candidateValue), ignored), strip(normalize(currentValue), ignored)) {
			result.Unchanged = append(result.Unchanged, key)
		} else {
			result.Changed = append(result.Changed, key)
		}
	}
	for key := range current {
		if _, ok := candidate[key]; !ok {
			result.Removed = append(result.Removed, key)
		}
	}

	sort.Strings(result.Added)
	sort.Strings(result.Removed)
	sort.Strings(result.Changed)
	sort.Strings(result.Unchanged)
	return result
}

// HasChanges reports whether anything was added, removed or changed
func (r Result) HasChanges() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0 || len(r.Changed) > 0
}

// AsDict returns the result as a plain mapping
func (r Result) AsDict() map[string][]string {
	return map[string][]string{
		"added":     nonNil(r.Added),
		"removed":   nonNil(r.Removed),
		"changed":   nonNil(r.Changed),
		"unchanged": nonNil(r.Unchanged),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// normalize converts typed values into their generic JSON form so that
// structs, typed maps and decoded JSON compare alike.
func normalize(v any) any {
	switch v.(type) {
	case nil, string, bool, float64:
		return v
	}
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

// strip removes ignored keys from every mapping nested in v
func strip(v any, ignored map[string]struct{}) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if _, skip := ignored[k]; skip {
				continue
			}
			out[k] = strip(val, ignored)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = strip(val, ignored)
		}
		return out
	default:
		return v
	}
}

func equal(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
