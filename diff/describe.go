package diff

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Describe renders a human-readable report of result. Changed keys get a
// character level diff of their JSON encoding with ignoredKeys removed.
func Describe(candidate, current map[string]any, result Result, ignoredKeys ...string) string {
	ignored := make(map[string]struct{}, len(ignoredKeys))
	for _, k := range ignoredKeys {
		ignored[k] = struct{}{}
	}

	var b strings.Builder
	for _, key := range result.Added {
		fmt.Fprintf(&b, "+ %s\n", key)
	}
	for _, key := range result.Removed {
		fmt.Fprintf(&b, "- %s\n", key)
	}

	dmp := diffmatchpatch.New()
	for _, key := range result.Changed {
		before := render(strip(normalize(current[key]), ignored))
		after := render(strip(normalize(candidate[key]), ignored))
		diffs := dmp.DiffMain(before, after, false)
		diffs = dmp.DiffCleanupSemantic(diffs)
		fmt.Fprintf(&b, "~ %s: %s\n", key, textDiff(diffs))
	}
	return b.String()
}

func render(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// textDiff marks deletions with [-...-] and insertions with {+...+}
func textDiff(diffs []diffmatchpatch.Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			b.WriteString(d.Text)
		case diffmatchpatch.DiffDelete:
			b.WriteString("[-" + d.Text + "-]")
		case diffmatchpatch.DiffInsert:
			b.WriteString("{+" + d.Text + "+}")
		}
	}
	return b.String()
}
