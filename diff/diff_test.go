package diff

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestCompare_Partitions(t *testing.T) {
	candidate := map[string]any{
		"PORT":  map[string]any{"id": "a", "name": "PORT", "version_id": 2, "secret": false},
		"DEBUG": map[string]any{"id": "b", "name": "DEBUG", "version_id": 1, "secret": false},
		"TOKEN": map[string]any{"id": "c", "name": "TOKEN", "version_id": 1, "secret": true},
	}
	current := map[string]any{
		"PORT":  map[string]any{"id": "x", "name": "PORT", "version_id": 7, "secret": false},
		"DEBUG": map[string]any{"id": "b", "name": "DEBUG", "version_id": 1, "secret": true},
		"OLD":   map[string]any{"id": "d", "name": "OLD", "version_id": 1, "secret": false},
	}

	result := Compare(candidate, current, "id", "version_id")

	assert.Equal(t, []string{"TOKEN"}, result.Added)
	assert.Equal(t, []string{"OLD"}, result.Removed)
	assert.Equal(t, []string{"DEBUG"}, result.Changed)
	assert.Equal(t, []string{"PORT"}, result.Unchanged)
	assert.True(t, result.HasChanges())
}

func TestCompare_EmptyInputs(t *testing.T) {
	result := Compare(map[string]any{}, nil)

	assert.Empty(t, result.Added)
	assert.Empty(t, result.Removed)
	assert.Empty(t, result.Changed)
	assert.Empty(t, result.Unchanged)
	assert.False(t, result.HasChanges())
	assert.Equal(t, map[string][]string{
		"added":     {},
		"removed":   {},
		"changed":   {},
		"unchanged": {},
	}, result.AsDict())
}

func TestCompare_TopLevelKeysAreNotStripped(t *testing.T) {
	result := Compare(
		map[string]any{"id": "new", "tag": "2"},
		map[string]any{"id": "old", "tag": "2"},
		"id",
	)

	assert.Equal(t, []string{"id"}, result.Changed)
	assert.Equal(t, []string{"tag"}, result.Unchanged)
}

func TestCompare_IgnoredKeysStrippedInsideLists(t *testing.T) {
	result := Compare(
		map[string]any{"procs": []any{map[string]any{"id": 1, "cmd": "serve"}}},
		map[string]any{"procs": []any{map[string]any{"id": 2, "cmd": "serve"}}},
		"id",
	)

	assert.Equal(t, []string{"procs"}, result.Unchanged)
}

func TestCompare_TypedAndGenericValuesCompareStructurally(t *testing.T) {
	type summary struct {
		Name      string `json:"name"`
		VersionID int    `json:"version_id"`
	}

	result := Compare(
		map[string]any{"A": summary{Name: "A", VersionID: 3}},
		map[string]any{"A": map[string]any{"name": "A", "version_id": float64(1)}},
		"version_id",
	)

	assert.Equal(t, []string{"A"}, result.Unchanged)
}

func TestDescribe(t *testing.T) {
	candidate := map[string]any{
		"tag": "2",
		"new": true,
	}
	current := map[string]any{
		"tag":  "1",
		"gone": true,
	}
	result := Compare(candidate, current)

	out := Describe(candidate, current, result)

	assert.Contains(t, out, "+ new\n")
	assert.Contains(t, out, "- gone\n")
	assert.Contains(t, out, "~ tag: \"[-1-]{+2+}\"\n")
}

func genMapping(t *rapid.T, label string) map[string]any {
	keys := rapid.SliceOfDistinct(rapid.SampledFrom([]string{"a", "b", "c", "d", "e", "f"}), rapid.ID[string]).Draw(t, label+"-keys")
	m := make(map[string]any, len(keys))
	for _, k := range keys {
		m[k] = map[string]any{
			"id":    rapid.IntRange(0, 3).Draw(t, label+"-id-"+k),
			"value": rapid.IntRange(0, 2).Draw(t, label+"-value-"+k),
		}
	}
	return m
}

func TestCompare_PartitionProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		candidate := genMapping(t, "candidate")
		current := genMapping(t, "current")

		result := Compare(candidate, current, "id")

		seen := map[string]int{}
		for _, part := range [][]string{result.Added, result.Removed, result.Changed, result.Unchanged} {
			assert.True(t, sort.StringsAreSorted(part))
			for _, k := range part {
				seen[k]++
			}
		}

		union := map[string]struct{}{}
		for k := range candidate {
			union[k] = struct{}{}
		}
		for k := range current {
			union[k] = struct{}{}
		}
		assert.Len(t, seen, len(union))
		for k, n := range seen {
			assert.Equal(t, 1, n, "key %s appears in more than one partition", k)
		}

		reversed := Compare(current, candidate, "id")
		assert.Equal(t, result.Added, reversed.Removed)
		assert.Equal(t, result.Removed, reversed.Added)
		assert.Equal(t, result.Changed, reversed.Changed)

		self := Compare(candidate, candidate, "id")
		assert.False(t, self.HasChanges())
	})
}
