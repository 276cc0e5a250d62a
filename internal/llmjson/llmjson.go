// Package llmjson pulls JSON arrays out of free-form model replies.
package llmjson

import (
	"bytes"
	"cmp"
	"encoding/json"
	"maps"
	"regexp"
	"slices"
	"strings"
)

var fenceRegex = regexp.MustCompile("```(?:json)?\\s*")

// StripFences removes markdown code fences and surrounding whitespace.
func StripFences(s string) string {
	s = fenceRegex.ReplaceAllString(strings.TrimSpace(s), "")
	return strings.TrimSpace(strings.ReplaceAll(s, "```", ""))
}

// FindArray scans s for the first JSON array of T that accept reports as
// usable. Arrays wrapped in objects are found too: keys named in preferred
// are searched first (case-insensitively), then the rest in sorted order.
// Prose around the JSON is skipped.
func FindArray[T any](s string, preferred []string, accept func([]T) bool) ([]T, bool) {
	for i := 0; i < len(s); i++ {
		if s[i] != '[' && s[i] != '{' {
			continue
		}

		dec := json.NewDecoder(strings.NewReader(s[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			continue
		}
		if items, ok := search(raw, preferred, accept); ok {
			return items, true
		}
		i += int(dec.InputOffset()) - 1
	}
	return nil, false
}

func search[T any](raw json.RawMessage, preferred []string, accept func([]T) bool) ([]T, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, false
	}

	switch raw[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, false
		}
		return items, accept(items)
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, false
		}
		for _, k := range rankedKeys(obj, preferred) {
			if items, ok := search(obj[k], preferred, accept); ok {
				return items, true
			}
		}
	}
	return nil, false
}

func rankedKeys(obj map[string]json.RawMessage, preferred []string) []string {
	rank := func(key string) int {
		i := slices.IndexFunc(preferred, func(p string) bool { return strings.EqualFold(p, key) })
		if i < 0 {
			return len(preferred)
		}
		return i
	}
	return slices.SortedFunc(maps.Keys(obj), func(a, b string) int {
		return cmp.Or(cmp.Compare(rank(a), rank(b)), strings.Compare(a, b))
	})
}

// Truncate cuts s to at most n bytes for use in error messages.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
