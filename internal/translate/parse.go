package translate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mgpai22/subburn/internal/llmjson"
)

var errNoResults = errors.New("no valid translation JSON found in response")

// object keys a model may wrap the result array in
var wrapperKeys = []string{"results", "translations", "data", "items"}

// decodeResponse turns raw model output into results.
func decodeResponse(provider Provider, text string) ([]TranslationResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text in %s response", provider)
	}

	text = llmjson.StripFences(text)
	results, err := extractTranslationResults(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w (response: %s)", err, llmjson.Truncate(text, 200))
	}
	return results, nil
}

func extractTranslationResults(text string) ([]TranslationResult, error) {
	results, ok := llmjson.FindArray(escapeLineBreaks(text), wrapperKeys, validateResults)
	if !ok {
		return nil, errNoResults
	}
	return results, nil
}

// escapeLineBreaks doubles backslashes that do not start a JSON escape, so
// a literal \N marker survives decoding.
func escapeLineBreaks(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		b.WriteByte(s[i])
		if s[i] != '\\' || i+1 == len(s) {
			continue
		}
		if !strings.ContainsRune(`"\/bfnrtu`, rune(s[i+1])) {
			b.WriteByte('\\')
		}
		i++
		b.WriteByte(s[i])
	}
	return b.String()
}

// reports whether at least one result carries text
func validateResults(results []TranslationResult) bool {
	for _, r := range results {
		if r.Text != "" {
			return true
		}
	}
	return false
}
