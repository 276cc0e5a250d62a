package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/mgpai22/subburn/internal/subtitle"
)

// line break marker inside translation items
const lineBreak = `\N`

// DocumentOptions controls how a translation is applied to a document.
type DocumentOptions struct {
	Concurrency int
	// keep the original text on the line below the translation
	Overlay bool
}

// ItemsFromDocument builds one item per non-empty cue. Item indices are
// 0-based cue positions.
func ItemsFromDocument(doc *subtitle.Document) []TranslationItem {
	items := make([]TranslationItem, 0, doc.Len())
	pos := 0
	for cue := range doc.Cues() {
		if strings.TrimSpace(cue.Text) != "" {
			items = append(items, TranslationItem{
				Index: pos,
				Text:  strings.ReplaceAll(cue.Text, "\n", lineBreak),
			})
		}
		pos++
	}
	return items
}

// ApplyToDocument replaces cue text with the translated text. Timings and
// cue indices are left untouched.
func ApplyToDocument(doc *subtitle.Document, results []TranslationResult, overlay bool) error {
	for _, r := range results {
		if r.Index < 0 || r.Index >= doc.Len() {
			return fmt.Errorf("translation result index %d out of range", r.Index)
		}

		text := normalizeTranslation(r.Text)
		if text == "" {
			continue
		}
		if overlay {
			text = text + "\n" + doc.Cue(r.Index).Text
		}
		if err := doc.SetText(r.Index, text); err != nil {
			return fmt.Errorf("cue %d: %w", doc.Cue(r.Index).Index, err)
		}
	}
	return nil
}

// TranslateDocument translates every cue of doc in place.
func TranslateDocument(
	ctx context.Context,
	t Translator,
	doc *subtitle.Document,
	opts DocumentOptions,
) error {
	items := ItemsFromDocument(doc)
	if len(items) == 0 {
		return nil
	}

	var results []TranslationResult
	var err error
	if ct, ok := t.(ConcurrentTranslator); ok && opts.Concurrency > 1 {
		results, err = ct.TranslateWithConcurrency(ctx, items, opts.Concurrency)
	} else {
		results, err = t.Translate(ctx, items)
	}
	if err != nil {
		return err
	}

	return ApplyToDocument(doc, results, opts.Overlay)
}

// restores line breaks, then applies the same cleanup as transcribed text
func normalizeTranslation(text string) string {
	return subtitle.CleanText(strings.ReplaceAll(text, lineBreak, "\n"))
}
