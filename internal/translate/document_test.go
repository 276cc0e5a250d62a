package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mgpai22/subburn/internal/subtitle"
)

func buildDocument(t *testing.T, texts ...string) *subtitle.Document {
	t.Helper()
	doc := subtitle.NewDocument()
	for i, text := range texts {
		if _, err := doc.Append(float64(i), float64(i)+0.5, text); err != nil {
			t.Fatalf("Append(%q): %v", text, err)
		}
	}
	return doc
}

func TestItemsFromDocument(t *testing.T) {
	doc := buildDocument(t, "Hello", "", "two\nlines")

	items := ItemsFromDocument(doc)
	want := []TranslationItem{
		{Index: 0, Text: "Hello"},
		{Index: 2, Text: `two\Nlines`},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d = %+v, want %+v", i, items[i], want[i])
		}
	}
}

func TestApplyToDocument(t *testing.T) {
	tests := []struct {
		name    string
		overlay bool
		results []TranslationResult
		want    []string
	}{
		{
			name:    "replace",
			results: []TranslationResult{{Index: 0, Text: "Hola"}, {Index: 1, Text: `dos\Nlíneas`}},
			want:    []string{"Hola", "dos\nlíneas"},
		},
		{
			name:    "overlay keeps original below",
			overlay: true,
			results: []TranslationResult{{Index: 0, Text: "Hola"}},
			want:    []string{"Hola\nHello", "two\nlines"},
		},
		{
			name:    "blank translation leaves cue untouched",
			results: []TranslationResult{{Index: 0, Text: "  \n "}},
			want:    []string{"Hello", "two\nlines"},
		},
		{
			name:    "blank lines and arrows cleaned",
			results: []TranslationResult{{Index: 1, Text: "a\n\n  b --> c  "}},
			want:    []string{"Hello", "a\nb -> c"},
		},
		{
			name:    "long arrow cleaned",
			results: []TranslationResult{{Index: 0, Text: "wait --->"}},
			want:    []string{"wait ->", "two\nlines"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := buildDocument(t, "Hello", "two\nlines")
			if err := ApplyToDocument(doc, tt.results, tt.overlay); err != nil {
				t.Fatalf("ApplyToDocument returned error: %v", err)
			}

			got := doc.Texts()
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("cue %d text = %q, want %q", i, got[i], tt.want[i])
				}
			}
			for i := 0; i < doc.Len(); i++ {
				cue := doc.Cue(i)
				if cue.Index != i+1 || cue.Start != float64(i) {
					t.Errorf("cue %d timing or index changed: %+v", i, cue)
				}
			}
		})
	}
}

func TestApplyToDocumentOutOfRange(t *testing.T) {
	doc := buildDocument(t, "Hello")
	if err := ApplyToDocument(doc, []TranslationResult{{Index: 5, Text: "x"}}, false); err == nil {
		t.Error("expected error for out of range index")
	}
}

type upperTranslator struct {
	concurrencyUsed int
	err             error
}

func (u *upperTranslator) Translate(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
	return u.TranslateWithConcurrency(ctx, items, 1)
}

func (u *upperTranslator) TranslateWithConcurrency(
	ctx context.Context,
	items []TranslationItem,
	concurrency int,
) ([]TranslationResult, error) {
	u.concurrencyUsed = concurrency
	if u.err != nil {
		return nil, u.err
	}
	results := make([]TranslationResult, len(items))
	for i, item := range items {
		results[i] = TranslationResult{Index: item.Index, Text: strings.ToUpper(item.Text)}
	}
	return results, nil
}

func TestTranslateDocument(t *testing.T) {
	doc := buildDocument(t, "Hello", "", "two\nlines")
	tr := &upperTranslator{}

	if err := TranslateDocument(context.Background(), tr, doc, DocumentOptions{Concurrency: 4}); err != nil {
		t.Fatalf("TranslateDocument returned error: %v", err)
	}
	if tr.concurrencyUsed != 4 {
		t.Errorf("expected concurrent path with 4 workers, got %d", tr.concurrencyUsed)
	}

	want := []string{"HELLO", "", "TWO\nLINES"}
	for i, text := range doc.Texts() {
		if text != want[i] {
			t.Errorf("cue %d = %q, want %q", i, text, want[i])
		}
	}
}

func TestTranslateDocumentError(t *testing.T) {
	errDown := errors.New("service unavailable")
	doc := buildDocument(t, "Hello")

	err := TranslateDocument(context.Background(), &upperTranslator{err: errDown}, doc, DocumentOptions{})
	if !errors.Is(err, errDown) {
		t.Fatalf("expected service error, got %v", err)
	}
	if doc.Cue(0).Text != "Hello" {
		t.Error("document should be unchanged after a failed translation")
	}
}
