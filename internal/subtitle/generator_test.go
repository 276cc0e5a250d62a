package subtitle

import (
	"errors"
	"strings"
	"testing"
)

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims", "  hello  ", "hello"},
		{"folds blank lines", "first\n\n\nsecond\n", "first\nsecond"},
		{"replaces arrow", "a --> b", "a -> b"},
		{"replaces long arrow", "wait --->", "wait ->"},
		{"replaces dash run", "a ------> b", "a -> b"},
		{"carriage returns", "one\r\ntwo\rthree", "one\ntwo\nthree"},
		{"nfc", "café", "café"},
		{"whitespace only", " \t\n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.input); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGenerateSkipsEmptySegments(t *testing.T) {
	segments := []Segment{
		{Start: 0, End: 1, Text: "   "},
		{Start: 1, End: 2, Text: "kept"},
		{Start: 2, End: 3, Text: ""},
	}

	doc, err := NewDefaultGenerator().Generate(FromSlice(segments))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if doc.Len() != 1 {
		t.Fatalf("expected 1 cue, got %d", doc.Len())
	}
	if cue := doc.Cue(0); cue.Index != 1 || cue.Text != "kept" {
		t.Errorf("unexpected cue %+v", cue)
	}
}

func TestGenerateKeepsEmptySegmentsWhenAsked(t *testing.T) {
	g := &Generator{}
	doc, err := g.Generate(FromSlice([]Segment{{Start: 0, End: 1, Text: ""}}))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if doc.Len() != 1 {
		t.Fatalf("expected 1 cue, got %d", doc.Len())
	}
}

func TestGenerateInvalidRange(t *testing.T) {
	segments := []Segment{{Start: 5, End: 4, Text: "backwards"}}

	_, err := NewDefaultGenerator().Generate(FromSlice(segments))
	var rangeErr *InvalidRangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected *InvalidRangeError, got %v", err)
	}

	g := NewDefaultGenerator()
	g.ClampRanges = true
	doc, err := g.Generate(FromSlice(segments))
	if err != nil {
		t.Fatalf("Generate with ClampRanges returned error: %v", err)
	}
	if cue := doc.Cue(0); cue.Start != 5 || cue.End != 5 {
		t.Errorf("expected clamped range 5-5, got %v-%v", cue.Start, cue.End)
	}
}

func TestGenerateWrapsLongLines(t *testing.T) {
	g := NewDefaultGenerator()
	g.MaxCharsPerLine = 20

	text := "the quick brown fox jumps over the lazy dog"
	doc, err := g.Generate(FromSlice([]Segment{{Start: 0, End: 3, Text: text}}))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	got := doc.Cue(0).Text
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", got)
	}
	if strings.Join(lines, " ") != text {
		t.Errorf("wrapping changed the words: %q", got)
	}
}

func TestGenerateSplitsLongSegments(t *testing.T) {
	g := NewDefaultGenerator()
	g.MaxDuration = 5

	segments := []Segment{{Start: 10, End: 22, Text: "one two three four five six"}}
	doc, err := g.Generate(FromSlice(segments))
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if doc.Len() != 3 {
		t.Fatalf("expected 3 cues, got %d", doc.Len())
	}

	var words []string
	prevEnd := 10.0
	for i := 0; i < doc.Len(); i++ {
		cue := doc.Cue(i)
		if cue.Index != i+1 {
			t.Errorf("cue %d: expected index %d, got %d", i, i+1, cue.Index)
		}
		if cue.Start != prevEnd {
			t.Errorf("cue %d: expected start %v, got %v", i, prevEnd, cue.Start)
		}
		prevEnd = cue.End
		words = append(words, strings.Fields(cue.Text)...)
	}
	if prevEnd != 22 {
		t.Errorf("last cue should end at 22, got %v", prevEnd)
	}
	if strings.Join(words, " ") != "one two three four five six" {
		t.Errorf("split lost words: %v", words)
	}
}
