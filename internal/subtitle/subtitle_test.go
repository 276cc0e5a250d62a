package subtitle

import (
	"errors"
	"math"
	"testing"
)

func TestAppendAssignsSequentialIndices(t *testing.T) {
	doc := NewDocument()

	for i, text := range []string{"one", "two", "three"} {
		cue, err := doc.Append(float64(i), float64(i)+0.5, text)
		if err != nil {
			t.Fatalf("Append(%q) returned error: %v", text, err)
		}
		if cue.Index != i+1 {
			t.Errorf("cue %q: expected index %d, got %d", text, i+1, cue.Index)
		}
	}

	if doc.Len() != 3 {
		t.Fatalf("expected 3 cues, got %d", doc.Len())
	}
}

func TestAppendRejectsInvalidRange(t *testing.T) {
	tests := []struct {
		name       string
		start, end float64
	}{
		{"end before start", 2.0, 1.0},
		{"negative start", -0.5, 1.0},
		{"nan start", math.NaN(), 1.0},
		{"nan end", 0, math.NaN()},
		{"infinite end", 0, math.Inf(1)},
		{"negative infinite start", math.Inf(-1), 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument()
			_, err := doc.Append(tt.start, tt.end, "text")

			var rangeErr *InvalidRangeError
			if !errors.As(err, &rangeErr) {
				t.Fatalf("expected *InvalidRangeError, got %v", err)
			}
			if doc.Len() != 0 {
				t.Errorf("rejected cue was stored")
			}
		})
	}
}

func TestAppendAcceptsZeroLengthCue(t *testing.T) {
	doc := NewDocument()
	if _, err := doc.Append(3.0, 3.0, "blip"); err != nil {
		t.Fatalf("expected zero-length cue to be accepted, got %v", err)
	}
}

func TestAppendRejectsUnserializableText(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"arrow", "before --> after"},
		{"blank line", "first\n\nsecond"},
		{"whitespace only", "   "},
		{"trailing newline", "line\n"},
		{"carriage return", "a\rb"},
		{"crlf", "a\r\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument()
			_, err := doc.Append(0, 1, tt.text)

			var formatErr *FormatError
			if !errors.As(err, &formatErr) {
				t.Fatalf("expected *FormatError for %q, got %v", tt.text, err)
			}
		})
	}
}

func TestAppendContinuesFromLastIndex(t *testing.T) {
	doc, err := ReadSRT("7\n00:00:01,000 --> 00:00:02,000\nparsed\n\n")
	if err != nil {
		t.Fatalf("ReadSRT returned error: %v", err)
	}

	cue, err := doc.Append(2, 3, "appended")
	if err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if cue.Index != 8 {
		t.Errorf("expected index 8, got %d", cue.Index)
	}
}

func TestRenumber(t *testing.T) {
	content := `5
00:00:01,000 --> 00:00:02,000
first

2
00:00:02,000 --> 00:00:03,000
second

2
00:00:03,000 --> 00:00:04,000
third

40
00:00:04,000 --> 00:00:05,000
fourth
`
	doc, err := ReadSRT(content)
	if err != nil {
		t.Fatalf("ReadSRT returned error: %v", err)
	}

	doc.Renumber()
	wantTexts := []string{"first", "second", "third", "fourth"}
	for i := 0; i < doc.Len(); i++ {
		cue := doc.Cue(i)
		if cue.Index != i+1 {
			t.Errorf("cue %d: expected index %d, got %d", i, i+1, cue.Index)
		}
		if cue.Text != wantTexts[i] {
			t.Errorf("cue %d: order changed, expected %q, got %q", i, wantTexts[i], cue.Text)
		}
	}

	before := WriteSRT(doc)
	doc.Renumber()
	if after := WriteSRT(doc); after != before {
		t.Errorf("second Renumber changed the document:\n%s\nvs\n%s", before, after)
	}
}

func TestRenumberEmptyDocument(t *testing.T) {
	doc := NewDocument()
	doc.Renumber()
	if doc.Len() != 0 {
		t.Errorf("expected empty document, got %d cues", doc.Len())
	}
}

func TestCuesYieldsCopies(t *testing.T) {
	doc := NewDocument()
	_, _ = doc.Append(0, 1, "original")

	for cue := range doc.Cues() {
		cue.Text = "mutated"
	}

	if got := doc.Cue(0).Text; got != "original" {
		t.Errorf("Cues leaked a mutable reference, text is now %q", got)
	}
}

func TestCuesStopsEarly(t *testing.T) {
	doc := NewDocument()
	for i := 0; i < 5; i++ {
		_, _ = doc.Append(float64(i), float64(i+1), "x")
	}

	seen := 0
	for range doc.Cues() {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Errorf("expected to stop after 2 cues, saw %d", seen)
	}
}

func TestSetText(t *testing.T) {
	doc := NewDocument()
	_, _ = doc.Append(0, 1, "hello")

	if err := doc.SetText(0, "bonjour"); err != nil {
		t.Fatalf("SetText returned error: %v", err)
	}
	if got := doc.Cue(0).Text; got != "bonjour" {
		t.Errorf("expected %q, got %q", "bonjour", got)
	}

	var indexErr *IndexError
	if err := doc.SetText(3, "x"); !errors.As(err, &indexErr) {
		t.Errorf("expected *IndexError, got %v", err)
	}

	var formatErr *FormatError
	if err := doc.SetText(0, "a --> b"); !errors.As(err, &formatErr) {
		t.Errorf("expected *FormatError, got %v", err)
	}
}
