package subtitle

import (
	"iter"
	"math"
	"strings"
)

// arrow separates the start and end timestamps of an SRT time-range line
const arrow = "-->"

// single timed subtitle entry, times in seconds
type Cue struct {
	Index int
	Start float64
	End   float64
	Text  string
}

// Document is an ordered sequence of cues. Cues are kept in the order they
// were appended; the document never sorts or removes them.
type Document struct {
	cues []Cue
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
	FormatASS Format = "ass"
)

// represents transcribed audio segment, times in seconds
type Segment struct {
	Start float64
	End   float64
	Text  string
}

func NewDocument() *Document {
	return &Document{}
}

// Append adds a cue numbered one past the last cue's index.
func (d *Document) Append(start, end float64, text string) (Cue, error) {
	if !finite(start) || !finite(end) || start < 0 || start > end {
		return Cue{}, &InvalidRangeError{Start: start, End: end}
	}
	if err := validateText(text); err != nil {
		return Cue{}, err
	}

	index := 1
	if n := len(d.cues); n > 0 {
		index = d.cues[n-1].Index + 1
	}

	cue := Cue{Index: index, Start: start, End: end, Text: text}
	d.cues = append(d.cues, cue)
	return cue, nil
}

// Renumber reassigns indices 1..N in current order.
func (d *Document) Renumber() {
	for i := range d.cues {
		d.cues[i].Index = i + 1
	}
}

// Cues yields copies of the cues in document order.
func (d *Document) Cues() iter.Seq[Cue] {
	return func(yield func(Cue) bool) {
		for _, cue := range d.cues {
			if !yield(cue) {
				return
			}
		}
	}
}

func (d *Document) Len() int {
	return len(d.cues)
}

// Cue returns the cue at position i (0-based).
func (d *Document) Cue(i int) Cue {
	return d.cues[i]
}

// Texts returns the text of every cue in order.
func (d *Document) Texts() []string {
	texts := make([]string, len(d.cues))
	for i, cue := range d.cues {
		texts[i] = cue.Text
	}
	return texts
}

// SetText replaces the text of the cue at position i (0-based).
func (d *Document) SetText(i int, text string) error {
	if i < 0 || i >= len(d.cues) {
		return &IndexError{Position: i, Len: len(d.cues)}
	}
	if err := validateText(text); err != nil {
		return err
	}
	d.cues[i].Text = text
	return nil
}

// appendParsed keeps the index read from the file instead of assigning one.
func (d *Document) appendParsed(cue Cue) {
	d.cues = append(d.cues, cue)
}

func validateText(text string) error {
	if strings.Contains(text, arrow) {
		return &FormatError{Reason: "cue text contains " + arrow}
	}
	if text == "" {
		return nil
	}
	if strings.ContainsRune(text, '\r') {
		return &FormatError{Reason: "cue text contains a carriage return"}
	}
	// a blank line ends the cue block, so it cannot appear inside the text
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			return &FormatError{Reason: "cue text contains a blank line"}
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// duration of the cue in seconds
func (c Cue) Duration() float64 {
	return c.End - c.Start
}
