package subtitle

import (
	"iter"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Generator turns transcription segments into a Document. The zero-value
// limits leave segments untouched apart from text cleanup.
type Generator struct {
	// wrap cue text onto two lines past this many runes (0 = never)
	MaxCharsPerLine int
	// split segments longer than this many seconds into several cues (0 = never)
	MaxDuration float64
	// drop segments whose text is empty after cleanup
	SkipEmpty bool
	// clamp end to start instead of failing with InvalidRangeError
	ClampRanges bool
}

func NewDefaultGenerator() *Generator {
	return &Generator{SkipEmpty: true}
}

// Generate consumes segments in order and appends one or more cues per
// segment. An error yielded by the sequence is returned unchanged.
func (g *Generator) Generate(segments iter.Seq2[Segment, error]) (*Document, error) {
	doc := NewDocument()

	for seg, err := range segments {
		if err != nil {
			return nil, err
		}

		text := CleanText(seg.Text)
		if text == "" && g.SkipEmpty {
			continue
		}
		if g.ClampRanges {
			if seg.Start < 0 {
				seg.Start = 0
			}
			if seg.End < seg.Start {
				seg.End = seg.Start
			}
		}
		seg.Text = text

		for _, part := range g.split(seg) {
			if _, err := doc.Append(part.Start, part.End, g.formatText(part.Text)); err != nil {
				return nil, err
			}
		}
	}

	return doc, nil
}

// FromSlice adapts a slice of segments to the sequence Generate consumes.
func FromSlice(segments []Segment) iter.Seq2[Segment, error] {
	return func(yield func(Segment, error) bool) {
		for _, seg := range segments {
			if !yield(seg, nil) {
				return
			}
		}
	}
}

// two or more dashes before '>'
var arrowRun = regexp.MustCompile(`-{2,}>`)

// CleanText normalizes ASR output so it is safe to store in a cue: NFC
// normalization, trimmed lines, no blank lines and no time-range arrow.
func CleanText(text string) string {
	text = normalizeNewlines(norm.NFC.String(text))
	text = arrowRun.ReplaceAllString(text, "->")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// splits a segment by duration, distributing words evenly across the parts
func (g *Generator) split(seg Segment) []Segment {
	total := seg.End - seg.Start
	if g.MaxDuration <= 0 || total <= g.MaxDuration {
		return []Segment{seg}
	}

	words := strings.Fields(seg.Text)
	if len(words) < 2 {
		return []Segment{seg}
	}

	numSplits := int(total/g.MaxDuration) + 1
	if numSplits > len(words) {
		numSplits = len(words)
	}
	wordsPerSplit := (len(words) + numSplits - 1) / numSplits
	step := total / float64(numSplits)

	var parts []Segment
	current := seg.Start
	for i := 0; len(words) > 0; i++ {
		n := min(wordsPerSplit, len(words))
		chunk := words[:n]
		words = words[n:]

		end := current + step
		if len(words) == 0 {
			end = seg.End
		}
		parts = append(parts, Segment{
			Start: current,
			End:   end,
			Text:  strings.Join(chunk, " "),
		})
		current = end
	}

	return parts
}

// formatText wraps single-line text onto two lines at the word boundary
// closest to the middle
func (g *Generator) formatText(text string) string {
	runeCount := utf8.RuneCountInString(text)
	if g.MaxCharsPerLine <= 0 || runeCount <= g.MaxCharsPerLine || strings.Contains(text, "\n") {
		return text
	}

	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	middle := runeCount / 2
	bestSplit := 0
	bestDiff := runeCount

	currentLen := 0
	for i, word := range words[:len(words)-1] {
		currentLen += utf8.RuneCountInString(word)
		if i > 0 {
			currentLen++ // space
		}

		diff := abs(currentLen - middle)
		if diff < bestDiff {
			bestDiff = diff
			bestSplit = i + 1
		}
	}

	if bestSplit > 0 && bestSplit < len(words) {
		return strings.Join(words[:bestSplit], " ") + "\n" + strings.Join(words[bestSplit:], " ")
	}

	return text
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
