package subtitle

import (
	"regexp"
	"strings"
)

var indexLineRegex = regexp.MustCompile(`^\s*\d+\s*$`)

// ProjectText turns SRT text into a plain transcript: index and time-range
// lines are dropped, newline runs collapse to one newline and the result is
// trimmed. A digit-only line counts as an index only when it opens a block,
// so cue text that happens to be a number is kept.
func ProjectText(content string) string {
	var kept []string
	blockStart := true
	for _, line := range strings.Split(normalizeNewlines(content), "\n") {
		switch {
		case isBlank(line):
			blockStart = true
			continue
		case timeRangeRegex.MatchString(strings.TrimSpace(line)):
		case blockStart && indexLineRegex.MatchString(line):
		default:
			kept = append(kept, line)
		}
		blockStart = false
	}

	// blank lines were never kept, so joining collapses every newline run
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// ProjectDocument produces the same transcript as ProjectText(WriteSRT(doc)).
func ProjectDocument(doc *Document) string {
	var kept []string
	for cue := range doc.Cues() {
		if strings.TrimSpace(cue.Text) == "" {
			continue
		}
		kept = append(kept, cue.Text)
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}
