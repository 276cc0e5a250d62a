package subtitle

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var timeRangeRegex = regexp.MustCompile(`^(\S+)\s*-->\s*(\S+)$`)

// WriteSRT serializes the document as SubRip text. Each cue becomes an
// index line, a time-range line, its text and a blank separator line.
func WriteSRT(doc *Document) string {
	var sb strings.Builder
	_, _ = doc.WriteTo(&sb)
	return sb.String()
}

// WriteTo writes the SubRip form of the document to w.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, cue := range d.cues {
		n, err := fmt.Fprintf(w, "%d\n%s %s %s\n%s\n\n",
			cue.Index,
			FormatTimestamp(cue.Start),
			arrow,
			FormatTimestamp(cue.End),
			cue.Text,
		)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// ReadSRT parses SubRip text. Any malformed block fails the whole parse;
// indices are kept as written, call Renumber to repair them.
func ReadSRT(content string) (*Document, error) {
	lines := strings.Split(normalizeNewlines(content), "\n")
	doc := NewDocument()

	i := 0
	for {
		for i < len(lines) && isBlank(lines[i]) {
			i++
		}
		if i >= len(lines) {
			break
		}

		indexLine := i + 1
		index, err := strconv.Atoi(strings.TrimSpace(lines[i]))
		if !indexLineRegex.MatchString(lines[i]) || err != nil || index <= 0 {
			return nil, &FormatError{
				Line:   indexLine,
				Reason: fmt.Sprintf("expected cue index, got %q", lines[i]),
			}
		}
		i++

		if i >= len(lines) || isBlank(lines[i]) {
			return nil, &FormatError{
				Line:   indexLine,
				Reason: fmt.Sprintf("cue %d has no time range", index),
			}
		}
		start, end, err := parseTimeRange(strings.TrimSpace(lines[i]))
		if err != nil {
			return nil, &FormatError{
				Line:   i + 1,
				Reason: fmt.Sprintf("invalid time range for cue %d", index),
				Err:    err,
			}
		}
		i++

		var textLines []string
		for i < len(lines) && !isBlank(lines[i]) {
			textLines = append(textLines, lines[i])
			i++
		}

		doc.appendParsed(Cue{
			Index: index,
			Start: start,
			End:   end,
			Text:  strings.Join(textLines, "\n"),
		})
	}

	return doc, nil
}

func parseTimeRange(line string) (float64, float64, error) {
	matches := timeRangeRegex.FindStringSubmatch(line)
	if matches == nil {
		return 0, 0, fmt.Errorf("expected \"start %s end\", got %q", arrow, line)
	}

	start, err := ParseTimestamp(matches[1])
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTimestamp(matches[2])
	if err != nil {
		return 0, 0, err
	}
	if start > end {
		return 0, 0, &InvalidRangeError{Start: start, End: end}
	}

	return start, end, nil
}

// strips a UTF-8 BOM and converts CRLF and CR line endings to LF
func normalizeNewlines(content string) string {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

// ReadFile parses the SRT file at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read SRT file: %w", err)
	}

	doc, err := ReadSRT(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc, nil
}

// WriteFile writes the document to path as SRT, creating parent directories.
func WriteFile(path string, doc *Document) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(WriteSRT(doc)), 0644)
}
