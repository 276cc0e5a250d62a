package subtitle

import "fmt"

// FormatError reports malformed subtitle text. Line is 1-based and zero when
// the error is not tied to a position in a file.
type FormatError struct {
	Line   int
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	msg := "subtitle format error"
	if e.Line > 0 {
		msg = fmt.Sprintf("%s at line %d", msg, e.Line)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// InvalidRangeError reports a cue whose end precedes its start, whose start
// is negative, or whose bounds are not finite numbers.
type InvalidRangeError struct {
	Start float64
	End   float64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid cue range: start %.3fs, end %.3fs", e.Start, e.End)
}

// IndexError reports a cue position outside the document.
type IndexError struct {
	Position int
	Len      int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("cue position %d out of range (document has %d cues)", e.Position, e.Len)
}
