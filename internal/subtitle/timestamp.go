package subtitle

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
)

var timestampRegex = regexp.MustCompile(`^(\d{2,}):(\d{2}):(\d{2}),(\d{3})$`)

// FormatTimestamp renders seconds as HH:MM:SS,mmm. Milliseconds are
// truncated, never rounded.
func FormatTimestamp(seconds float64) string {
	hours, minutes, secs, millis := splitSeconds(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// splits seconds into clock fields; negative and NaN inputs clamp to zero
func splitSeconds(seconds float64) (hours, minutes, secs, millis int64) {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}

	whole := int64(seconds)
	millis = int64(math.Floor(math.Mod(seconds, 1) * 1000))
	if millis > 999 {
		millis = 999
	}

	return whole / 3600, (whole % 3600) / 60, whole % 60, millis
}

// ParseTimestamp is the inverse of FormatTimestamp.
func ParseTimestamp(value string) (float64, error) {
	matches := timestampRegex.FindStringSubmatch(value)
	if matches == nil {
		return 0, &FormatError{Reason: fmt.Sprintf("invalid timestamp %q", value)}
	}

	hours, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		return 0, &FormatError{Reason: fmt.Sprintf("invalid hours in %q", value), Err: err}
	}
	// the regex guarantees these are plain digits
	minutes, _ := strconv.Atoi(matches[2])
	secs, _ := strconv.Atoi(matches[3])
	millis, _ := strconv.Atoi(matches[4])

	if minutes > 59 || secs > 59 {
		return 0, &FormatError{Reason: fmt.Sprintf("timestamp out of range %q", value)}
	}

	total := hours*3600 + int64(minutes)*60 + int64(secs)
	return float64(total) + float64(millis)/1000, nil
}
