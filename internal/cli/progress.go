package cli

import (
	"io"
	"regexp"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"
)

var progressTimeRegex = regexp.MustCompile(`time=(\d+):(\d{2}):(\d{2}(?:\.\d+)?)`)

// parseProgressTime reads the encoded position from an ffmpeg status line.
func parseProgressTime(line string) (float64, bool) {
	m := progressTimeRegex.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, false
	}
	return float64(hours*3600+minutes*60) + seconds, true
}

// encodeProgress tracks ffmpeg status lines against the input duration.
type encodeProgress struct {
	bar   *progressbar.ProgressBar
	total float64
}

func newEncodeProgress(w io.Writer, description string, totalSeconds float64) *encodeProgress {
	bar := progressbar.NewOptions64(
		int64(totalSeconds*1000),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &encodeProgress{bar: bar, total: totalSeconds}
}

// observe advances the bar when line carries a position.
func (p *encodeProgress) observe(line string) {
	pos, ok := parseProgressTime(line)
	if !ok {
		return
	}
	_ = p.bar.Set64(int64(min(pos, p.total) * 1000))
}

func (p *encodeProgress) finish() {
	_ = p.bar.Finish()
}
