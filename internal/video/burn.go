package video

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/subburn/internal/process"
)

const outputSuffix = "_subtitle"

var ErrEmptyPath = errors.New("video: empty path")

// BurnPlan is a ready-to-run burn-in invocation and the file it will produce.
type BurnPlan struct {
	Command    process.CommandSpec
	OutputPath string
}

// BurnOutputPath returns <dir>/<base>_subtitle<ext> for a video path.
func BurnOutputPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	return strings.TrimSuffix(videoPath, ext) + outputSuffix + ext
}

// BuildBurnCommand builds the ffmpeg invocation that renders subtitlePath
// into a copy of videoPath. The command runs in the video's directory and
// names files relative to it. Nothing is read or written here.
func BuildBurnCommand(
	ffmpegPath, videoPath, subtitlePath string,
	cfg EncodeConfig,
) (BurnPlan, error) {
	if strings.TrimSpace(videoPath) == "" {
		return BurnPlan{}, fmt.Errorf("%w: video", ErrEmptyPath)
	}
	if strings.TrimSpace(subtitlePath) == "" {
		return BurnPlan{}, fmt.Errorf("%w: subtitle", ErrEmptyPath)
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if len(cfg.style) == 0 {
		cfg = NewEncodeConfig(string(cfg.device), cfg.preset, cfg.bitRate, nil)
	}

	workDir := filepath.Dir(videoPath)
	outputPath := BurnOutputPath(videoPath)

	filter := fmt.Sprintf("subtitles=%s:force_style='%s'",
		escapeFilterPath(relativeTo(workDir, subtitlePath)),
		cfg.StyleString(),
	)

	args := ffmpeg.Input(filepath.Base(videoPath)).
		Output(filepath.Base(outputPath), ffmpeg.KwArgs{
			"vf":     filter,
			"c:v":    cfg.Encoder(),
			"preset": cfg.Preset(),
			"b:v":    cfg.BitRate(),
			"c:a":    "copy",
		}).
		OverWriteOutput().
		GetArgs()

	return BurnPlan{
		Command: process.CommandSpec{
			Path: ffmpegPath,
			Args: args,
			Dir:  workDir,
		},
		OutputPath: outputPath,
	}, nil
}

// subtitle path as seen from dir, where ffmpeg runs. Relative inputs are
// taken against the caller's working directory first.
func relativeTo(dir, path string) string {
	if filepath.Dir(path) == dir {
		return filepath.Base(path)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return filepath.ToSlash(path)
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	if rel, err := filepath.Rel(absDir, absPath); err == nil {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(absPath)
}

var (
	optionEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`)
	graphEscaper  = strings.NewReplacer(
		`\`, `\\`, `'`, `\'`,
		`[`, `\[`, `]`, `\]`,
		`,`, `\,`, `;`, `\;`,
	)
)

// escapeFilterPath applies the option-level then the filtergraph-level
// escaping ffmpeg expects for a filename inside -vf.
func escapeFilterPath(path string) string {
	return graphEscaper.Replace(optionEscaper.Replace(path))
}
