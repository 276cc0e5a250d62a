package video

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/subburn/internal/logging"
	"github.com/mgpai22/subburn/internal/process"
)

// ExtractionError reports a failed audio extraction.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract audio from %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// AudioExtractor maps a video to an audio file next to it.
type AudioExtractor interface {
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
}

// holds options for audio extraction
type ExtractAudioOptions struct {
	Format     string // wav, mp3, aac or flac
	SampleRate int    // Hz
	Channels   int    // 1 = mono, 2 = stereo
	Bitrate    string // lossy formats only, e.g. "128k"
}

// 16 kHz mono PCM, what speech models expect
func DefaultExtractAudioOptions() ExtractAudioOptions {
	return ExtractAudioOptions{
		Format:     "wav",
		SampleRate: 16000,
		Channels:   1,
	}
}

// AudioPath returns the same-directory audio path for a video.
func AudioPath(videoPath, format string) string {
	if format == "" {
		format = "wav"
	}
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "." + format
}

// default implementation using ffmpeg
type DefaultProcessor struct {
	ffmpegPath string
	runner     *process.Runner
	logger     *logging.Logger
}

func NewProcessor(ffmpegPath string, logger *logging.Logger) *DefaultProcessor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &DefaultProcessor{
		ffmpegPath: ffmpegPath,
		runner:     process.NewRunner(logger),
		logger:     logger,
	}
}

// ExtractAudio writes <dir>/<base>.wav as 16 kHz mono PCM and returns its path.
func (p *DefaultProcessor) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	outputPath := AudioPath(videoPath, "wav")
	if err := p.ExtractAudioTo(ctx, videoPath, outputPath, DefaultExtractAudioOptions()); err != nil {
		return "", err
	}
	return outputPath, nil
}

// ExtractAudioTo extracts the audio stream of videoPath into outputPath.
func (p *DefaultProcessor) ExtractAudioTo(
	ctx context.Context,
	videoPath, outputPath string,
	opts ExtractAudioOptions,
) error {
	if _, err := os.Stat(videoPath); err != nil {
		return &ExtractionError{Path: videoPath, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return &ExtractionError{
			Path: videoPath,
			Err:  fmt.Errorf("failed to create output directory: %w", err),
		}
	}

	spec := process.CommandSpec{
		Path: p.ffmpegPath,
		Args: extractArgs(videoPath, outputPath, opts),
	}

	err := p.runner.Run(ctx, spec, func(line string) {
		p.logger.Debugw(line, "component", "ffmpeg")
	})
	if err != nil {
		return &ExtractionError{Path: videoPath, Err: err}
	}

	return nil
}

func extractArgs(videoPath, outputPath string, opts ExtractAudioOptions) []string {
	if opts.SampleRate <= 0 {
		opts.SampleRate = 16000
	}
	if opts.Channels <= 0 {
		opts.Channels = 1
	}

	kwargs := ffmpeg.KwArgs{
		"vn": "",
		"ar": opts.SampleRate,
		"ac": opts.Channels,
	}

	switch opts.Format {
	case "mp3":
		kwargs["acodec"] = "libmp3lame"
		if opts.Bitrate != "" {
			kwargs["b:a"] = opts.Bitrate
		}
	case "aac":
		kwargs["acodec"] = "aac"
		if opts.Bitrate != "" {
			kwargs["b:a"] = opts.Bitrate
		}
	case "flac":
		kwargs["acodec"] = "flac"
	default:
		kwargs["acodec"] = "pcm_s16le"
	}

	return ffmpeg.Input(videoPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		GetArgs()
}
