package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/mgpai22/subburn/internal/logging"
	"github.com/mgpai22/subburn/internal/process"
)

// ChunkInfo is one piece of a split audio file. Start and End are offsets
// in seconds into the source.
type ChunkInfo struct {
	Path  string
	Index int
	Start float64
	End   float64
}

// settings for audio compression
type CompressionOptions struct {
	Format     string // mp3 or aac
	SampleRate int    // Hz
	Channels   int    // 1=mono, 2=stereo
	Bitrate    string // e.g. "64k"
}

// small enough for transcription upload limits
func DefaultCompressionOptions() CompressionOptions {
	return CompressionOptions{
		Format:     "mp3",
		SampleRate: 16000,
		Channels:   1,
		Bitrate:    "64k",
	}
}

// Processor runs ffmpeg/ffprobe jobs on audio files.
type Processor struct {
	ffmpegPath  string
	ffprobePath string
	runner      *process.Runner
	logger      *logging.Logger
}

func NewProcessor(ffmpegPath, ffprobePath string, logger *logging.Logger) *Processor {
	if logger == nil {
		logger = logging.Nop()
	}
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Processor{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		runner:      process.NewRunner(logger),
		logger:      logger,
	}
}

// JSON output from ffprobe
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration returns the length of a media file in seconds.
func (p *Processor) Duration(ctx context.Context, filePath string) (float64, error) {
	if _, err := os.Stat(filePath); err != nil {
		return 0, fmt.Errorf("probe %s: %w", filePath, err)
	}

	cmd := exec.CommandContext(ctx, p.ffprobePath, //nolint:gosec
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}

	return parseProbeDuration(out.Bytes())
}

func parseProbeDuration(data []byte) (float64, error) {
	var probe ffprobeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration %q: %w", probe.Format.Duration, err)
	}
	return seconds, nil
}

// Compress re-encodes inputPath into a small lossy file.
func (p *Processor) Compress(
	ctx context.Context,
	inputPath, outputPath string,
	opts CompressionOptions,
) error {
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("compress %s: %w", inputPath, err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := p.runFFmpeg(ctx, compressArgs(inputPath, outputPath, opts)); err != nil {
		return fmt.Errorf("compression failed: %w", err)
	}
	return nil
}

func compressArgs(inputPath, outputPath string, opts CompressionOptions) []string {
	kwargs := ffmpeg.KwArgs{
		"vn": "",
		"ar": opts.SampleRate,
		"ac": opts.Channels,
	}

	switch opts.Format {
	case "aac":
		kwargs["acodec"] = "aac"
	default:
		kwargs["acodec"] = "libmp3lame"
	}
	if opts.Bitrate != "" {
		kwargs["b:a"] = opts.Bitrate
	}

	return ffmpeg.Input(inputPath).
		Output(outputPath, kwargs).
		OverWriteOutput().
		GetArgs()
}

// PlanChunks lays out consecutive chunks of chunkSeconds covering
// totalSeconds; the last chunk may be shorter.
func PlanChunks(totalSeconds, chunkSeconds float64, outputDir, baseName, ext string) []ChunkInfo {
	if chunkSeconds <= 0 || totalSeconds <= 0 {
		return nil
	}

	var chunks []ChunkInfo
	for i := 0; ; i++ {
		start := float64(i) * chunkSeconds
		if start >= totalSeconds {
			break
		}
		end := min(start+chunkSeconds, totalSeconds)

		chunks = append(chunks, ChunkInfo{
			Path:  filepath.Join(outputDir, fmt.Sprintf("%s_chunk_%03d%s", baseName, i, ext)),
			Index: i,
			Start: start,
			End:   end,
		})
	}
	return chunks
}

// Chunk splits audioPath into pieces of chunkSeconds, running up to
// concurrency ffmpeg processes at once (10 when concurrency <= 0). The
// first failure cancels the remaining work. The result is ordered by Index.
func (p *Processor) Chunk(
	ctx context.Context,
	audioPath string,
	chunkSeconds float64,
	outputDir string,
	concurrency int,
) ([]ChunkInfo, error) {
	if chunkSeconds <= 0 {
		return nil, fmt.Errorf("chunk duration must be positive, got %v", chunkSeconds)
	}
	if concurrency <= 0 {
		concurrency = 10
	}

	total, err := p.Duration(ctx, audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio duration: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	ext := filepath.Ext(audioPath)
	baseName := strings.TrimSuffix(filepath.Base(audioPath), ext)
	chunks := PlanChunks(total, chunkSeconds, outputDir, baseName, ext)

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	work := make(chan ChunkInfo)
	var wg sync.WaitGroup
	for range min(concurrency, len(chunks)) {
		wg.Go(func() {
			for c := range work {
				if err := p.runFFmpeg(ctx, chunkArgs(audioPath, c)); err != nil {
					cancel(fmt.Errorf("failed to create chunk %d: %w", c.Index, err))
				}
			}
		})
	}

feed:
	for _, c := range chunks {
		select {
		case work <- c:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		return nil, err
	}
	return chunks, nil
}

// stream-copies one window of the source
func chunkArgs(audioPath string, c ChunkInfo) []string {
	return ffmpeg.Input(audioPath).
		Output(c.Path, ffmpeg.KwArgs{
			"ss": c.Start,
			"t":  c.End - c.Start,
			"c":  "copy",
		}).
		OverWriteOutput().
		GetArgs()
}

func (p *Processor) runFFmpeg(ctx context.Context, args []string) error {
	return p.runner.Run(ctx, process.CommandSpec{Path: p.ffmpegPath, Args: args}, func(line string) {
		p.logger.Debugw(line, "component", "ffmpeg")
	})
}

var (
	videoExts = []string{".mp4", ".mkv", ".avi", ".mov", ".wmv", ".flv", ".webm", ".m4v", ".mpeg", ".mpg", ".3gp"}
	audioExts = []string{".mp3", ".wav", ".aac", ".flac", ".ogg", ".m4a", ".wma", ".aiff"}
)

func hasExt(path string, exts []string) bool {
	return slices.Contains(exts, strings.ToLower(filepath.Ext(path)))
}

func IsVideoFile(path string) bool { return hasExt(path, videoExts) }

func IsAudioFile(path string) bool { return hasExt(path, audioExts) }

func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}

// CleanupChunks removes chunk files, ignoring ones already gone.
func CleanupChunks(chunks []ChunkInfo) error {
	var errs []error
	for _, chunk := range chunks {
		if err := os.Remove(chunk.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
