package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subburn/internal/audio"
	"github.com/mgpai22/subburn/internal/subtitle"
	"github.com/mgpai22/subburn/internal/transcribe"
	"github.com/mgpai22/subburn/internal/video"
)

var generateCmd = &cobra.Command{
	Use:   "generate [media_file]",
	Short: "Generate subtitles for an audio or video file",
	Long: `Generate subtitles for the specified audio or video file using AI transcription.

For video files the audio track is first extracted next to the video as a
16 kHz mono .wav. The audio is compressed, split into chunks and transcribed
in parallel. The result is written as a subtitle file (SRT by default) plus a
plain-text transcript (.txt) with the timing and numbering removed.

Examples:
  subburn generate video.mp4
  subburn generate video.mp4 --provider gemini --chunk-minutes 2
  subburn generate podcast.mp3 -f vtt --concurrency 5
  subburn generate lecture.mp4 --prompt "Kubernetes, etcd, kubelet"`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().
		String("provider", "", "Transcription provider (whisper, openai, gemini)")
	generateCmd.Flags().
		StringP("api-key", "k", "", "API key (or set OPENAI_API_KEY/GEMINI_API_KEY env var)")
	generateCmd.Flags().
		String("model", "", "Model to use for transcription (provider default when empty)")
	generateCmd.Flags().
		IntP("chunk-minutes", "d", 10, "Chunk duration in minutes for splitting audio")
	generateCmd.Flags().
		Int("concurrency", 3, "Number of parallel transcription workers")
	generateCmd.Flags().
		StringP("format", "f", "srt", "Output subtitle format (srt, vtt, ass)")
	generateCmd.Flags().
		String("transcript-language", "native", "Output language for transcript (e.g., 'english', or 'native' for original language)")
	generateCmd.Flags().
		String("prompt", "", "Names and vocabulary to bias recognition")
	generateCmd.Flags().
		Int("max-chars", 0, "Wrap cue text onto two lines past this many characters (0 disables)")
	generateCmd.Flags().
		Float64("max-duration", 0, "Split cues longer than this many seconds (0 disables)")
	generateCmd.Flags().
		Bool("no-text", false, "Do not write the plain-text transcript")
	generateCmd.Flags().
		String("ffmpeg", "", "Path to the ffmpeg binary")
}

// the OpenAI translations endpoint only produces English
func isValidOpenAITranscriptLanguage(lang string) bool {
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "", "native", "english", "en":
		return true
	default:
		return false
	}
}

// transcriptPath is the plain-text companion of a subtitle file.
func transcriptPath(subtitlePath string) string {
	return strings.TrimSuffix(subtitlePath, filepath.Ext(subtitlePath)) + ".txt"
}

func runGenerate(cmd *cobra.Command, args []string) error {
	mediaPath := args[0]
	ctx := cmd.Context()

	if err := fileExists(mediaPath); err != nil {
		return err
	}
	if !audio.IsMediaFile(mediaPath) {
		return fmt.Errorf("unsupported file type: %s (expected audio or video file)", filepath.Ext(mediaPath))
	}

	tc := cfg.Transcription
	provider := transcribe.Provider(strings.ToLower(stringFlag(cmd, "provider", tc.Provider)))
	model := stringFlag(cmd, "model", tc.Model)
	language := stringFlag(cmd, "language", tc.Language)
	transcriptLang := stringFlag(cmd, "transcript-language", tc.TranscriptLanguage)
	prompt := stringFlag(cmd, "prompt", tc.Prompt)
	chunkMinutes := intFlag(cmd, "chunk-minutes", tc.ChunkMinutes)
	concurrency := intFlag(cmd, "concurrency", tc.Concurrency)
	maxChars := intFlag(cmd, "max-chars", tc.MaxCharsPerLine)
	maxDuration := tc.MaxCueSeconds
	if cmd.Flags().Changed("max-duration") {
		maxDuration, _ = cmd.Flags().GetFloat64("max-duration")
	}
	formatStr, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	noText, _ := cmd.Flags().GetBool("no-text")
	ffmpegOverride, _ := cmd.Flags().GetString("ffmpeg")

	if chunkMinutes <= 0 {
		return fmt.Errorf("chunk-minutes must be positive, got %d", chunkMinutes)
	}
	if concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", concurrency)
	}
	if provider != transcribe.ProviderGemini && !isValidOpenAITranscriptLanguage(transcriptLang) {
		return fmt.Errorf(
			"transcript language %q is not supported by %s: use 'native' or 'english'",
			transcriptLang,
			provider,
		)
	}

	apiKey, err := resolveAPIKey(cmd, string(provider), tc.Provider, tc.APIKey, transcribe.APIKeyEnv(provider))
	if err != nil {
		return err
	}

	format, err := subtitle.ParseFormat(formatStr)
	if err != nil {
		return err
	}
	if outputPath == "" {
		baseName := strings.TrimSuffix(mediaPath, filepath.Ext(mediaPath))
		outputPath = baseName + subtitle.GetExtensionForFormat(format)
	}

	bins, err := resolveBinaries(ffmpegOverride)
	if err != nil {
		return err
	}

	logger.Infow("Starting subtitle generation",
		"input", mediaPath,
		"output", outputPath,
		"format", format,
		"provider", provider,
		"chunk_minutes", chunkMinutes,
		"concurrency", concurrency,
	)

	tempDir, err := os.MkdirTemp("", "subburn-*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	sourceAudio := mediaPath
	if audio.IsVideoFile(mediaPath) {
		logger.Infow("Extracting audio from video")
		extractor := video.NewProcessor(bins.FFmpeg, logger)
		sourceAudio, err = extractor.ExtractAudio(ctx, mediaPath)
		if err != nil {
			return err
		}
		logger.Infow("Audio extracted", "path", sourceAudio)
	}

	processor := audio.NewProcessor(bins.FFmpeg, bins.FFprobe, logger)

	logger.Infow("Compressing audio for transcription")
	compressed := filepath.Join(tempDir, "audio.mp3")
	if err := processor.Compress(ctx, sourceAudio, compressed, audio.DefaultCompressionOptions()); err != nil {
		return fmt.Errorf("failed to compress audio: %w", err)
	}

	chunks, err := processor.Chunk(ctx, compressed, float64(chunkMinutes*60), filepath.Join(tempDir, "chunks"), 0)
	if err != nil {
		return fmt.Errorf("failed to split audio: %w", err)
	}
	logger.Infow("Created audio chunks", "count", len(chunks))

	transcriber, err := transcribe.Factory(ctx, provider, apiKey, transcribe.Options{
		Language:           language,
		TranscriptLanguage: transcriptLang,
		Model:              model,
		Prompt:             prompt,
		Duration:           processor.Duration,
	})
	if err != nil {
		return fmt.Errorf("failed to create transcriber: %w", err)
	}

	logger.Infow("Transcribing audio", "concurrency", concurrency)
	result, err := transcribe.TranscribeChunks(ctx, transcriber, chunks, concurrency)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}
	logger.Infow("Transcription complete", "segments", len(result.Segments))

	generator := subtitle.NewDefaultGenerator()
	generator.MaxCharsPerLine = maxChars
	generator.MaxDuration = maxDuration
	generator.ClampRanges = true

	doc, err := generator.Generate(result.All())
	if err != nil {
		return fmt.Errorf("failed to generate subtitles: %w", err)
	}

	writer, err := subtitle.NewWriter(format)
	if err != nil {
		return err
	}
	if err := writer.Write(doc, outputPath); err != nil {
		return fmt.Errorf("failed to write subtitles: %w", err)
	}

	absOutput, _ := filepath.Abs(outputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Subtitles generated successfully: %s\n", absOutput)
	fmt.Fprintf(cmd.OutOrStdout(), "  Cues: %d\n", doc.Len())
	fmt.Fprintf(cmd.OutOrStdout(), "  Duration: %s\n", subtitle.FormatTimestamp(result.Duration))

	if !noText {
		textPath := transcriptPath(outputPath)
		if err := writeTranscript(textPath, subtitle.ProjectDocument(doc)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  Transcript: %s\n", textPath)
	}

	return nil
}

func writeTranscript(path, text string) error {
	if text != "" {
		text += "\n"
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
