package cli

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mgpai22/subburn/internal/video"
)

var audioFormats = []string{"wav", "mp3", "aac", "flac"}

var extractCmd = &cobra.Command{
	Use:   "extract <video>",
	Short: "Write a video's audio track next to it",
	Long: `Extract the audio track of a video. By default the result is
<video>.wav as 16 kHz mono PCM, the input speech recognition expects.

Examples:
  subburn extract talk.mp4
  subburn extract talk.mp4 -f mp3 -o talk-audio.mp3
  subburn extract talk.mp4 --sample-rate 48000 --channels 2`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	defaults := video.DefaultExtractAudioOptions()
	flags := extractCmd.Flags()
	flags.StringP("format", "f", defaults.Format, "Audio format: "+strings.Join(audioFormats, ", "))
	flags.IntP("sample-rate", "r", defaults.SampleRate, "Sample rate in Hz")
	flags.IntP("channels", "c", defaults.Channels, "Channel count (1 = mono)")
	flags.StringP("bitrate", "b", "", "Bitrate for lossy formats, e.g. 128k")
	flags.String("ffmpeg", "", "Path to the ffmpeg binary")
}

func runExtract(cmd *cobra.Command, args []string) error {
	videoPath := args[0]
	flags := cmd.Flags()

	var opts video.ExtractAudioOptions
	opts.Format, _ = flags.GetString("format")
	opts.SampleRate, _ = flags.GetInt("sample-rate")
	opts.Channels, _ = flags.GetInt("channels")
	opts.Bitrate, _ = flags.GetString("bitrate")

	opts.Format = strings.ToLower(opts.Format)
	if !slices.Contains(audioFormats, opts.Format) {
		return fmt.Errorf("unsupported audio format %q (want one of %s)", opts.Format, strings.Join(audioFormats, ", "))
	}
	if err := fileExists(videoPath); err != nil {
		return err
	}

	outputPath, _ := flags.GetString("output")
	if outputPath == "" {
		outputPath = video.AudioPath(videoPath, opts.Format)
	}

	ffmpegOverride, _ := flags.GetString("ffmpeg")
	bins, err := resolveBinaries(ffmpegOverride)
	if err != nil {
		return err
	}

	logger.Infow("Extracting audio",
		"video", videoPath,
		"output", outputPath,
		"format", opts.Format,
		"sample_rate", opts.SampleRate,
		"channels", opts.Channels,
	)
	if err := video.NewProcessor(bins.FFmpeg, logger).ExtractAudioTo(cmd.Context(), videoPath, outputPath, opts); err != nil {
		return err
	}

	if abs, err := filepath.Abs(outputPath); err == nil {
		outputPath = abs
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Audio written to %s\n", outputPath)
	return nil
}
