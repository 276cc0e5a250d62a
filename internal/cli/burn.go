package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/mgpai22/subburn/internal/audio"
	"github.com/mgpai22/subburn/internal/logging"
	"github.com/mgpai22/subburn/internal/process"
	"github.com/mgpai22/subburn/internal/video"
)

var burnCmd = &cobra.Command{
	Use:   "burn [video_file] [subtitle_file]",
	Short: "Burn subtitles into the video frames",
	Long: `Re-encode a video with the subtitles drawn onto the frames, writing
<video>_subtitle<ext> next to the input. Audio is copied unchanged.

--device gpu encodes with h264_nvenc; anything else uses libx264. Presets
other than fast, medium and slow fall back to medium. --style replaces the
default subtitle style with comma-separated ASS key=value directives.

Examples:
  subburn burn video.mp4 video.srt
  subburn burn video.mp4 video.srt --device gpu --preset fast --bitrate 5M
  subburn burn video.mp4 video.srt --style "FontName=Arial,FontSize=18"
  subburn burn video.mp4 video.srt --dry-run`,
	Args: cobra.ExactArgs(2),
	RunE: runBurn,
}

func init() {
	rootCmd.AddCommand(burnCmd)

	burnCmd.Flags().String("device", "", "Encoding device (gpu or cpu)")
	burnCmd.Flags().String("preset", "", "Encoder preset (fast, medium, slow)")
	burnCmd.Flags().String("bitrate", "", "Video bit rate passed to ffmpeg (e.g. 3M)")
	burnCmd.Flags().String("style", "", "Comma-separated subtitle style directives")
	burnCmd.Flags().String("ffmpeg", "", "Path to the ffmpeg binary")
	burnCmd.Flags().Bool("dry-run", false, "Print the ffmpeg command without running it")
}

func runBurn(cmd *cobra.Command, args []string) error {
	videoPath, subtitlePath := args[0], args[1]
	ctx := cmd.Context()

	bc := cfg.Burn
	style := bc.Style
	if cmd.Flags().Changed("style") {
		value, _ := cmd.Flags().GetString("style")
		style = video.ParseStyle(value)
	}
	encodeCfg := video.NewEncodeConfig(
		stringFlag(cmd, "device", bc.Device),
		stringFlag(cmd, "preset", bc.Preset),
		stringFlag(cmd, "bitrate", bc.BitRate),
		style,
	)
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	ffmpegOverride, _ := cmd.Flags().GetString("ffmpeg")

	if dryRun {
		ffmpegPath := ffmpegOverride
		if ffmpegPath == "" {
			ffmpegPath = cfg.FFmpeg.Path
		}
		plan, err := video.BuildBurnCommand(ffmpegPath, videoPath, subtitlePath, encodeCfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cd %q && %s\n", plan.Command.Dir, plan.Command.String())
		return nil
	}

	for _, path := range []string{videoPath, subtitlePath} {
		if err := fileExists(path); err != nil {
			return err
		}
	}

	bins, err := resolveBinaries(ffmpegOverride)
	if err != nil {
		return err
	}

	plan, err := video.BuildBurnCommand(bins.FFmpeg, videoPath, subtitlePath, encodeCfg)
	if err != nil {
		return err
	}

	lock, err := lockOutput(plan.OutputPath)
	if err != nil {
		return err
	}
	defer lock.release()

	logger.Infow("Burning subtitles",
		"video", videoPath,
		"subtitles", subtitlePath,
		"output", plan.OutputPath,
		"encoder", encodeCfg.Encoder(),
		"preset", encodeCfg.Preset(),
		"bit_rate", encodeCfg.BitRate(),
	)
	logger.Debugw("ffmpeg command", "dir", plan.Command.Dir, "command", plan.Command.String())

	var progress *encodeProgress
	if !quiet && logging.IsTerminal(os.Stderr) {
		prober := audio.NewProcessor(bins.FFmpeg, bins.FFprobe, logger)
		if total, err := prober.Duration(ctx, videoPath); err == nil && total > 0 {
			progress = newEncodeProgress(os.Stderr, "burning", total)
		} else {
			logger.Debugw("Progress unavailable", "error", err)
		}
	}

	proc, err := process.NewRunner(logger).Start(ctx, plan.Command)
	if err != nil {
		return err
	}
	for line := range proc.Lines() {
		logger.Debugw(line, "component", "ffmpeg")
		switch {
		case progress != nil:
			progress.observe(line)
		case !quiet:
			fmt.Fprintln(os.Stderr, line)
		}
	}
	err = proc.Wait()
	if progress != nil {
		progress.finish()
	}
	if err != nil {
		var failure *process.Failure
		if errors.As(err, &failure) && progress != nil {
			for _, line := range failure.Tail {
				fmt.Fprintln(os.Stderr, line)
			}
		}
		return fmt.Errorf("burn failed: %w", err)
	}

	absOutput, _ := filepath.Abs(plan.OutputPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Subtitles burned successfully: %s\n", absOutput)
	return nil
}

type outputLock struct {
	lock *flock.Flock
	path string
}

// lockOutput keeps two burns from writing the same output file.
func lockOutput(outputPath string) (*outputLock, error) {
	lockPath := outputPath + ".lock"
	lock := flock.New(lockPath)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("another burn is already writing %s", outputPath)
	}
	return &outputLock{lock: lock, path: lockPath}, nil
}

func (l *outputLock) release() {
	if err := l.lock.Unlock(); err != nil {
		logger.Warnw("Failed to release output lock", "path", l.path, "error", err)
		return
	}
	_ = os.Remove(l.path)
}
