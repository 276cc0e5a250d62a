package cli

import (
	"fmt"

	"github.com/mgpai22/subburn/internal/ffmpeg"
)

// resolveBinaries applies the flag override and the configured paths before
// falling back to the environment, PATH or a cached download.
func resolveBinaries(ffmpegOverride string) (ffmpeg.BinaryPaths, error) {
	paths := ffmpeg.BinaryPaths{
		FFmpeg:  ffmpegOverride,
		FFprobe: cfg.FFmpeg.FFprobePath,
	}
	if paths.FFmpeg == "" {
		paths.FFmpeg = cfg.FFmpeg.Path
	}
	if paths.FFmpeg != "" && paths.FFprobe != "" {
		return paths, nil
	}

	found, err := ffmpeg.Ensure()
	if err != nil {
		return ffmpeg.BinaryPaths{}, fmt.Errorf("failed to locate ffmpeg: %w", err)
	}
	if paths.FFmpeg == "" {
		paths.FFmpeg = found.FFmpeg
	}
	if paths.FFprobe == "" {
		paths.FFprobe = found.FFprobe
	}

	logger.Debugw("Resolved ffmpeg binaries", "ffmpeg", paths.FFmpeg, "ffprobe", paths.FFprobe)
	return paths, nil
}
