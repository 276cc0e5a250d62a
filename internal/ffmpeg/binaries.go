// Package ffmpeg locates the ffmpeg and ffprobe executables, downloading a
// static build into the user cache when neither the environment nor PATH
// provides them.
package ffmpeg

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const (
	ffmpegReleaseVersion = "6.1"
	ffmpegReleaseBaseURL = "https://github.com/ffbinaries/ffbinaries-prebuilt/releases/download"

	EnvFFmpegPath  = "SUBBURN_FFMPEG_PATH"
	EnvFFprobePath = "SUBBURN_FFPROBE_PATH"
)

type BinaryPaths struct {
	FFmpeg  string
	FFprobe string
}

// Locator resolves binaries. The zero value is not usable; see NewLocator.
type Locator struct {
	getenv   func(string) string
	lookPath func(string) (string, error)
	download func(assetName, installDir string) error
	cacheDir string
	goos     string
	goarch   string
}

func NewLocator() *Locator {
	cacheDir, err := os.UserCacheDir()
	if err != nil || cacheDir == "" {
		cacheDir = os.TempDir()
	}
	return &Locator{
		getenv:   os.Getenv,
		lookPath: exec.LookPath,
		download: downloadAndExtract,
		cacheDir: cacheDir,
		goos:     runtime.GOOS,
		goarch:   runtime.GOARCH,
	}
}

var (
	ensureOnce sync.Once
	ensureErr  error
	ensurePath BinaryPaths
)

// Ensure resolves the binaries once per process.
func Ensure() (BinaryPaths, error) {
	ensureOnce.Do(func() {
		ensurePath, ensureErr = NewLocator().Locate()
	})
	return ensurePath, ensureErr
}

// FFmpegPath returns override when set, otherwise the resolved ffmpeg.
func FFmpegPath(override string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		return override, nil
	}
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFmpeg, nil
}

func FFprobePath() (string, error) {
	paths, err := Ensure()
	if err != nil {
		return "", err
	}
	return paths.FFprobe, nil
}

// Locate checks the environment, then PATH, then the download cache, and
// downloads as a last resort.
func (l *Locator) Locate() (BinaryPaths, error) {
	ffmpegPath := l.getenv(EnvFFmpegPath)
	ffprobePath := l.getenv(EnvFFprobePath)
	if ffmpegPath != "" && ffprobePath != "" {
		return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
	}

	if ffmpegPath == "" {
		if found, err := l.lookPath("ffmpeg"); err == nil {
			ffmpegPath = found
		}
	}
	if ffprobePath == "" {
		if found, err := l.lookPath("ffprobe"); err == nil {
			ffprobePath = found
		}
	}
	if ffmpegPath != "" && ffprobePath != "" {
		return BinaryPaths{FFmpeg: ffmpegPath, FFprobe: ffprobePath}, nil
	}

	assetName, err := assetForPlatform(l.goos, l.goarch)
	if err != nil {
		return BinaryPaths{}, err
	}

	installDir := filepath.Join(l.cacheDir, "subburn", "ffmpeg", ffmpegReleaseVersion, l.goos, l.goarch)
	cached := BinaryPaths{
		FFmpeg:  filepath.Join(installDir, "ffmpeg"+executableSuffix(l.goos)),
		FFprobe: filepath.Join(installDir, "ffprobe"+executableSuffix(l.goos)),
	}
	if binariesExist(cached) {
		return cached, nil
	}

	if err := os.MkdirAll(installDir, 0o755); err != nil {
		return BinaryPaths{}, fmt.Errorf("create ffmpeg cache dir: %w", err)
	}

	// another subburn process may be downloading into the same cache
	lock := flock.New(filepath.Join(installDir, ".download.lock"))
	if err := lock.Lock(); err != nil {
		return BinaryPaths{}, fmt.Errorf("lock ffmpeg cache: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	if binariesExist(cached) {
		return cached, nil
	}

	if err := l.download(assetName, installDir); err != nil {
		return BinaryPaths{}, err
	}
	if !binariesExist(cached) {
		return BinaryPaths{}, errors.New("ffmpeg binaries not found after extraction")
	}

	if l.goos != "windows" {
		for _, path := range []string{cached.FFmpeg, cached.FFprobe} {
			if err := os.Chmod(path, 0o755); err != nil {
				return BinaryPaths{}, fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
			}
		}
	}

	return cached, nil
}

// release asset suffix per GOOS/GOARCH
var platformAssets = map[string]string{
	"linux/amd64":   "linux-64",
	"linux/arm64":   "linux-arm-64",
	"darwin/amd64":  "macos-64",
	"windows/amd64": "win-64",
}

func assetForPlatform(goos, goarch string) (string, error) {
	suffix, ok := platformAssets[goos+"/"+goarch]
	if !ok {
		return "", fmt.Errorf("unsupported platform for downloaded ffmpeg: %s/%s", goos, goarch)
	}
	return fmt.Sprintf("ffmpeg-%s-%s.zip", ffmpegReleaseVersion, suffix), nil
}

func downloadAndExtract(assetName, installDir string) error {
	url := fmt.Sprintf("%s/v%s/%s", ffmpegReleaseBaseURL, ffmpegReleaseVersion, assetName)
	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("download ffmpeg bundle: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download ffmpeg bundle: unexpected status %s", resp.Status)
	}

	tmpFile, err := os.CreateTemp("", "subburn-ffmpeg-*.zip")
	if err != nil {
		return fmt.Errorf("create temp archive: %w", err)
	}
	archivePath := tmpFile.Name()
	defer func() { _ = os.Remove(archivePath) }()

	if _, err := io.Copy(tmpFile, resp.Body); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write archive: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	if err := extractArchive(archivePath, installDir); err != nil {
		return fmt.Errorf("extract %s: %w", assetName, err)
	}
	return nil
}

// extractArchive copies ffmpeg and ffprobe out of the zip, wherever they
// sit inside it, and ignores every other entry.
func extractArchive(archivePath, installDir string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open ffmpeg archive: %w", err)
	}
	defer func() { _ = zr.Close() }()

	suffix := executableSuffix(runtime.GOOS)
	missing := map[string]bool{"ffmpeg": true, "ffprobe": true}
	for _, file := range zr.File {
		name := strings.TrimSuffix(strings.ToLower(filepath.Base(file.Name)), ".exe")
		if !missing[name] {
			continue
		}
		if err := extractZipFile(file, filepath.Join(installDir, name+suffix)); err != nil {
			return err
		}
		delete(missing, name)
	}

	if len(missing) > 0 {
		names := slices.Sorted(maps.Keys(missing))
		return fmt.Errorf("ffmpeg archive missing %s", strings.Join(names, ", "))
	}
	return nil
}

func extractZipFile(file *zip.File, dest string) error {
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("open ffmpeg archive entry: %w", err)
	}
	defer func() { _ = reader.Close() }()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(dest), err)
	}
	defer func() { _ = out.Close() }()

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(dest), err)
	}
	return nil
}

func binariesExist(paths BinaryPaths) bool {
	return fileExists(paths.FFmpeg) && fileExists(paths.FFprobe)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir() && info.Size() > 0
}

func executableSuffix(goos string) string {
	if goos == "windows" {
		return ".exe"
	}
	return ""
}
