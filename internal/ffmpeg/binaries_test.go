package ffmpeg

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func testLocator(t *testing.T, env map[string]string, onPath map[string]string) *Locator {
	t.Helper()
	return &Locator{
		getenv: func(key string) string { return env[key] },
		lookPath: func(name string) (string, error) {
			if p, ok := onPath[name]; ok {
				return p, nil
			}
			return "", errors.New("not found")
		},
		download: func(string, string) error {
			t.Fatal("unexpected download")
			return nil
		},
		cacheDir: t.TempDir(),
		goos:     "linux",
		goarch:   "amd64",
	}
}

func TestLocatePrefersEnvironment(t *testing.T) {
	l := testLocator(t,
		map[string]string{EnvFFmpegPath: "/opt/ffmpeg", EnvFFprobePath: "/opt/ffprobe"},
		map[string]string{"ffmpeg": "/usr/bin/ffmpeg", "ffprobe": "/usr/bin/ffprobe"},
	)

	paths, err := l.Locate()
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	if paths.FFmpeg != "/opt/ffmpeg" || paths.FFprobe != "/opt/ffprobe" {
		t.Errorf("unexpected paths %+v", paths)
	}
}

func TestLocateMixesEnvironmentAndPath(t *testing.T) {
	l := testLocator(t,
		map[string]string{EnvFFmpegPath: "/opt/ffmpeg"},
		map[string]string{"ffprobe": "/usr/bin/ffprobe"},
	)

	paths, err := l.Locate()
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	if paths.FFmpeg != "/opt/ffmpeg" || paths.FFprobe != "/usr/bin/ffprobe" {
		t.Errorf("unexpected paths %+v", paths)
	}
}

func TestLocateUsesCache(t *testing.T) {
	l := testLocator(t, nil, nil)

	installDir := filepath.Join(l.cacheDir, "subburn", "ffmpeg", ffmpegReleaseVersion, "linux", "amd64")
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"ffmpeg", "ffprobe"} {
		if err := os.WriteFile(filepath.Join(installDir, name), []byte("bin"), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := l.Locate()
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	if paths.FFmpeg != filepath.Join(installDir, "ffmpeg") {
		t.Errorf("unexpected ffmpeg path %q", paths.FFmpeg)
	}
}

func TestLocateDownloads(t *testing.T) {
	l := testLocator(t, nil, nil)
	downloads := 0
	l.download = func(asset, dir string) error {
		downloads++
		if asset != "ffmpeg-6.1-linux-64.zip" {
			t.Errorf("unexpected asset %q", asset)
		}
		for _, name := range []string{"ffmpeg", "ffprobe"} {
			if err := os.WriteFile(filepath.Join(dir, name), []byte("bin"), 0o644); err != nil {
				return err
			}
		}
		return nil
	}

	paths, err := l.Locate()
	if err != nil {
		t.Fatalf("Locate returned error: %v", err)
	}
	info, err := os.Stat(paths.FFmpeg)
	if err != nil {
		t.Fatalf("stat downloaded ffmpeg: %v", err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Errorf("downloaded ffmpeg is not executable: %v", info.Mode())
	}

	if _, err := l.Locate(); err != nil {
		t.Fatalf("second Locate returned error: %v", err)
	}
	if downloads != 1 {
		t.Errorf("expected one download, got %d", downloads)
	}
}

func TestLocateUnsupportedPlatform(t *testing.T) {
	l := testLocator(t, nil, nil)
	l.goos, l.goarch = "plan9", "386"

	if _, err := l.Locate(); err == nil {
		t.Error("expected error for unsupported platform")
	}
}

func TestAssetForPlatform(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
		wantErr      bool
	}{
		{"linux", "amd64", "ffmpeg-6.1-linux-64.zip", false},
		{"linux", "arm64", "ffmpeg-6.1-linux-arm-64.zip", false},
		{"darwin", "amd64", "ffmpeg-6.1-macos-64.zip", false},
		{"windows", "amd64", "ffmpeg-6.1-win-64.zip", false},
		{"darwin", "arm64", "", true},
	}

	for _, tt := range tests {
		got, err := assetForPlatform(tt.goos, tt.goarch)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s/%s: error = %v, wantErr %v", tt.goos, tt.goarch, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("%s/%s: got %q, want %q", tt.goos, tt.goarch, got, tt.want)
		}
	}
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestExtractArchive(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bundle.zip")
	writeZip(t, archive, map[string]string{
		"bundle/ffmpeg":  "ffmpeg-binary",
		"bundle/ffprobe": "ffprobe-binary",
		"bundle/README":  "docs",
	})

	installDir := filepath.Join(dir, "install")
	if err := os.MkdirAll(installDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := extractArchive(archive, installDir); err != nil {
		t.Fatalf("extractArchive returned error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(installDir, "ffprobe"+executableSuffix(runtime.GOOS)))
	if err != nil || string(data) != "ffprobe-binary" {
		t.Errorf("ffprobe not extracted: %q, %v", data, err)
	}

	incomplete := filepath.Join(dir, "incomplete.zip")
	writeZip(t, incomplete, map[string]string{"ffmpeg": "only"})
	if err := extractArchive(incomplete, installDir); err == nil {
		t.Error("expected error for archive without ffprobe")
	}
}
