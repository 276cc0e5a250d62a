package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mgpai22/subburn/internal/subtitle"
)

// runCLI executes the command tree with fresh flag state and returns what
// commands wrote through cmd.OutOrStdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

const twoCueSRT = "7\n00:00:01,000 --> 00:00:02,500\nHello\n\n9\n00:00:03,000 --> 00:00:04,000\nWorld\n\n"

func TestTextCommand(t *testing.T) {
	dir := t.TempDir()
	srt := filepath.Join(dir, "talk.srt")
	writeFile(t, srt, twoCueSRT)

	if _, err := runCLI(t, "text", srt); err != nil {
		t.Fatalf("text command failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "talk.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Hello\nWorld\n" {
		t.Errorf("transcript = %q", data)
	}
}

func TestRenumberCommand(t *testing.T) {
	srt := filepath.Join(t.TempDir(), "edited.srt")
	writeFile(t, srt, twoCueSRT)

	if _, err := runCLI(t, "renumber", srt); err != nil {
		t.Fatalf("renumber command failed: %v", err)
	}

	doc, err := subtitle.ReadFile(srt)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Len() != 2 || doc.Cue(0).Index != 1 || doc.Cue(1).Index != 2 {
		t.Errorf("cues not renumbered: %+v %+v", doc.Cue(0), doc.Cue(1))
	}
	if doc.Cue(1).Text != "World" || doc.Cue(0).End != 2.5 {
		t.Errorf("text or timing changed: %+v", doc.Cue(0))
	}
}

func TestRenumberCommandRejectsMalformedFile(t *testing.T) {
	srt := filepath.Join(t.TempDir(), "broken.srt")
	writeFile(t, srt, "1\nnot a time line\nHello\n")

	if _, err := runCLI(t, "renumber", srt); err == nil {
		t.Fatal("expected parse error")
	}
	data, _ := os.ReadFile(srt)
	if string(data) != "1\nnot a time line\nHello\n" {
		t.Error("malformed file should be left untouched")
	}
}

func TestCuesCommand(t *testing.T) {
	srt := filepath.Join(t.TempDir(), "talk.srt")
	writeFile(t, srt, twoCueSRT)

	out, err := runCLI(t, "cues", srt)
	if err != nil {
		t.Fatalf("cues command failed: %v", err)
	}
	for _, want := range []string{"00:00:01,000", "00:00:02,500", "1.500", "Hello", "World"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestBurnDryRun(t *testing.T) {
	out, err := runCLI(t, "burn", "clips/ep 1.mp4", "clips/ep 1.srt",
		"--dry-run", "--device", "GPU", "--preset", "slow", "--bitrate", "5M", "--ffmpeg", "/opt/ffmpeg")
	if err != nil {
		t.Fatalf("burn --dry-run failed: %v", err)
	}

	for _, want := range []string{`cd "clips"`, "/opt/ffmpeg", "h264_nvenc", "slow", "5M", "ep 1_subtitle.mp4", "force_style"} {
		if !strings.Contains(out, want) {
			t.Errorf("dry run output missing %q:\n%s", want, out)
		}
	}
}

func TestBurnDryRunUsesConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "subburn.toml")
	writeFile(t, cfgPath, "[burn]\npreset = \"fast\"\nstyle = [\"FontSize=30\"]\n")

	out, err := runCLI(t, "--config", cfgPath, "burn", "v.mp4", "v.srt", "--dry-run")
	if err != nil {
		t.Fatalf("burn --dry-run failed: %v", err)
	}
	for _, want := range []string{"libx264", "fast", "FontSize=30"} {
		if !strings.Contains(out, want) {
			t.Errorf("dry run output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "MarginV") {
		t.Errorf("configured style should replace the default:\n%s", out)
	}
}

func TestBurnMissingInput(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, "burn", filepath.Join(dir, "none.mp4"), filepath.Join(dir, "none.srt")); err == nil {
		t.Fatal("expected error for missing video")
	}
}

func TestExtractRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown format", []string{"extract", "talk.mp4", "-f", "ogg"}, "unsupported audio format"},
		{"missing video", []string{"extract", "talk.mp4"}, "file not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestConfigInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "config.toml")

	if _, err := runCLI(t, "config", "init", path); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}
	if _, err := runCLI(t, "config", "init", path); err == nil {
		t.Error("expected error when config exists")
	}
}

func TestTranslateRequiresTargetLanguage(t *testing.T) {
	srt := filepath.Join(t.TempDir(), "talk.srt")
	writeFile(t, srt, twoCueSRT)

	_, err := runCLI(t, "translate", srt)
	if err == nil || !strings.Contains(err.Error(), "target language is required") {
		t.Errorf("expected target language error, got %v", err)
	}
}

func TestTranslateRejectsSettings(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"same language", []string{"-l", "French", "-t", " french "}, "cannot be the same"},
		{"unknown provider", []string{"-t", "ja", "--provider", "deepl"}, "unsupported translation provider"},
		{"zero concurrency", []string{"-t", "ja", "--concurrency", "0"}, "concurrency must be positive"},
		{"zero batch", []string{"-t", "ja", "--batch-size", "0"}, "batch-size must be positive"},
		{"missing key", []string{"-t", "ja"}, "GEMINI_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GEMINI_API_KEY", "")
			srt := filepath.Join(t.TempDir(), "talk.srt")
			writeFile(t, srt, twoCueSRT)

			_, err := runCLI(t, append([]string{"translate", srt}, tt.args...)...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestTranslatedPath(t *testing.T) {
	tests := []struct {
		path    string
		lang    string
		overlay bool
		want    string
	}{
		{"video.srt", "ja", false, "video.ja.srt"},
		{"video.srt", "Brazilian Portuguese", false, "video.brazilian_portuguese.srt"},
		{"dir/video.srt", "es", true, "dir/video.es.overlay.srt"},
	}
	for _, tt := range tests {
		if got := translatedPath(tt.path, tt.lang, tt.overlay); got != tt.want {
			t.Errorf("translatedPath(%q, %q, %v) = %q, want %q", tt.path, tt.lang, tt.overlay, got, tt.want)
		}
	}
}

func TestParseProgressTime(t *testing.T) {
	tests := []struct {
		line string
		want float64
		ok   bool
	}{
		{"frame=  240 fps= 60 q=28.0 size=  1024kB time=00:00:10.50 bitrate= 799.0kbits/s", 10.5, true},
		{"size=N/A time=01:02:03.25 bitrate=N/A speed=2x", 3723.25, true},
		{"time=00:00:07 speed=1x", 7, true},
		{"Stream #0:0: Video: h264", 0, false},
		{"time=N/A", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseProgressTime(tt.line)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseProgressTime(%q) = %v, %v; want %v, %v", tt.line, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"a longer line of text", 10, "a longe..."},
		{"こんにちは世界", 5, "こん..."},
		{"anything", 0, "anything"},
		{"abcdef", 2, "ab"},
	}
	for _, tt := range tests {
		if got := truncateText(tt.in, tt.width); got != tt.want {
			t.Errorf("truncateText(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestRenderTable(t *testing.T) {
	if got := renderTable(nil, nil); got != "" {
		t.Errorf("expected empty table, got %q", got)
	}

	out := renderTable([]column{
		{header: "#", align: text.AlignRight},
		{header: "Text", maxRunes: 6},
	}, [][]string{{"1"}, {"2", "two words"}})
	for _, want := range []string{"Text", "two..."} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "TEXT") || strings.Contains(out, "two words") {
		t.Errorf("header should keep its case and cells should be cut:\n%s", out)
	}
}
