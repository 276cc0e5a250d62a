package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// FFmpeg locates the encoder binaries.
type FFmpeg struct {
	Path        string `toml:"path"`
	FFprobePath string `toml:"ffprobe_path"`
}

// Burn holds the encode settings for hard-subbing.
type Burn struct {
	Device  string   `toml:"device"`
	Preset  string   `toml:"preset"`
	BitRate string   `toml:"bit_rate"`
	Style   []string `toml:"style"`
}

// Transcription configures speech-to-text and cue generation.
type Transcription struct {
	Provider           string  `toml:"provider"`
	Model              string  `toml:"model"`
	Language           string  `toml:"language"`
	TranscriptLanguage string  `toml:"transcript_language"`
	Prompt             string  `toml:"prompt"`
	ChunkMinutes       int     `toml:"chunk_minutes"`
	Concurrency        int     `toml:"concurrency"`
	MaxCharsPerLine    int     `toml:"max_chars_per_line"`
	MaxCueSeconds      float64 `toml:"max_cue_seconds"`
	APIKey             string  `toml:"api_key"`
}

// Translation configures cue text translation.
type Translation struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	InputLanguage  string `toml:"input_language"`
	TargetLanguage string `toml:"target_language"`
	Prompt         string `toml:"prompt"`
	BatchSize      int    `toml:"batch_size"`
	Concurrency    int    `toml:"concurrency"`
	Overlay        bool   `toml:"overlay"`
	APIKey         string `toml:"api_key"`
}

// Config encapsulates all configuration values for subburn.
type Config struct {
	FFmpeg        FFmpeg        `toml:"ffmpeg"`
	Burn          Burn          `toml:"burn"`
	Transcription Transcription `toml:"transcription"`
	Translation   Translation   `toml:"translation"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. It returns the
// config, the path it resolved and whether that file exists. A missing file
// yields defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		// an absent style key falls back to the default during normalize
		cfg.Burn.Style = nil

		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// CreateSample writes the sample configuration to path. An existing file is
// left alone and reported as an error.
func CreateSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists: %s", path)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
