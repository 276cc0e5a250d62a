package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/mgpai22/subburn/internal/video"
)

func (c *Config) normalize() error {
	if err := c.normalizeFFmpeg(); err != nil {
		return err
	}
	c.normalizeBurn()
	c.normalizeTranscription()
	c.normalizeTranslation()
	return nil
}

func (c *Config) normalizeFFmpeg() error {
	var err error
	if c.FFmpeg.Path, err = expandPath(strings.TrimSpace(c.FFmpeg.Path)); err != nil {
		return fmt.Errorf("ffmpeg.path: %w", err)
	}
	if c.FFmpeg.FFprobePath, err = expandPath(strings.TrimSpace(c.FFmpeg.FFprobePath)); err != nil {
		return fmt.Errorf("ffmpeg.ffprobe_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeBurn() {
	c.Burn.Device = lower(c.Burn.Device)
	if c.Burn.Device == "" {
		c.Burn.Device = defaultDevice
	}
	c.Burn.Preset = lower(c.Burn.Preset)
	c.Burn.BitRate = strings.TrimSpace(c.Burn.BitRate)

	style := c.Burn.Style[:0]
	for _, entry := range c.Burn.Style {
		if entry = strings.TrimSpace(entry); entry != "" {
			style = append(style, entry)
		}
	}
	if len(style) == 0 {
		style = video.DefaultStyle()
	}
	c.Burn.Style = style
}

func (c *Config) normalizeTranscription() {
	t := &c.Transcription
	t.Provider = lower(t.Provider)
	if t.Provider == "" {
		t.Provider = defaultTranscriber
	}
	t.Model = strings.TrimSpace(t.Model)
	t.Language = strings.TrimSpace(t.Language)
	t.TranscriptLanguage = strings.TrimSpace(t.TranscriptLanguage)
	if t.TranscriptLanguage == "" {
		t.TranscriptLanguage = defaultTranscriptLang
	}
	t.Prompt = strings.TrimSpace(t.Prompt)
	t.APIKey = apiKeyOrEnv(t.APIKey, t.Provider)
}

func (c *Config) normalizeTranslation() {
	t := &c.Translation
	t.Provider = lower(t.Provider)
	if t.Provider == "" {
		t.Provider = defaultTranslator
	}
	t.Model = strings.TrimSpace(t.Model)
	t.InputLanguage = strings.TrimSpace(t.InputLanguage)
	t.TargetLanguage = strings.TrimSpace(t.TargetLanguage)
	t.Prompt = strings.TrimSpace(t.Prompt)
	t.APIKey = apiKeyOrEnv(t.APIKey, t.Provider)
}

// APIKeyEnv names the environment variable consulted for a provider's key.
func APIKeyEnv(provider string) string {
	switch lower(provider) {
	case "gemini":
		return "GEMINI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

func apiKeyOrEnv(key, provider string) string {
	if key = strings.TrimSpace(key); key != "" {
		return key
	}
	if value, ok := os.LookupEnv(APIKeyEnv(provider)); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
