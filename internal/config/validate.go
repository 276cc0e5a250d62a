package config

import (
	"errors"
	"fmt"
	"slices"
)

var (
	transcriptionProviders = []string{"whisper", "openai", "gemini"}
	translationProviders   = []string{"gemini", "openai", "anthropic"}
	devices                = []string{"gpu", "cpu"}
)

// Validate ensures the configuration is usable. API keys are not required
// here; commands that call a provider check for them.
func (c *Config) Validate() error {
	if err := c.validateBurn(); err != nil {
		return err
	}
	if err := c.validateTranscription(); err != nil {
		return err
	}
	return c.validateTranslation()
}

func (c *Config) validateBurn() error {
	if !slices.Contains(devices, c.Burn.Device) {
		return fmt.Errorf("burn.device must be one of %v, got %q", devices, c.Burn.Device)
	}
	return nil
}

func (c *Config) validateTranscription() error {
	t := c.Transcription
	if !slices.Contains(transcriptionProviders, t.Provider) {
		return fmt.Errorf("transcription.provider must be one of %v, got %q", transcriptionProviders, t.Provider)
	}
	if t.ChunkMinutes <= 0 {
		return errors.New("transcription.chunk_minutes must be positive")
	}
	if t.Concurrency <= 0 {
		return errors.New("transcription.concurrency must be positive")
	}
	if t.MaxCharsPerLine < 0 {
		return errors.New("transcription.max_chars_per_line must not be negative")
	}
	if t.MaxCueSeconds < 0 {
		return errors.New("transcription.max_cue_seconds must not be negative")
	}
	return nil
}

func (c *Config) validateTranslation() error {
	t := c.Translation
	if !slices.Contains(translationProviders, t.Provider) {
		return fmt.Errorf("translation.provider must be one of %v, got %q", translationProviders, t.Provider)
	}
	if t.BatchSize <= 0 {
		return errors.New("translation.batch_size must be positive")
	}
	if t.Concurrency <= 0 {
		return errors.New("translation.concurrency must be positive")
	}
	return nil
}
