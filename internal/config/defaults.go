package config

import "github.com/mgpai22/subburn/internal/video"

const (
	defaultConfigPath     = "~/.config/subburn/config.toml"
	projectConfigName     = "subburn.toml"
	defaultDevice         = "cpu"
	defaultTranscriber    = "whisper"
	defaultTranscriptLang = "native"
	defaultChunkMinutes   = 10
	defaultConcurrency    = 3
	defaultTranslator     = "gemini"
	defaultTranslateBatch = 50
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Burn: Burn{
			Device:  defaultDevice,
			Preset:  video.PresetMedium,
			BitRate: video.DefaultBitRate,
			Style:   video.DefaultStyle(),
		},
		Transcription: Transcription{
			Provider:           defaultTranscriber,
			TranscriptLanguage: defaultTranscriptLang,
			ChunkMinutes:       defaultChunkMinutes,
			Concurrency:        defaultConcurrency,
		},
		Translation: Translation{
			Provider:    defaultTranslator,
			BatchSize:   defaultTranslateBatch,
			Concurrency: defaultConcurrency,
		},
	}
}
