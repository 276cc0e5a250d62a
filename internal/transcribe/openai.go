package transcribe

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mgpai22/subburn/internal/subtitle"
)

const defaultWhisperModel = "whisper-1"

// OpenAITranscriber calls the Whisper audio endpoints with verbose_json
// output so every segment carries its own timing.
type OpenAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// verbose_json body shared by transcriptions and translations
type whisperVerboseResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func NewOpenAITranscriber(_ context.Context, apiKey string, opts Options) (*OpenAITranscriber, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}
	return &OpenAITranscriber{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   cmp.Or(opts.Model, defaultWhisperModel),
		options: opts,
	}, nil
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, t.fail(audioPath, fmt.Errorf("open audio: %w", err))
	}
	defer file.Close()

	raw, text, err := t.request(ctx, file)
	if err != nil {
		return nil, t.fail(audioPath, err)
	}

	duration := t.options.duration(ctx, audioPath)
	segments, err := parseVerboseJSONResponse(raw, duration)
	if err != nil {
		segments = wholeFileSegment(text, duration)
	}

	language := t.options.Language
	if t.shouldUseTranslation() {
		language = "en"
	}
	return &Result{Segments: segments, Language: language, Duration: duration}, nil
}

func (t *OpenAITranscriber) fail(path string, err error) error {
	return &TranscriptionError{Provider: ProviderOpenAI, Path: path, Err: err}
}

// the translations endpoint only produces English
func (t *OpenAITranscriber) shouldUseTranslation() bool {
	lang := strings.ToLower(strings.TrimSpace(t.options.TranscriptLanguage))
	return lang == "english" || lang == "en"
}

// request sends the audio to the endpoint matching the transcript
// language and returns the raw verbose_json body plus its plain text.
func (t *OpenAITranscriber) request(ctx context.Context, file *os.File) (string, string, error) {
	if t.shouldUseTranslation() {
		params := openai.AudioTranslationNewParams{
			File:           file,
			Model:          openai.AudioModel(t.model),
			ResponseFormat: openai.AudioTranslationNewParamsResponseFormatVerboseJSON,
		}
		if t.options.Prompt != "" {
			params.Prompt = openai.String(t.options.Prompt)
		}

		resp, err := t.client.Audio.Translations.New(ctx, params)
		if err != nil {
			return "", "", fmt.Errorf("whisper translation: %w", err)
		}
		return resp.RawJSON(), resp.Text, nil
	}

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}
	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}
	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}

	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", "", fmt.Errorf("whisper transcription: %w", err)
	}
	return resp.RawJSON(), resp.Text, nil
}

// parseVerboseJSONResponse converts Whisper segments, skipping blank ones.
// A body with text but no segments becomes one segment spanning the
// reported duration, or fallbackDuration when none is reported.
func parseVerboseJSONResponse(rawJSON string, fallbackDuration float64) ([]subtitle.Segment, error) {
	if rawJSON == "" {
		return nil, errors.New("empty response")
	}

	var resp whisperVerboseResponse
	if err := json.Unmarshal([]byte(rawJSON), &resp); err != nil {
		return nil, fmt.Errorf("parse verbose_json response: %w", err)
	}

	if len(resp.Segments) == 0 {
		if strings.TrimSpace(resp.Text) == "" {
			return nil, errors.New("no segments or text in response")
		}
		return wholeFileSegment(resp.Text, cmp.Or(resp.Duration, fallbackDuration)), nil
	}

	segments := make([]subtitle.Segment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			segments = append(segments, subtitle.Segment{Start: seg.Start, End: seg.End, Text: text})
		}
	}
	return segments, nil
}

func wholeFileSegment(text string, duration float64) []subtitle.Segment {
	return []subtitle.Segment{{Start: 0, End: duration, Text: strings.TrimSpace(text)}}
}
