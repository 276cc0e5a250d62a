package transcribe

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/mgpai22/subburn/internal/llmjson"
	"github.com/mgpai22/subburn/internal/subtitle"
)

// implements Transcriber using Google Gemini
type GeminiTranscriber struct {
	client  *genai.Client
	model   string
	options Options
}

// segment from Gemini's JSON response
type transcriptSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

const defaultGeminiModel = "gemini-2.5-flash"

func NewGeminiTranscriber(ctx context.Context, apiKey string, opts Options) (*GeminiTranscriber, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiTranscriber{
		client:  client,
		model:   cmp.Or(opts.Model, defaultGeminiModel),
		options: opts,
	}, nil
}

// transcribes single audio file
func (t *GeminiTranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return nil, t.fail(audioPath, err)
	}

	uploadedFile, err := t.client.Files.UploadFromPath(ctx, audioPath, nil)
	if err != nil {
		return nil, t.fail(audioPath, fmt.Errorf("failed to upload audio file: %w", err))
	}

	defer func() {
		_, _ = t.client.Files.Delete(context.WithoutCancel(ctx), uploadedFile.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(t.buildTranscriptionPrompt()),
		genai.NewPartFromURI(uploadedFile.URI, uploadedFile.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, t.fail(audioPath, fmt.Errorf("transcription failed: %w", err))
	}

	segments, err := parseTranscriptionResponse(result)
	if err != nil {
		return nil, t.fail(audioPath, fmt.Errorf("failed to parse transcription: %w", err))
	}

	return &Result{
		Segments: segments,
		Language: t.options.Language,
		Duration: t.options.duration(ctx, audioPath),
	}, nil
}

func (t *GeminiTranscriber) fail(path string, err error) error {
	return &TranscriptionError{Provider: ProviderGemini, Path: path, Err: err}
}

// creates the prompt for transcription
func (t *GeminiTranscriber) buildTranscriptionPrompt() string {
	var sb strings.Builder

	sb.WriteString("Generate a detailed transcript of this audio. ")
	sb.WriteString("For each sentence or phrase, provide the start timestamp, end timestamp, and the exact text spoken. ")
	sb.WriteString("Format your response as a JSON array with objects containing 'start', 'end', and 'text' fields, ")
	sb.WriteString("where 'start' and 'end' are timestamps in seconds (as numbers). ")

	if t.options.Language != "" {
		fmt.Fprintf(&sb, "The audio is in %s. ", t.options.Language)
	}

	if t.options.TranscriptLanguage != "" && t.options.TranscriptLanguage != "native" {
		fmt.Fprintf(&sb, "Output the transcript in %s. ", t.options.TranscriptLanguage)
	}

	if t.options.Prompt != "" {
		sb.WriteString(t.options.Prompt)
		sb.WriteString(" ")
	}

	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")

	return sb.String()
}

// parses Gemini's response into segments
func parseTranscriptionResponse(result *genai.GenerateContentResponse) ([]subtitle.Segment, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, errors.New("empty response from Gemini")
	}

	var responseText strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			responseText.WriteString(part.Text)
		}
	}

	if responseText.Len() == 0 {
		return nil, errors.New("no text in Gemini response")
	}

	transcriptSegments, err := extractTranscriptSegments(llmjson.StripFences(responseText.String()))
	if err != nil {
		return nil, err
	}

	segments := make([]subtitle.Segment, len(transcriptSegments))
	for i, ts := range transcriptSegments {
		segments[i] = subtitle.Segment{
			Start: ts.Start,
			End:   ts.End,
			Text:  strings.TrimSpace(ts.Text),
		}
	}

	return segments, nil
}

var errNoSegments = errors.New("no transcript segments found in response")

// object keys a model may wrap the segment array in
var segmentKeys = []string{"segments", "transcript", "data"}

// extractTranscriptSegments finds the first JSON array of segments in s,
// bare or wrapped in an object. Text around the JSON is ignored.
func extractTranscriptSegments(s string) ([]transcriptSegment, error) {
	segments, ok := llmjson.FindArray(s, segmentKeys, validateSegments)
	if !ok {
		return nil, fmt.Errorf("%w (response: %s)", errNoSegments, llmjson.Truncate(s, 200))
	}
	return segments, nil
}

// reports whether at least one segment carries a timestamp or text
func validateSegments(segments []transcriptSegment) bool {
	for _, seg := range segments {
		if seg.Text != "" || seg.Start != 0 || seg.End != 0 {
			return true
		}
	}
	return false
}
