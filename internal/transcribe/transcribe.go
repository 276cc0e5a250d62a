package transcribe

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/mgpai22/subburn/internal/audio"
	"github.com/mgpai22/subburn/internal/subtitle"
)

// Result is a provider's transcript of one audio file.
type Result struct {
	Segments []subtitle.Segment
	Language string
	// seconds
	Duration float64
}

// All yields the segments in order, ready for subtitle.Generator.
func (r *Result) All() iter.Seq2[subtitle.Segment, error] {
	return func(yield func(subtitle.Segment, error) bool) {
		if r == nil {
			return
		}
		for _, seg := range r.Segments {
			if !yield(seg, nil) {
				return
			}
		}
	}
}

// Transcriber turns an audio file into timed segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}

// TranscriptionError wraps a provider failure for one audio file.
type TranscriptionError struct {
	Provider Provider
	Path     string
	Err      error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("%s transcription of %s: %v", e.Provider, e.Path, e.Err)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

type Provider string

const (
	ProviderWhisper Provider = "whisper"
	ProviderOpenAI  Provider = "openai"
	ProviderGemini  Provider = "gemini"
)

// DurationFunc reports the length of an audio file in seconds.
type DurationFunc func(ctx context.Context, path string) (float64, error)

// Options tune a transcriber. Zero values select provider defaults.
type Options struct {
	// spoken language hint, empty to auto-detect
	Language string
	// language the transcript is written in; "native" keeps the spoken one
	TranscriptLanguage string
	Model              string
	// biases recognition toward names and vocabulary, like Whisper's initial prompt
	Prompt string
	// optional; used for single-segment fallbacks and Result.Duration
	Duration DurationFunc
}

func (o Options) duration(ctx context.Context, path string) float64 {
	if o.Duration == nil {
		return 0
	}
	d, err := o.Duration(ctx, path)
	if err != nil {
		return 0
	}
	return d
}

// Factory builds the transcriber for provider. Whisper and OpenAI share one
// backend.
func Factory(ctx context.Context, provider Provider, apiKey string, opts Options) (Transcriber, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiTranscriber(ctx, apiKey, opts)
	case ProviderWhisper, ProviderOpenAI:
		return NewOpenAITranscriber(ctx, apiKey, opts)
	}
	return nil, fmt.Errorf("unknown transcription provider %q", provider)
}

// APIKeyEnv names the environment variable holding the provider's key.
func APIKeyEnv(provider Provider) string {
	switch provider {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

// workers used when TranscribeChunks is given no concurrency
const defaultChunkWorkers = 3

// TranscribeChunks transcribes chunks with up to concurrency workers, shifts
// each chunk's segments by its start offset and merges them in chunk order.
// The first failure cancels the remaining work.
func TranscribeChunks(
	ctx context.Context,
	t Transcriber,
	chunks []audio.ChunkInfo,
	concurrency int,
) (*Result, error) {
	if len(chunks) == 0 {
		return &Result{}, nil
	}
	if concurrency <= 0 {
		concurrency = defaultChunkWorkers
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	parts := make([]*Result, len(chunks))
	next := make(chan int)

	var wg sync.WaitGroup
	for range min(concurrency, len(chunks)) {
		wg.Go(func() {
			for pos := range next {
				res, err := t.Transcribe(ctx, chunks[pos].Path)
				if err != nil {
					cancel(fmt.Errorf("chunk %d failed: %w", chunks[pos].Index, err))
					return
				}
				parts[pos] = res
			}
		})
	}

feed:
	for pos := range chunks {
		select {
		case <-ctx.Done():
			break feed
		case next <- pos:
		}
	}
	close(next)
	wg.Wait()

	if err := context.Cause(ctx); err != nil {
		return nil, err
	}

	merged := &Result{Duration: chunks[len(chunks)-1].End}
	for pos, part := range parts {
		if part == nil {
			continue
		}
		merged.Segments = append(merged.Segments, offsetSegments(part.Segments, chunks[pos].Start)...)
		if merged.Language == "" {
			merged.Language = part.Language
		}
	}
	return merged, nil
}

func offsetSegments(segments []subtitle.Segment, offset float64) []subtitle.Segment {
	shifted := slices.Clone(segments)
	for i := range shifted {
		shifted[i].Start += offset
		shifted[i].End += offset
	}
	return shifted
}
