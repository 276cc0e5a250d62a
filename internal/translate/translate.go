package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// TranslationItem is one cue's text, keyed by its position in the document.
type TranslationItem struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type TranslationResult struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

type Translator interface {
	Translate(
		ctx context.Context,
		items []TranslationItem,
	) ([]TranslationResult, error)
}

// ConcurrentTranslator can send several batches at once.
type ConcurrentTranslator interface {
	Translator
	TranslateWithConcurrency(
		ctx context.Context,
		items []TranslationItem,
		concurrency int,
	) ([]TranslationResult, error)
}

type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	defaultOpenAIModel = "gpt-5-mini"

	// response budget for one Anthropic batch
	anthropicMaxTokens = 4096
)

var errMissingAPIKey = errors.New("API key is required")

// ParseProvider accepts a provider name in any case.
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	switch p {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported translation provider: %s", name)
	}
}

// APIKeyEnv names the environment variable holding the provider's key.
func APIKeyEnv(provider Provider) string {
	switch provider {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "OPENAI_API_KEY"
	}
}

type Options struct {
	InputLanguage  string
	TargetLanguage string
	Model          string
	Prompt         string
	// items per request; DefaultBatchSize when zero
	BatchSize int
}

// Factory builds the translator for provider. A target language is required.
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	switch provider {
	case ProviderGemini:
		return NewGeminiTranslator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranslator(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicTranslator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// rules every provider receives, in order
var promptRules = []string{
	"Translate ONLY the text content, preserving the meaning.",
	`Keep every line break marker (\N) where it appears in the source.`,
	"Never output a line containing only whitespace.",
	"Reply with a JSON array of objects with 'index' and 'text' fields.",
	"Keep each 'index' value exactly as given.",
	"Do not add any explanation or markdown formatting.",
}

// BuildPrompt renders the request for one batch of items.
func BuildPrompt(opts Options, items []TranslationItem) string {
	var sb strings.Builder

	source := "subtitle texts"
	if opts.InputLanguage != "" {
		source = opts.InputLanguage + " " + source
	}
	fmt.Fprintf(&sb, "Translate the following %s to %s.\n\nIMPORTANT INSTRUCTIONS:\n", source, opts.TargetLanguage)
	for i, rule := range promptRules {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, rule)
	}
	if opts.Prompt != "" {
		fmt.Fprintf(&sb, "\nAdditional instructions: %s\n", opts.Prompt)
	}

	payload, _ := json.MarshalIndent(items, "", "  ")
	fmt.Fprintf(&sb, "\nInput JSON:\n%s\n\nOutput the translated JSON array only:", payload)
	return sb.String()
}
