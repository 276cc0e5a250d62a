package translate

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiTranslator sends each batch as one GenerateContent call.
type GeminiTranslator struct {
	batcher
	client *genai.Client
	model  string
}

func NewGeminiTranslator(ctx context.Context, apiKey string, opts Options) (*GeminiTranslator, error) {
	if apiKey == "" {
		return nil, errMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	t := &GeminiTranslator{
		client: client,
		model:  cmp.Or(opts.Model, defaultGeminiModel),
	}
	t.batcher = batcher{options: opts, send: t.generate}
	return t, nil
}

func (t *GeminiTranslator) generate(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
	prompt := genai.NewPartFromText(BuildPrompt(t.options, items))
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{prompt}, genai.RoleUser),
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}
	return parseGeminiResponse(resp)
}

// reads the first candidate that carries text
func parseGeminiResponse(resp *genai.GenerateContentResponse) ([]TranslationResult, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, errors.New("empty response from Gemini")
	}

	var text strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			text.WriteString(part.Text)
		}
		if text.Len() > 0 {
			break
		}
	}
	return decodeResponse(ProviderGemini, text.String())
}
