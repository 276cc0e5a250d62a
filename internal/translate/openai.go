package translate

import (
	"cmp"
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAITranslator sends each batch as one chat completion.
type OpenAITranslator struct {
	batcher
	client openai.Client
	model  string
}

func NewOpenAITranslator(_ context.Context, apiKey string, opts Options) (*OpenAITranslator, error) {
	if apiKey == "" {
		return nil, errMissingAPIKey
	}

	t := &OpenAITranslator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  cmp.Or(opts.Model, defaultOpenAIModel),
	}
	t.batcher = batcher{options: opts, send: t.complete}
	return t, nil
}

func (t *OpenAITranslator) complete(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
	params := openai.ChatCompletionNewParams{
		Model: t.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(BuildPrompt(t.options, items)),
		},
	}

	completion, err := t.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	return parseOpenAIResponse(completion)
}

func parseOpenAIResponse(completion *openai.ChatCompletion) ([]TranslationResult, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return nil, errors.New("empty response from OpenAI")
	}
	return decodeResponse(ProviderOpenAI, completion.Choices[0].Message.Content)
}
