package translate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicTranslator sends each batch as one Messages request.
type AnthropicTranslator struct {
	batcher
	client anthropic.Client
	model  anthropic.Model
}

func NewAnthropicTranslator(_ context.Context, apiKey string, opts Options) (*AnthropicTranslator, error) {
	if apiKey == "" {
		return nil, errMissingAPIKey
	}

	model := anthropic.ModelClaudeHaiku4_5
	if opts.Model != "" {
		model = anthropic.Model(opts.Model)
	}

	t := &AnthropicTranslator{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
	t.batcher = batcher{options: opts, send: t.message}
	return t, nil
}

func (t *AnthropicTranslator) message(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
	prompt := anthropic.NewTextBlock(BuildPrompt(t.options, items))
	msg, err := t.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     t.model,
		MaxTokens: anthropicMaxTokens,
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(prompt)},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}
	return parseAnthropicResponse(msg)
}

// concatenates the text blocks of a reply
func parseAnthropicResponse(msg *anthropic.Message) ([]TranslationResult, error) {
	if msg == nil || len(msg.Content) == 0 {
		return nil, errors.New("empty response from Anthropic")
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	return decodeResponse(ProviderAnthropic, text.String())
}
