package chat

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"

	apperrors "voicenote/internal/app/errors"
)

const systemPrompt = `You are a helpful assistant that improves transcribed text.
Please clean up the following transcription by:
1. Adding proper punctuation
2. Correcting obvious transcription errors
3. Formatting it in a readable way
4. Maintaining the original meaning and content

Return only the improved text without any additional comments.`

const (
	maxTokens   = 2000
	temperature = 0.3
)

// EnhanceResult distinguishes an enhanced text from a fallback to the input.
// Err holds the swallowed cause when Enhanced is false.
type EnhanceResult struct {
	Text     string
	Enhanced bool
	Err      error
}

// Enhancer cleans up raw transcriptions with a chat completion model.
type Enhancer struct {
	client *openai.Client
	model  string
}

// NewEnhancer creates an Enhancer using model (gpt-4o-mini when empty).
func NewEnhancer(client *openai.Client, model string) *Enhancer {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Enhancer{client: client, model: model}
}

// Enhance never fails: any problem yields the original text with Enhanced=false.
func (e *Enhancer) Enhance(ctx context.Context, text string) EnhanceResult {
	if strings.TrimSpace(text) == "" {
		return EnhanceResult{Text: text}
	}

	request := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	resp, err := e.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return fallback(text, apperrors.Wrap(err, apperrors.KindEnhancementFailed, "createChatCompletion failed"))
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return fallback(text, apperrors.Newf(apperrors.KindEnhancementFailed, "empty completion from %s", e.model))
	}

	return EnhanceResult{Text: resp.Choices[0].Message.Content, Enhanced: true}
}

func fallback(text string, err error) EnhanceResult {
	return EnhanceResult{Text: text, Err: err}
}
