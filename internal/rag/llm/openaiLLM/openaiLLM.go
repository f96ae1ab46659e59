package openaiLLM

import (
	"context"
	"fmt"
	"iter"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/rag/llm"
	"github.com/akolanti/profile-rag/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	api       openai.Client
	modelName string
	logger    *logger_i.Logger
}

func NewOpenAIClient(apiKey string, modelName string, opts ...option.RequestOption) (llm.Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is required for the openai answering model", document.ErrConfiguration)
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	logger := logger_i.NewLogger("llm_openai")
	logger.Info("OpenAI client created", "model", modelName)
	return &llmClient{api: openai.NewClient(opts...), modelName: modelName, logger: logger}, nil
}

func (c *llmClient) params(prompt llm.Prompt) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.User))

	return openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.modelName),
		Messages:    messages,
		Temperature: openai.Float(float64(prompt.Temperature)),
		MaxTokens:   openai.Int(int64(prompt.MaxOutputTokens)),
	}
}

func (c *llmClient) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	res, err := c.api.Chat.Completions.New(ctx, c.params(prompt))
	if err != nil {
		c.logger.FromContext(ctx, config.TRACE_ID_KEY).Error("OpenAI completion failed", "error", err)
		return "", fmt.Errorf("%w: %v", document.ErrAnsweringBackend, err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("%w: completion had no choices", document.ErrAnsweringBackend)
	}
	return res.Choices[0].Message.Content, nil
}

func (c *llmClient) GenerateStream(ctx context.Context, prompt llm.Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		stream := c.api.Chat.Completions.NewStreaming(ctx, c.params(prompt))
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}
			if !yield(chunk.Choices[0].Delta.Content, nil) {
				return
			}
		}
		if err := stream.Err(); err != nil {
			c.logger.FromContext(ctx, config.TRACE_ID_KEY).Error("OpenAI stream failed", "error", err)
			yield("", fmt.Errorf("%w: %v", document.ErrAnsweringBackend, err))
		}
	}
}
