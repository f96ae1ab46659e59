package gemini

import (
	"context"
	"fmt"
	"iter"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/rag/llm"
	"github.com/akolanti/profile-rag/pkg/logger_i"
	"google.golang.org/genai"
)

// generateAPI is the part of *genai.Models the answering client needs.
type generateAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

type llmClient struct {
	models    generateAPI
	modelName string
	logger    *logger_i.Logger
}

func NewGeminiClient(ctx context.Context, apiKey string, modelName string) (llm.Provider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is required for the gemini answering model", document.ErrConfiguration)
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("%w: creating genai client: %v", document.ErrAnsweringBackend, err)
	}
	return newLLMClient(c.Models, modelName), nil
}

func newLLMClient(models generateAPI, modelName string) *llmClient {
	logger := logger_i.NewLogger("llm_gemini")
	logger.Info("Gemini client created", "model", modelName)
	return &llmClient{models: models, modelName: modelName, logger: logger}
}

func (c *llmClient) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	log := c.logger.FromContext(ctx, config.TRACE_ID_KEY)

	result, err := c.models.GenerateContent(ctx, c.modelName, genai.Text(prompt.User), contentConfig(prompt))
	if err != nil {
		log.Error("Gemini generation failed", "error", err)
		return "", fmt.Errorf("%w: %v", document.ErrAnsweringBackend, err)
	}
	if result == nil {
		return "", fmt.Errorf("%w: empty response", document.ErrAnsweringBackend)
	}
	return result.Text(), nil
}

func (c *llmClient) GenerateStream(ctx context.Context, prompt llm.Prompt) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range c.models.GenerateContentStream(ctx, c.modelName, genai.Text(prompt.User), contentConfig(prompt)) {
			if err != nil {
				c.logger.FromContext(ctx, config.TRACE_ID_KEY).Error("Gemini stream failed", "error", err)
				yield("", fmt.Errorf("%w: %v", document.ErrAnsweringBackend, err))
				return
			}
			if resp == nil {
				continue
			}
			if text := resp.Text(); text != "" {
				if !yield(text, nil) {
					return
				}
			}
		}
	}
}

func contentConfig(prompt llm.Prompt) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(prompt.Temperature),
		MaxOutputTokens: int32(prompt.MaxOutputTokens),
	}
	if prompt.System != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: prompt.System}},
		}
	}
	return cfg
}
