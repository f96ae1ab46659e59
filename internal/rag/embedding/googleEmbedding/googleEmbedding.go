package googleEmbedding

import (
	"context"
	"fmt"

	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/rag/embedding"
	"github.com/akolanti/profile-rag/pkg/logger_i"
	"google.golang.org/genai"
)

const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

// embedAPI is the part of *genai.Models this client calls.
type embedAPI interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type client struct {
	models    embedAPI
	model     string
	dimension int32
	logger    *logger_i.Logger
}

func NewGoogleEmbedder(ctx context.Context, apiKey string, modelName string, dimension int) (embedding.Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is required for the gemini embedder", document.ErrConfiguration)
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive", document.ErrConfiguration)
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("%w: creating genai client: %v", document.ErrEmbeddingBackend, err)
	}
	return newClient(c.Models, modelName, dimension), nil
}

func newClient(models embedAPI, modelName string, dimension int) *client {
	log := logger_i.NewLogger("google_embedding")
	log.Info("Google Embedding client created", "model", modelName, "dimension", dimension)
	return &client{
		models:    models,
		model:     modelName,
		dimension: int32(dimension),
		logger:    log,
	}
}

func (c *client) Dimension() int {
	return int(c.dimension)
}

// EmbedText is used for questions, so it asks for query-side embeddings.
func (c *client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.embed(ctx, []string{text}, taskQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	return c.embed(ctx, texts, taskDocument)
}

func (c *client) embed(ctx context.Context, texts []string, task string) ([][]float32, error) {
	log := c.logger.With("batch", len(texts), "task", task)
	res, err := c.models.EmbedContent(ctx, c.model, getContent(texts), &genai.EmbedContentConfig{
		OutputDimensionality: &c.dimension,
		TaskType:             task,
	})
	if err != nil {
		log.Error("Error getting Embeddings from Google", "error", err)
		return nil, fmt.Errorf("%w: %v", document.ErrEmbeddingBackend, err)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: empty response", document.ErrEmbeddingBackend)
	}

	vectors := make([][]float32, 0, len(res.Embeddings))
	for _, e := range res.Embeddings {
		if e == nil {
			vectors = append(vectors, nil)
			continue
		}
		vectors = append(vectors, e.Values)
	}
	if err := embedding.CheckBatch(vectors, len(texts), c.Dimension()); err != nil {
		log.Error("Malformed embedding response", "error", err)
		return nil, err
	}
	return vectors, nil
}

func getContent(chunks []string) []*genai.Content {
	contentsToSend := make([]*genai.Content, 0, len(chunks))
	for _, chunk := range chunks {
		contentsToSend = append(contentsToSend, &genai.Content{
			Parts: []*genai.Part{{Text: chunk}},
		})
	}
	return contentsToSend
}
