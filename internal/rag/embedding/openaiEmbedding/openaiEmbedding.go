package openaiEmbedding

import (
	"context"
	"fmt"
	"sort"

	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/rag/embedding"
	"github.com/akolanti/profile-rag/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type client struct {
	api       openai.Client
	model     string
	dimension int
	logger    *logger_i.Logger
}

// NewOpenAIEmbedder builds an embedder against the OpenAI embeddings API. Extra
// request options (base URL, retries) are passed through to the SDK.
func NewOpenAIEmbedder(apiKey string, modelName string, dimension int, opts ...option.RequestOption) (embedding.Embedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY is required for the openai embedder", document.ErrConfiguration)
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive", document.ErrConfiguration)
	}
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	log := logger_i.NewLogger("openai_embedding")
	log.Info("OpenAI Embedding client created", "model", modelName, "dimension", dimension)
	return &client{
		api:       openai.NewClient(opts...),
		model:     modelName,
		dimension: dimension,
		logger:    log,
	}, nil
}

func (c *client) Dimension() int {
	return c.dimension
}

func (c *client) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	res, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: openai.Int(int64(c.dimension)),
	})
	if err != nil {
		c.logger.Error("Error getting Embeddings from OpenAI", "error", err, "batch", len(texts))
		return nil, fmt.Errorf("%w: %v", document.ErrEmbeddingBackend, err)
	}

	// the API reports each vector's input position
	data := res.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })

	vectors := make([][]float32, len(data))
	for i, d := range data {
		v := make([]float32, len(d.Embedding))
		for j, f := range d.Embedding {
			v[j] = float32(f)
		}
		vectors[i] = v
	}
	if err := embedding.CheckBatch(vectors, len(texts), c.dimension); err != nil {
		c.logger.Error("Malformed embedding response", "error", err)
		return nil, err
	}
	return vectors, nil
}
