package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/metrics"
	"github.com/akolanti/profile-rag/internal/rag/vectorDB"
	"github.com/akolanti/profile-rag/pkg/logger_i"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// payload keys of a stored point
const (
	fieldTitle       = "title"
	fieldContent     = "content"
	fieldSource      = "source"
	fieldURL         = "url"
	fieldChunkIndex  = "chunk_index"
	fieldContentHash = "content_hash"
	fieldPublished   = config.PublishedDateField
)

// pointAPI is the subset of *qdrant.Client the store talks to.
type pointAPI interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	GetCollectionInfo(ctx context.Context, collectionName string) (*qdrant.CollectionInfo, error)
	CreateFieldIndex(ctx context.Context, request *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Scroll(ctx context.Context, request *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error)
	Count(ctx context.Context, request *qdrant.CountPoints) (uint64, error)
	Close() error
}

type Options struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	PoolSize   uint
	Collection string
}

type Store struct {
	collection string
	dial       func(ctx context.Context) (pointAPI, error)
	logger     *logger_i.Logger

	mu          sync.Mutex
	client      pointAPI
	dateIndexed bool
}

var _ vectorDB.Store = (*Store)(nil)

func NewStore(opts Options) (*Store, error) {
	if opts.Collection == "" {
		return nil, fmt.Errorf("%w: empty collection name", document.ErrConfiguration)
	}
	dial := func(ctx context.Context) (pointAPI, error) {
		c, err := qdrant.NewClient(&qdrant.Config{
			Host:     opts.Host,
			Port:     opts.Port,
			APIKey:   opts.APIKey,
			UseTLS:   opts.UseTLS,
			PoolSize: opts.PoolSize,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return newStore(opts.Collection, dial), nil
}

func newStore(collection string, dial func(ctx context.Context) (pointAPI, error)) *Store {
	return &Store{
		collection: collection,
		dial:       dial,
		logger:     logger_i.NewLogger("qdrant").With("collection", collection),
	}
}

func (s *Store) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return nil
	}

	dialCtx, cancel := context.WithTimeout(ctx, config.QdrantConnectionTimeout)
	defer cancel()
	c, err := s.dial(dialCtx)
	if err != nil {
		s.logger.Error("could not instantiate qdrant client", "error", err)
		return fmt.Errorf("qdrant connect: %w", err)
	}
	s.client = c
	s.dateIndexed = false
	s.logger.Info("Connected to Qdrant")
	return nil
}

// Close is safe to call without a prior Connect.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	if err != nil {
		s.logger.Error("could not close Qdrant", "error", err)
		return fmt.Errorf("qdrant close: %w", err)
	}
	s.logger.Info("Closed Qdrant")
	return nil
}

func (s *Store) conn() (pointAPI, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil, document.ErrNotConnected
	}
	return s.client, nil
}

// SetupCollection creates the collection on first use. An existing collection
// is left alone, even if its dimension differs.
func (s *Store) SetupCollection(ctx context.Context, dimension int) error {
	c, err := s.conn()
	if err != nil {
		return err
	}
	if dimension <= 0 {
		return fmt.Errorf("%w: collection dimension must be positive", document.ErrConfiguration)
	}

	exists, err := c.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("checking collection: %w", err)
	}
	if exists {
		return nil
	}

	err = c.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}
	s.logger.Info("Created collection", "dimension", dimension)
	return nil
}

func (s *Store) Insert(ctx context.Context, chunks []document.EmbeddedChunk) error {
	c, err := s.conn()
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	points := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		points[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.NewString()),
			Vectors: qdrant.NewVectors(chunk.Embedding...),
			Payload: qdrant.NewValueMap(payloadOf(chunk.Chunk)),
		}
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_upsert", time.Since(start)) }()

	_, err = c.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         points,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}
	metrics.AddPointsStored(len(points))
	return nil
}

func payloadOf(chunk document.Chunk) map[string]any {
	payload := map[string]any{
		fieldTitle:      chunk.Title,
		fieldContent:    chunk.Content,
		fieldSource:     string(chunk.Source),
		fieldURL:        chunk.URL,
		fieldPublished:  chunk.PublishedDate.UTC().Format(time.RFC3339),
		fieldChunkIndex: int64(chunk.ChunkIndex),
	}
	if chunk.ContentHash != "" {
		payload[fieldContentHash] = chunk.ContentHash
	}
	return payload
}

func (s *Store) SearchSimilar(ctx context.Context, vector []float32, topK int) ([]document.RetrievedDocument, error) {
	c, err := s.conn()
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		return []document.RetrievedDocument{}, nil
	}

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	result, err := c.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		s.logger.FromContext(ctx, config.TRACE_ID_KEY).Error("Error querying Qdrant", "error", err)
		return nil, fmt.Errorf("qdrant query failed: %w", err)
	}

	docs := make([]document.RetrievedDocument, 0, len(result))
	for _, hit := range result {
		p := hit.GetPayload()
		docs = append(docs, document.RetrievedDocument{
			ID:            hit.GetId().GetUuid(),
			Title:         p[fieldTitle].GetStringValue(),
			Content:       p[fieldContent].GetStringValue(),
			Source:        document.Source(p[fieldSource].GetStringValue()),
			URL:           p[fieldURL].GetStringValue(),
			PublishedDate: p[fieldPublished].GetStringValue(),
			Similarity:    hit.GetScore(),
		})
	}
	return docs, nil
}

func (s *Store) GetLastScrapedDate(ctx context.Context, source document.Source) (time.Time, bool, error) {
	point, err := s.newestPoint(ctx, source, fieldPublished)
	if err != nil || point == nil {
		return time.Time{}, false, err
	}
	raw := point.GetPayload()[fieldPublished].GetStringValue()
	last, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		s.logger.Warn("Stored published_date is not RFC3339", "source", source, "value", raw)
		return time.Time{}, false, nil
	}
	return last, true, nil
}

func (s *Store) GetContentHash(ctx context.Context, source document.Source) (string, bool, error) {
	point, err := s.newestPoint(ctx, source, fieldContentHash)
	if err != nil || point == nil {
		return "", false, err
	}
	hash := point.GetPayload()[fieldContentHash].GetStringValue()
	return hash, hash != "", nil
}

// newestPoint returns the point of source with the latest published_date, or
// nil when the collection is missing, empty or has nothing for source.
func (s *Store) newestPoint(ctx context.Context, source document.Source, field string) (*qdrant.RetrievedPoint, error) {
	c, err := s.conn()
	if err != nil {
		return nil, err
	}
	log := s.logger.With("source", source)

	exists, err := c.CollectionExists(ctx, s.collection)
	if err != nil {
		return nil, fmt.Errorf("checking collection: %w", err)
	}
	if !exists {
		log.Debug("No collection yet, no watermark")
		return nil, nil
	}
	count, err := c.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return nil, fmt.Errorf("counting points: %w", err)
	}
	if count == 0 {
		log.Debug("Collection is empty, no watermark")
		return nil, nil
	}

	if err := s.ensureDateIndex(ctx, c); err != nil {
		if errors.Is(err, errCollectionGone) {
			log.Debug("Collection dropped during lookup, no watermark")
			return nil, nil
		}
		return nil, err
	}

	points, err := c.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: s.collection,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch(fieldSource, string(source))},
		},
		OrderBy: &qdrant.OrderBy{
			Key:       fieldPublished,
			Direction: qdrant.Direction_Desc.Enum(),
		},
		Limit:       qdrant.PtrOf(uint32(1)),
		WithPayload: qdrant.NewWithPayloadInclude(fieldPublished, field),
	})
	if err != nil {
		return nil, fmt.Errorf("scrolling %s points: %w", source, err)
	}
	if len(points) == 0 {
		return nil, nil
	}
	return points[0], nil
}

var errCollectionGone = errors.New("collection no longer exists")

// ensureDateIndex makes published_date sortable. The check runs once per
// session; after that the index is known to exist.
func (s *Store) ensureDateIndex(ctx context.Context, c pointAPI) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dateIndexed {
		return nil
	}

	info, err := c.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errCollectionGone
		}
		return fmt.Errorf("reading collection info: %w", err)
	}
	if _, ok := info.GetPayloadSchema()[fieldPublished]; !ok {
		_, err = c.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: s.collection,
			FieldName:      fieldPublished,
			FieldType:      qdrant.FieldType_FieldTypeDatetime.Enum(),
			Wait:           qdrant.PtrOf(true),
		})
		if err != nil {
			return fmt.Errorf("creating %s index: %w", fieldPublished, err)
		}
		s.logger.Info("Created payload index", "field", fieldPublished)
	}
	s.dateIndexed = true
	return nil
}
