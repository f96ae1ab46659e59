package qdrantDB

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// fakeQdrant keeps points in memory and understands the one filter shape the
// store sends: a keyword match on source.
type fakeQdrant struct {
	exists       bool
	dimension    uint64
	points       []*qdrant.PointStruct
	indexed      map[string]bool
	score        float32
	createCalls  int
	indexCalls   int
	infoCalls    int
	closed       bool
	failUpsert   error
	infoErr      error
	scrolls      int
	lastQueryTop uint64
}

func newFake() *fakeQdrant {
	return &fakeQdrant{indexed: map[string]bool{}, score: 0.5}
}

func (f *fakeQdrant) CollectionExists(ctx context.Context, name string) (bool, error) {
	return f.exists, nil
}

func (f *fakeQdrant) CreateCollection(ctx context.Context, req *qdrant.CreateCollection) error {
	f.createCalls++
	f.exists = true
	f.dimension = req.GetVectorsConfig().GetParams().GetSize()
	return nil
}

func (f *fakeQdrant) GetCollectionInfo(ctx context.Context, name string) (*qdrant.CollectionInfo, error) {
	f.infoCalls++
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	schema := map[string]*qdrant.PayloadSchemaInfo{}
	for field := range f.indexed {
		schema[field] = &qdrant.PayloadSchemaInfo{}
	}
	return &qdrant.CollectionInfo{PayloadSchema: schema}, nil
}

func (f *fakeQdrant) CreateFieldIndex(ctx context.Context, req *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error) {
	f.indexCalls++
	f.indexed[req.GetFieldName()] = true
	return &qdrant.UpdateResult{}, nil
}

func (f *fakeQdrant) Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	if f.failUpsert != nil {
		return nil, f.failUpsert
	}
	f.points = append(f.points, req.GetPoints()...)
	return &qdrant.UpdateResult{}, nil
}

func (f *fakeQdrant) Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	f.lastQueryTop = req.GetLimit()
	var out []*qdrant.ScoredPoint
	for _, p := range f.points {
		if uint64(len(out)) == req.GetLimit() {
			break
		}
		out = append(out, &qdrant.ScoredPoint{Id: p.GetId(), Payload: p.GetPayload(), Score: f.score})
	}
	return out, nil
}

func (f *fakeQdrant) Scroll(ctx context.Context, req *qdrant.ScrollPoints) ([]*qdrant.RetrievedPoint, error) {
	f.scrolls++
	if req.GetOrderBy() != nil && !f.indexed[req.GetOrderBy().GetKey()] {
		return nil, errors.New("order_by requires a payload index")
	}
	want := req.GetFilter().GetMust()[0].GetField()
	var matched []*qdrant.PointStruct
	for _, p := range f.points {
		if p.GetPayload()[want.GetKey()].GetStringValue() == want.GetMatch().GetKeyword() {
			matched = append(matched, p)
		}
	}
	key := req.GetOrderBy().GetKey()
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].GetPayload()[key].GetStringValue() > matched[j].GetPayload()[key].GetStringValue()
	})

	var out []*qdrant.RetrievedPoint
	for _, p := range matched {
		if uint32(len(out)) == req.GetLimit() {
			break
		}
		out = append(out, &qdrant.RetrievedPoint{Id: p.GetId(), Payload: p.GetPayload()})
	}
	return out, nil
}

func (f *fakeQdrant) Count(ctx context.Context, req *qdrant.CountPoints) (uint64, error) {
	return uint64(len(f.points)), nil
}

func (f *fakeQdrant) Close() error {
	f.closed = true
	return nil
}

func connected(t *testing.T, f *fakeQdrant) *Store {
	t.Helper()
	s := newStore("profile_documents", func(ctx context.Context) (pointAPI, error) { return f, nil })
	require.NoError(t, s.Connect(context.Background()))
	return s
}

func embedded(source document.Source, title string, published time.Time, index int, hash string) document.EmbeddedChunk {
	return document.EmbeddedChunk{
		Chunk: document.Chunk{
			Document: document.Document{
				Title:         title,
				Content:       title + " body",
				URL:           "https://example.com/" + title,
				Source:        source,
				PublishedDate: published,
				ContentHash:   hash,
			},
			ChunkIndex: index,
		},
		Embedding: []float32{0.1, 0.2, 0.3},
	}
}

func TestStore_NotConnected(t *testing.T) {
	s := newStore("c", func(ctx context.Context) (pointAPI, error) { return newFake(), nil })
	ctx := context.Background()

	assert.ErrorIs(t, s.SetupCollection(ctx, 3), document.ErrNotConnected)
	assert.ErrorIs(t, s.Insert(ctx, nil), document.ErrNotConnected)
	_, err := s.SearchSimilar(ctx, []float32{1}, 5)
	assert.ErrorIs(t, err, document.ErrNotConnected)
	_, _, err = s.GetLastScrapedDate(ctx, document.SourceMedium)
	assert.ErrorIs(t, err, document.ErrNotConnected)
	_, _, err = s.GetContentHash(ctx, document.SourceResume)
	assert.ErrorIs(t, err, document.ErrNotConnected)

	assert.NoError(t, s.Close())
}

func TestStore_ConnectFailure(t *testing.T) {
	s := newStore("c", func(ctx context.Context) (pointAPI, error) { return nil, errors.New("refused") })
	assert.Error(t, s.Connect(context.Background()))
	_, err := s.SearchSimilar(context.Background(), []float32{1}, 1)
	assert.ErrorIs(t, err, document.ErrNotConnected)
}

func TestStore_CloseReleasesSession(t *testing.T) {
	f := newFake()
	s := connected(t, f)
	require.NoError(t, s.Close())
	assert.True(t, f.closed)
	assert.ErrorIs(t, s.Insert(context.Background(), nil), document.ErrNotConnected)
	assert.NoError(t, s.Close())
}

func TestSetupCollection_Idempotent(t *testing.T) {
	f := newFake()
	s := connected(t, f)
	ctx := context.Background()

	require.NoError(t, s.SetupCollection(ctx, 1536))
	require.NoError(t, s.SetupCollection(ctx, 768))
	assert.Equal(t, 1, f.createCalls)
	assert.Equal(t, uint64(1536), f.dimension)
}

func TestInsert_PayloadSchema(t *testing.T) {
	f := newFake()
	s := connected(t, f)
	published := time.Date(2024, 5, 2, 9, 30, 0, 0, time.FixedZone("CEST", 2*3600))

	chunks := []document.EmbeddedChunk{
		embedded(document.SourceMedium, "post", published, 0, ""),
		embedded(document.SourceResume, "resume", published, 1, "abc123"),
	}
	require.NoError(t, s.Insert(context.Background(), chunks))
	require.Len(t, f.points, 2)

	ids := map[string]bool{}
	for _, p := range f.points {
		ids[p.GetId().GetUuid()] = true
	}
	assert.Len(t, ids, 2, "point ids must be unique")

	p := f.points[0].GetPayload()
	assert.Equal(t, "post", p["title"].GetStringValue())
	assert.Equal(t, "post body", p["content"].GetStringValue())
	assert.Equal(t, "medium", p["source"].GetStringValue())
	assert.Equal(t, "https://example.com/post", p["url"].GetStringValue())
	assert.Equal(t, "2024-05-02T07:30:00Z", p["published_date"].GetStringValue())
	assert.Equal(t, int64(0), p["chunk_index"].GetIntegerValue())
	_, hasHash := p["content_hash"]
	assert.False(t, hasHash)
	assert.Len(t, p, 6)

	assert.Equal(t, "abc123", f.points[1].GetPayload()["content_hash"].GetStringValue())
	assert.Equal(t, int64(1), f.points[1].GetPayload()["chunk_index"].GetIntegerValue())
}

func TestInsert_BackendError(t *testing.T) {
	f := newFake()
	f.failUpsert = errors.New("wrong vector size")
	s := connected(t, f)
	err := s.Insert(context.Background(), []document.EmbeddedChunk{embedded(document.SourceMedium, "x", time.Now(), 0, "")})
	assert.ErrorContains(t, err, "wrong vector size")
}

func TestSearchSimilar(t *testing.T) {
	f := newFake()
	f.score = 0.92
	s := connected(t, f)
	published := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Insert(context.Background(), []document.EmbeddedChunk{
		embedded(document.SourceGithub, "repo", published, 0, ""),
	}))

	docs, err := s.SearchSimilar(context.Background(), []float32{0.1, 0.2, 0.3}, 5)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, uint64(5), f.lastQueryTop)
	assert.Equal(t, float32(0.92), docs[0].Similarity)
	assert.Equal(t, "repo", docs[0].Title)
	assert.Equal(t, document.SourceGithub, docs[0].Source)
	assert.Equal(t, "2024-01-01T00:00:00Z", docs[0].PublishedDate)
	assert.NotEmpty(t, docs[0].ID)
}

func TestGetLastScrapedDate(t *testing.T) {
	older := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2024, 2, 10, 8, 0, 0, 0, time.UTC)
	newest := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		setup  func(f *fakeQdrant, s *Store)
		source document.Source
		want   time.Time
		wantOK bool
	}{
		{"collection missing", func(f *fakeQdrant, s *Store) {}, document.SourceMedium, time.Time{}, false},
		{"collection empty", func(f *fakeQdrant, s *Store) { f.exists = true }, document.SourceMedium, time.Time{}, false},
		{"no point for source", func(f *fakeQdrant, s *Store) {
			f.exists = true
			require.NoError(t, s.Insert(context.Background(), []document.EmbeddedChunk{embedded(document.SourceGithub, "r", newest, 0, "")}))
		}, document.SourceMedium, time.Time{}, false},
		{"max among mixed sources", func(f *fakeQdrant, s *Store) {
			f.exists = true
			require.NoError(t, s.Insert(context.Background(), []document.EmbeddedChunk{
				embedded(document.SourceMedium, "a", older, 0, ""),
				embedded(document.SourceGithub, "r", newest, 0, ""),
				embedded(document.SourceMedium, "b", newer, 0, ""),
				embedded(document.SourceMedium, "b", newer, 1, ""),
			}))
		}, document.SourceMedium, newer, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFake()
			s := connected(t, f)
			tt.setup(f, s)

			got, ok, err := s.GetLastScrapedDate(context.Background(), tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want, got)
		})
	}
}

func TestDateIndexCreatedOnce(t *testing.T) {
	f := newFake()
	s := connected(t, f)
	ctx := context.Background()
	require.NoError(t, s.SetupCollection(ctx, 3))
	require.NoError(t, s.Insert(ctx, []document.EmbeddedChunk{embedded(document.SourceMedium, "a", time.Now(), 0, "")}))

	for range 3 {
		_, _, err := s.GetLastScrapedDate(ctx, document.SourceMedium)
		require.NoError(t, err)
		_, _, err = s.GetContentHash(ctx, document.SourceResume)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.indexCalls)
	assert.Equal(t, 1, f.infoCalls)
}

func TestDateIndexAlreadyPresent(t *testing.T) {
	f := newFake()
	f.indexed["published_date"] = true
	s := connected(t, f)
	ctx := context.Background()
	require.NoError(t, s.SetupCollection(ctx, 3))
	require.NoError(t, s.Insert(ctx, []document.EmbeddedChunk{embedded(document.SourceMedium, "a", time.Now(), 0, "")}))

	_, ok, err := s.GetLastScrapedDate(ctx, document.SourceMedium)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, f.indexCalls)
}

func TestGetContentHash(t *testing.T) {
	f := newFake()
	s := connected(t, f)
	ctx := context.Background()

	_, ok, err := s.GetContentHash(ctx, document.SourceResume)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetupCollection(ctx, 3))
	require.NoError(t, s.Insert(ctx, []document.EmbeddedChunk{
		embedded(document.SourceResume, "cv", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 0, "old"),
		embedded(document.SourceResume, "cv", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 0, "new"),
		embedded(document.SourceMedium, "p", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 0, ""),
	}))

	hash, ok, err := s.GetContentHash(ctx, document.SourceResume)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "new", hash)

	_, ok, err = s.GetContentHash(ctx, document.SourceMedium)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWatermark_CollectionDroppedDuringLookup(t *testing.T) {
	f := newFake()
	s := connected(t, f)
	ctx := context.Background()
	require.NoError(t, s.SetupCollection(ctx, 3))
	require.NoError(t, s.Insert(ctx, []document.EmbeddedChunk{embedded(document.SourceMedium, "a", time.Now(), 0, "h")}))
	f.infoErr = status.Error(codes.NotFound, "collection not found")

	_, ok, err := s.GetLastScrapedDate(ctx, document.SourceMedium)
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.GetContentHash(ctx, document.SourceMedium)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, f.scrolls)

	f.infoErr = status.Error(codes.Unavailable, "down")
	_, _, err = s.GetLastScrapedDate(ctx, document.SourceMedium)
	assert.Error(t, err)
}

// The digest comes from the point with the latest published_date, not the
// last one written: a résumé re-uploaded with an older Last-Modified than the
// stored copy is compared against the stored copy's hash.
func TestGetContentHash_FollowsPublishedDateNotWriteOrder(t *testing.T) {
	f := newFake()
	s := connected(t, f)
	ctx := context.Background()
	require.NoError(t, s.SetupCollection(ctx, 3))

	require.NoError(t, s.Insert(ctx, []document.EmbeddedChunk{
		embedded(document.SourceResume, "cv", time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), 0, "stored"),
	}))
	require.NoError(t, s.Insert(ctx, []document.EmbeddedChunk{
		embedded(document.SourceResume, "cv", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 0, "backdated"),
	}))

	hash, ok, err := s.GetContentHash(ctx, document.SourceResume)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "stored", hash)
}
