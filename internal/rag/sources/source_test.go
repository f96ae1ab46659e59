package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	name     document.Source
	strategy Strategy
	docs     []document.Document
	got      Watermark
}

func (s *stubAdapter) Name() document.Source { return s.name }
func (s *stubAdapter) Strategy() Strategy    { return s.strategy }
func (s *stubAdapter) Scrape(ctx context.Context, wm Watermark) []document.Document {
	s.got = wm
	return s.docs
}

type stubReader struct {
	last      time.Time
	lastOK    bool
	hash      string
	hashOK    bool
	err       error
	dateCalls int
	hashCalls int
}

func (r *stubReader) GetLastScrapedDate(ctx context.Context, s document.Source) (time.Time, bool, error) {
	r.dateCalls++
	return r.last, r.lastOK, r.err
}

func (r *stubReader) GetContentHash(ctx context.Context, s document.Source) (string, bool, error) {
	r.hashCalls++
	return r.hash, r.hashOK, r.err
}

func TestBuildDocument(t *testing.T) {
	published := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	doc, err := BuildDocument(document.SourceMedium, " Title ", "  body text \n", "https://x", published, nil)
	require.NoError(t, err)
	assert.Equal(t, "Title", doc.Title)
	assert.Equal(t, "body text", doc.Content)
	assert.Equal(t, document.SourceMedium, doc.Source)
	assert.Equal(t, published, doc.PublishedDate)
	assert.NotNil(t, doc.Metadata)

	_, err = BuildDocument(document.SourceMedium, "t", "   ", "https://x", published, nil)
	assert.ErrorIs(t, err, document.ErrSourceFetch)

	_, err = BuildDocument(document.SourceMedium, "t", "body", "https://x", time.Time{}, nil)
	assert.ErrorIs(t, err, document.ErrSourceFetch)
}

func TestFilterByDate(t *testing.T) {
	since := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	docs := []document.Document{
		{Title: "before", PublishedDate: since.Add(-time.Hour)},
		{Title: "equal", PublishedDate: since},
		{Title: "after", PublishedDate: since.Add(time.Second)},
		// same instant as since, other zone
		{Title: "equal-other-zone", PublishedDate: since.In(time.FixedZone("X", 5*3600))},
	}

	kept := FilterByDate(docs, since)
	require.Len(t, kept, 1)
	assert.Equal(t, "after", kept[0].Title)

	assert.Len(t, FilterByDate(docs, time.Time{}), 4)
}

func TestDocumentIsNew(t *testing.T) {
	doc := document.Document{ContentHash: "abc"}
	assert.True(t, DocumentIsNew(doc, ""))
	assert.True(t, DocumentIsNew(doc, "def"))
	assert.False(t, DocumentIsNew(doc, "abc"))
}

func TestHTMLToText(t *testing.T) {
	text, err := HTMLStringToText(`<html><head><title>Profile</title><style>p{}</style></head>
		<body><h1>Hello</h1><p>I build   <b>distributed</b> systems.</p><script>var x = 1;</script></body></html>`)
	require.NoError(t, err)
	assert.Equal(t, "Profile Hello I build distributed systems.", text)

	text, err = HTMLStringToText("<p>fragment</p><figure><img src='a.png'></figure><p>two</p>")
	require.NoError(t, err)
	assert.Equal(t, "fragment two", text)
}

func TestLookupWatermark(t *testing.T) {
	last := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	r := &stubReader{last: last, lastOK: true, hash: "h", hashOK: true}
	wm, err := LookupWatermark(ctx, r, &stubAdapter{name: document.SourceMedium, strategy: ByDate})
	require.NoError(t, err)
	assert.Equal(t, Watermark{Since: last}, wm)
	assert.Equal(t, 0, r.hashCalls)

	wm, err = LookupWatermark(ctx, r, &stubAdapter{name: document.SourceResume, strategy: ByHash})
	require.NoError(t, err)
	assert.Equal(t, Watermark{StoredHash: "h"}, wm)

	wm, err = LookupWatermark(ctx, &stubReader{}, &stubAdapter{strategy: ByDate})
	require.NoError(t, err)
	assert.True(t, wm.Since.IsZero())

	_, err = LookupWatermark(ctx, &stubReader{err: document.ErrNotConnected}, &stubAdapter{strategy: ByHash})
	assert.ErrorIs(t, err, document.ErrNotConnected)
}

func TestRegistry_Build(t *testing.T) {
	env := map[string]string{"MEDIUM_USERNAME": "jason", "RESUME_URL": " https://cv.example/cv.pdf "}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	var gotValues []string
	ctor := func(name document.Source) Constructor {
		return func(value string) (Adapter, error) {
			gotValues = append(gotValues, value)
			return &stubAdapter{name: name}, nil
		}
	}

	r := NewRegistry(lookup)
	r.Register(document.SourceMedium, "MEDIUM_USERNAME", ctor(document.SourceMedium))
	r.Register(document.SourceGithub, "GITHUB_USERNAME", ctor(document.SourceGithub))
	r.Register(document.SourceResume, "RESUME_URL", ctor(document.SourceResume))
	assert.Equal(t, []string{"medium", "github", "resume"}, r.Sources())

	adapters, skipped, err := r.Build(nil)
	require.NoError(t, err)
	require.Len(t, adapters, 2)
	assert.Equal(t, document.SourceMedium, adapters[0].Name())
	assert.Equal(t, document.SourceResume, adapters[1].Name())
	assert.Equal(t, []string{"github"}, skipped)
	assert.Equal(t, []string{"jason", "https://cv.example/cv.pdf"}, gotValues)

	adapters, skipped, err = r.Build([]string{"Resume"})
	require.NoError(t, err)
	assert.Len(t, adapters, 1)
	assert.Empty(t, skipped)

	_, _, err = r.Build([]string{"twitter"})
	assert.ErrorIs(t, err, document.ErrConfiguration)
}

func TestRegistry_ReplaceAndConstructorError(t *testing.T) {
	r := NewRegistry(func(string) (string, bool) { return "v", true })
	r.Register(document.SourceMedium, "MEDIUM_USERNAME", func(string) (Adapter, error) {
		return nil, errors.New("real adapter must not be built")
	})
	r.Register(document.SourceMedium, "MEDIUM_USERNAME", func(string) (Adapter, error) {
		return &stubAdapter{name: document.SourceMedium}, nil
	})
	adapters, _, err := r.Build(nil)
	require.NoError(t, err)
	assert.Len(t, adapters, 1)
	assert.Len(t, r.Sources(), 1)

	r.Register(document.SourceGithub, "GITHUB_USERNAME", func(string) (Adapter, error) {
		return nil, document.ErrConfiguration
	})
	_, _, err = r.Build(nil)
	assert.ErrorIs(t, err, document.ErrConfiguration)
}
