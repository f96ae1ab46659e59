package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/profile-rag/internal/domain/document"
)

// Strategy says which stored signal an adapter de-duplicates against.
type Strategy int

const (
	// ByDate keeps documents published strictly after the stored watermark.
	ByDate Strategy = iota
	// ByHash keeps a document only when its content hash changed.
	ByHash
)

func (s Strategy) String() string {
	if s == ByHash {
		return "hash"
	}
	return "date"
}

// Watermark is read from the vector store before a source scrapes.
// A zero Since and an empty StoredHash both mean "nothing stored yet".
type Watermark struct {
	Since      time.Time
	StoredHash string
}

// Adapter produces documents from one origin. Scrape never fails: per-item
// problems are logged and a dead origin yields an empty slice.
type Adapter interface {
	Name() document.Source
	Strategy() Strategy
	Scrape(ctx context.Context, watermark Watermark) []document.Document
}

// WatermarkReader is the read side of the vector store the lookups need.
type WatermarkReader interface {
	GetLastScrapedDate(ctx context.Context, source document.Source) (time.Time, bool, error)
	GetContentHash(ctx context.Context, source document.Source) (string, bool, error)
}

// LookupWatermark reads only the signal the adapter's strategy uses.
func LookupWatermark(ctx context.Context, r WatermarkReader, a Adapter) (Watermark, error) {
	var wm Watermark
	switch a.Strategy() {
	case ByHash:
		hash, ok, err := r.GetContentHash(ctx, a.Name())
		if err != nil {
			return wm, fmt.Errorf("content hash for %s: %w", a.Name(), err)
		}
		if ok {
			wm.StoredHash = hash
		}
	default:
		last, ok, err := r.GetLastScrapedDate(ctx, a.Name())
		if err != nil {
			return wm, fmt.Errorf("last scraped date for %s: %w", a.Name(), err)
		}
		if ok {
			wm.Since = last
		}
	}
	return wm, nil
}

// BuildDocument is the one place documents are assembled, so every adapter
// tags and trims them the same way.
func BuildDocument(source document.Source, title, content, url string, published time.Time, metadata map[string]any) (document.Document, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return document.Document{}, fmt.Errorf("%w: %s item %q has no content", document.ErrSourceFetch, source, url)
	}
	if published.IsZero() {
		return document.Document{}, fmt.Errorf("%w: %s item %q has no publish date", document.ErrSourceFetch, source, url)
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	return document.Document{
		Title:         strings.TrimSpace(title),
		Content:       content,
		URL:           url,
		Source:        source,
		PublishedDate: published,
		Metadata:      metadata,
	}, nil
}

// FilterByDate keeps documents published strictly after since. A zero since
// keeps everything.
func FilterByDate(docs []document.Document, since time.Time) []document.Document {
	if since.IsZero() {
		return docs
	}
	kept := make([]document.Document, 0, len(docs))
	for _, d := range docs {
		if d.PublishedDate.After(since) {
			kept = append(kept, d)
		}
	}
	return kept
}

// DocumentIsNew reports whether doc differs from the stored digest. No stored
// digest means it is new.
func DocumentIsNew(doc document.Document, storedHash string) bool {
	if storedHash == "" {
		return true
	}
	return doc.ContentHash != storedHash
}
