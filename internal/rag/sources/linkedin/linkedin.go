package linkedin

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/customHttpClient"
	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/metrics"
	"github.com/akolanti/profile-rag/internal/rag/sources"
	"github.com/akolanti/profile-rag/pkg/logger_i"
)

const profileTitle = "LinkedIn Profile"

// Adapter reads the public profile page. LinkedIn often answers bots with a
// login wall, in which case the run simply gets nothing from this source.
type Adapter struct {
	profileURL string
	client     *http.Client
	logger     *logger_i.Logger
	now        func() time.Time
}

func New(profileURL string) (*Adapter, error) {
	profileURL = strings.TrimSpace(profileURL)
	if u, err := url.Parse(profileURL); profileURL == "" || err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: linkedin profile url %q is not absolute", document.ErrConfiguration, profileURL)
	}
	return &Adapter{
		profileURL: profileURL,
		client:     customHttpClient.New(config.LinkedInTimeout),
		logger:     logger_i.NewLogger("source_linkedin"),
		now:        time.Now,
	}, nil
}

func (a *Adapter) Name() document.Source      { return document.SourceLinkedIn }
func (a *Adapter) Strategy() sources.Strategy { return sources.ByHash }

// Scrape returns the profile when its text differs from the stored digest.
// The page carries no edit date, so published_date is only the fetch time.
func (a *Adapter) Scrape(ctx context.Context, watermark sources.Watermark) []document.Document {
	doc, err := a.fetchProfile(ctx)
	if err != nil {
		a.logger.Error("Error scraping LinkedIn, consider exporting the profile data manually",
			"url", a.profileURL, "error", err)
		return []document.Document{}
	}

	if !sources.DocumentIsNew(doc, watermark.StoredHash) {
		a.logger.Info("LinkedIn profile unchanged (hash match), skipping ingestion")
		return []document.Document{}
	}
	a.logger.Info("Scraped LinkedIn profile")
	metrics.AddDocumentsScraped(string(document.SourceLinkedIn), 1)
	return []document.Document{doc}
}

func (a *Adapter) fetchProfile(ctx context.Context) (document.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.profileURL, nil)
	if err != nil {
		return document.Document{}, err
	}
	req.Header.Set("User-Agent", config.BrowserUserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return document.Document{}, fmt.Errorf("%w: %v", document.ErrSourceFetch, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return document.Document{}, fmt.Errorf("%w: GET %s: %s", document.ErrSourceFetch, a.profileURL, resp.Status)
	}

	text, err := sources.HTMLToText(resp.Body)
	if err != nil {
		return document.Document{}, fmt.Errorf("%w: %v", document.ErrSourceFetch, err)
	}
	doc, err := sources.BuildDocument(document.SourceLinkedIn, profileTitle, text, a.profileURL, a.now().UTC(), nil)
	if err != nil {
		return document.Document{}, err
	}
	sum := sha256.Sum256([]byte(doc.Content))
	doc.ContentHash = hex.EncodeToString(sum[:])
	return doc, nil
}
