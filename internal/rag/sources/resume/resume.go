package resume

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/customHttpClient"
	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/metrics"
	"github.com/akolanti/profile-rag/internal/rag/sources"
	"github.com/akolanti/profile-rag/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

const defaultTitle = "resume"

type Adapter struct {
	url    string
	client *http.Client
	drive  downloader
	logger *logger_i.Logger
	now    func() time.Time
}

type Option func(*Adapter)

// WithGoogleAPIKey routes drive links through the Drive API.
func WithGoogleAPIKey(key string) Option {
	return func(a *Adapter) { a.drive = NewDriveDownloader(key, a.client) }
}

func withDrive(d downloader) Option {
	return func(a *Adapter) { a.drive = d }
}

func New(resumeURL string, opts ...Option) (*Adapter, error) {
	resumeURL = strings.TrimSpace(resumeURL)
	if resumeURL == "" {
		return nil, fmt.Errorf("%w: resume url is required", document.ErrConfiguration)
	}
	if u, err := url.Parse(resumeURL); err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: resume url %q is not absolute", document.ErrConfiguration, resumeURL)
	}

	client := customHttpClient.New(config.SourceFetchTimeout)
	a := &Adapter{
		url:    resumeURL,
		client: client,
		drive:  NewDriveDownloader("", client),
		logger: logger_i.NewLogger("source_resume"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Adapter) Name() document.Source      { return document.SourceResume }
func (a *Adapter) Strategy() sources.Strategy { return sources.ByHash }

// Scrape returns the résumé when its bytes differ from the stored digest.
// The date watermark is ignored, hosting providers do not keep a useful one.
func (a *Adapter) Scrape(ctx context.Context, watermark sources.Watermark) []document.Document {
	dl, err := a.fetch(ctx)
	if err != nil {
		a.logger.Error("Failed to fetch resume", "url", a.url, "error", fmt.Errorf("%w: %v", document.ErrSourceFetch, err))
		return []document.Document{}
	}

	doc, err := a.buildDocument(dl)
	if err != nil {
		a.logger.Error("No resume document", "url", a.url, "error", err)
		return []document.Document{}
	}

	if !sources.DocumentIsNew(doc, watermark.StoredHash) {
		a.logger.Info("Resume unchanged (hash match), skipping ingestion")
		return []document.Document{}
	}
	a.logger.Info("Scraped 1 resume document", "pages", doc.Metadata["pages"])
	metrics.AddDocumentsScraped(string(document.SourceResume), 1)
	return []document.Document{doc}
}

func (a *Adapter) fetch(ctx context.Context) (download, error) {
	if isDriveURL(a.url) {
		return a.drive.Download(ctx, a.url)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return download{}, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return download{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return download{}, fmt.Errorf("GET %s: %s", a.url, resp.Status)
	}
	return fromResponse(resp)
}

func (a *Adapter) buildDocument(dl download) (document.Document, error) {
	if len(dl.body) == 0 {
		return document.Document{}, fmt.Errorf("%w: empty download", document.ErrSourceFetch)
	}
	sum := sha256.Sum256(dl.body)

	text, pages, err := extractText(dl.body)
	if err != nil {
		return document.Document{}, fmt.Errorf("%w: %v", document.ErrSourceFetch, err)
	}

	published := dl.lastModified
	if published.IsZero() {
		published = a.now()
	}

	title := titleFrom(dl.filename)
	if title == "" {
		title = titleFromURL(a.url)
	}

	doc, err := sources.BuildDocument(document.SourceResume, title, text, a.url, published.UTC(),
		map[string]any{"pages": pages})
	if err != nil {
		return document.Document{}, err
	}
	doc.ContentHash = hex.EncodeToString(sum[:])
	return doc, nil
}

// extractText handles PDF, office documents and plain text.
func extractText(body []byte) (string, int, error) {
	switch {
	case bytes.HasPrefix(body, []byte("%PDF")):
		return extractPDF(body)
	case bytes.HasPrefix(body, []byte("PK")), bytes.HasPrefix(body, []byte(`{\rtf`)):
		text, err := cat.FromBytes(body)
		if err != nil {
			return "", 0, fmt.Errorf("failed to extract document: %w", err)
		}
		return text, 1, nil
	case utf8.Valid(body):
		return string(body), 1, nil
	default:
		return "", 0, errors.New("unsupported resume format")
	}
}

func extractPDF(body []byte) (string, int, error) {
	r, err := pdf.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return "", 0, fmt.Errorf("failed to open pdf: %w", err)
	}

	numPages := r.NumPage()
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := protectExtract(page)
		if err != nil {
			// one unreadable page should not lose the rest
			continue
		}
		pages = append(pages, content)
	}
	return strings.Join(pages, "\n"), numPages, nil
}

// protectExtract bounds text extraction of a single page, some fonts make the
// parser spin.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(config.PDFPageTimeout):
		return "", errors.New("pdf page extraction timed out")
	}
}

func titleFrom(filename string) string {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return ""
	}
	return strings.TrimSuffix(filename, path.Ext(filename))
}

// titleFromURL is the last path segment without its extension.
func titleFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return defaultTitle
	}
	base := path.Base(strings.TrimSuffix(u.Path, "/"))
	if base == "." || base == "/" || base == "" {
		return defaultTitle
	}
	if t := titleFrom(base); t != "" {
		return t
	}
	return defaultTitle
}
