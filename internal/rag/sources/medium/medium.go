package medium

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/customHttpClient"
	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/metrics"
	"github.com/akolanti/profile-rag/internal/rag/sources"
	"github.com/akolanti/profile-rag/pkg/logger_i"
	"github.com/mmcdole/gofeed"
)

const feedURLTemplate = "https://medium.com/feed/@%s"

type Adapter struct {
	username string
	feedURL  string
	parser   *gofeed.Parser
	logger   *logger_i.Logger
}

type Option func(*Adapter)

// WithFeedURL points the adapter at another feed, used by tests.
func WithFeedURL(url string) Option {
	return func(a *Adapter) { a.feedURL = url }
}

func New(username string, opts ...Option) (*Adapter, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil, fmt.Errorf("%w: medium username is required", document.ErrConfiguration)
	}

	parser := gofeed.NewParser()
	parser.Client = customHttpClient.New(config.SourceFetchTimeout)

	a := &Adapter{
		username: username,
		feedURL:  fmt.Sprintf(feedURLTemplate, username),
		parser:   parser,
		logger:   logger_i.NewLogger("source_medium"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *Adapter) Name() document.Source      { return document.SourceMedium }
func (a *Adapter) Strategy() sources.Strategy { return sources.ByDate }

func (a *Adapter) Scrape(ctx context.Context, watermark sources.Watermark) []document.Document {
	feed, err := a.parser.ParseURLWithContext(a.feedURL, ctx)
	if err != nil {
		a.logger.Error("Could not read feed", "url", a.feedURL, "error", fmt.Errorf("%w: %v", document.ErrSourceFetch, err))
		return []document.Document{}
	}

	posts := make([]document.Document, 0, len(feed.Items))
	for _, item := range feed.Items {
		doc, err := a.parseItem(item)
		if err != nil {
			a.logger.Warn("Skipping feed item", "link", item.Link, "error", err)
			continue
		}
		posts = append(posts, doc)
	}

	kept := sources.FilterByDate(posts, watermark.Since)
	a.logger.Info("Scraped Medium posts", "fetched", len(posts), "new", len(kept))
	metrics.AddDocumentsScraped(string(document.SourceMedium), len(kept))
	return kept
}

func (a *Adapter) parseItem(item *gofeed.Item) (document.Document, error) {
	// medium ships the full post in content:encoded, the description is a teaser
	body := item.Content
	if strings.TrimSpace(body) == "" {
		body = item.Description
	}
	text, err := sources.HTMLStringToText(body)
	if err != nil {
		return document.Document{}, fmt.Errorf("%w: %v", document.ErrSourceFetch, err)
	}

	var published time.Time
	switch {
	case item.PublishedParsed != nil:
		published = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		published = *item.UpdatedParsed
	}

	metadata := map[string]any{}
	if len(item.Categories) > 0 {
		metadata["tags"] = append([]string(nil), item.Categories...)
	}
	if item.GUID != "" {
		metadata["guid"] = item.GUID
	}
	return sources.BuildDocument(document.SourceMedium, item.Title, text, item.Link, published.UTC(), metadata)
}
