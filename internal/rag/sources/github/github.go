package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/customHttpClient"
	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/internal/metrics"
	"github.com/akolanti/profile-rag/internal/rag/sources"
	"github.com/akolanti/profile-rag/pkg/logger_i"
	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"
)

const contentSeparator = " | "

type Adapter struct {
	username string
	client   *gh.Client
	logger   *logger_i.Logger
}

type Option func(*options)

type options struct {
	token   string
	baseURL string
}

// WithToken authenticates API calls, lifting the anonymous rate limit.
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

// WithBaseURL targets another API root, used by tests.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

func New(username string, opts ...Option) (*Adapter, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: github username is required", document.ErrConfiguration)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := customHttpClient.New(config.SourceFetchTimeout)
	if o.token != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: o.token}))
		httpClient.Timeout = config.SourceFetchTimeout
	}
	client := gh.NewClient(httpClient)
	if o.baseURL != "" {
		base, err := url.Parse(strings.TrimSuffix(o.baseURL, "/") + "/")
		if err != nil {
			return nil, fmt.Errorf("%w: github base url: %v", document.ErrConfiguration, err)
		}
		client.BaseURL = base
	}

	return &Adapter{
		username: username,
		client:   client,
		logger:   logger_i.NewLogger("source_github").With("user", username),
	}, nil
}

func (a *Adapter) Name() document.Source      { return document.SourceGithub }
func (a *Adapter) Strategy() sources.Strategy { return sources.ByDate }

func (a *Adapter) Scrape(ctx context.Context, watermark sources.Watermark) []document.Document {
	var docs []document.Document
	if profile, ok := a.scrapeProfile(ctx); ok {
		docs = append(docs, profile)
	}
	docs = append(docs, a.scrapeRepositories(ctx)...)

	kept := sources.FilterByDate(docs, watermark.Since)
	a.logger.Info("Scraped GitHub documents", "fetched", len(docs), "new", len(kept))
	metrics.AddDocumentsScraped(string(document.SourceGithub), len(kept))
	if kept == nil {
		return []document.Document{}
	}
	return kept
}

func (a *Adapter) scrapeProfile(ctx context.Context) (document.Document, bool) {
	user, _, err := a.client.Users.Get(ctx, a.username)
	if err != nil {
		a.logger.Error("Error fetching GitHub profile", "error", fmt.Errorf("%w: %v", document.ErrSourceFetch, err))
		return document.Document{}, false
	}

	doc, err := sources.BuildDocument(
		document.SourceGithub,
		"GitHub Profile: "+firstNonEmpty(user.GetName(), user.GetLogin()),
		strings.Join(profileParts(user), contentSeparator),
		user.GetHTMLURL(),
		user.GetUpdatedAt().UTC(),
		map[string]any{
			"type":         "profile",
			"login":        user.GetLogin(),
			"followers":    user.GetFollowers(),
			"public_repos": user.GetPublicRepos(),
			"company":      user.GetCompany(),
			"location":     user.GetLocation(),
		},
	)
	if err != nil {
		a.logger.Warn("Skipping GitHub profile", "error", err)
		return document.Document{}, false
	}
	return doc, true
}

// scrapeRepositories pages through every public repository, newest update
// first. A failed page ends paging but keeps what was already collected.
func (a *Adapter) scrapeRepositories(ctx context.Context) []document.Document {
	opts := &gh.RepositoryListByUserOptions{
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: gh.ListOptions{PerPage: config.GithubReposPerPage},
	}

	var docs []document.Document
	for {
		repos, resp, err := a.client.Repositories.ListByUser(ctx, a.username, opts)
		if err != nil {
			a.logger.Error("Error fetching GitHub repositories", "page", opts.Page,
				"error", fmt.Errorf("%w: %v", document.ErrSourceFetch, err))
			break
		}
		for _, repo := range repos {
			doc, err := repositoryDocument(repo)
			if err != nil {
				a.logger.Warn("Skipping repository", "repo", repo.GetName(), "error", err)
				continue
			}
			docs = append(docs, doc)
		}
		if resp == nil || resp.NextPage == 0 || len(repos) == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return docs
}

func repositoryDocument(repo *gh.Repository) (document.Document, error) {
	return sources.BuildDocument(
		document.SourceGithub,
		"Repository: "+repo.GetName(),
		strings.Join(repositoryParts(repo), contentSeparator),
		repo.GetHTMLURL(),
		repo.GetUpdatedAt().UTC(),
		map[string]any{
			"type":      "repository",
			"repo_name": repo.GetName(),
			"language":  repo.GetLanguage(),
			"stars":     repo.GetStargazersCount(),
			"forks":     repo.GetForksCount(),
			"is_fork":   repo.GetFork(),
		},
	)
}

func profileParts(user *gh.User) []string {
	parts := []string{
		"Username: " + user.GetLogin(),
		"Name: " + firstNonEmpty(user.GetName(), "N/A"),
	}
	parts = appendOptional(parts, "Bio", user.GetBio())
	parts = appendOptional(parts, "Company", user.GetCompany())
	parts = appendOptional(parts, "Location", user.GetLocation())
	parts = appendOptional(parts, "Blog", user.GetBlog())
	return append(parts,
		"Public Repositories: "+strconv.Itoa(user.GetPublicRepos()),
		"Followers: "+strconv.Itoa(user.GetFollowers()),
		"Following: "+strconv.Itoa(user.GetFollowing()),
		"Created at: "+user.GetCreatedAt().UTC().Format(time.RFC3339),
	)
}

func repositoryParts(repo *gh.Repository) []string {
	parts := []string{"Repository: " + repo.GetName()}
	parts = appendOptional(parts, "Description", repo.GetDescription())
	return append(parts,
		"Language: "+firstNonEmpty(repo.GetLanguage(), "N/A"),
		"Stars: "+strconv.Itoa(repo.GetStargazersCount()),
		"Forks: "+strconv.Itoa(repo.GetForksCount()),
		"Open Issues: "+strconv.Itoa(repo.GetOpenIssuesCount()),
		"Topics: "+strings.Join(repo.Topics, ", "),
		"URL: "+repo.GetHTMLURL(),
	)
}

func appendOptional(parts []string, label, value string) []string {
	if value == "" {
		return parts
	}
	return append(parts, label+": "+value)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
