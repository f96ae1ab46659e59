package resume

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/profile-rag/internal/config"
	"github.com/akolanti/profile-rag/internal/domain/document"
	"github.com/akolanti/profile-rag/pkg/logger_i"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	driveExportURL     = "https://drive.google.com/uc"
	mimeTypeGoogleDoc  = "application/vnd.google-apps.document"
	exportMimePDF      = "application/pdf"
	driveMetadataField = "name,modifiedTime,mimeType"
)

var (
	fileIDPath  = regexp.MustCompile(`/(?:file/)?d/([A-Za-z0-9_-]{10,})`)
	fileIDParam = regexp.MustCompile(`^[A-Za-z0-9_-]{10,}$`)
)

// download is one fetched résumé file plus what the origin said about it.
type download struct {
	body         []byte
	lastModified time.Time
	filename     string
}

type downloader interface {
	Download(ctx context.Context, fileURL string) (download, error)
}

// DriveDownloader fetches files behind link-sharing URLs. With an API key it
// goes through the Drive API, otherwise through the public export link and
// its large-file confirmation page.
type DriveDownloader struct {
	apiKey      string
	apiEndpoint string
	exportURL   string
	client      *http.Client
	logger      *logger_i.Logger

	once    sync.Once
	service *drive.Service
	initErr error
}

func NewDriveDownloader(apiKey string, client *http.Client) *DriveDownloader {
	return &DriveDownloader{
		apiKey:    apiKey,
		exportURL: driveExportURL,
		client:    client,
		logger:    logger_i.NewLogger("drive_download"),
	}
}

func (d *DriveDownloader) Download(ctx context.Context, shareURL string) (download, error) {
	id := driveFileID(shareURL)
	if id == "" {
		return download{}, fmt.Errorf("no drive file id in %q", shareURL)
	}
	if d.apiKey != "" {
		return d.viaAPI(ctx, id)
	}
	return d.viaExportLink(ctx, id)
}

func (d *DriveDownloader) driveService(ctx context.Context) (*drive.Service, error) {
	d.once.Do(func() {
		opts := []option.ClientOption{option.WithAPIKey(d.apiKey)}
		if d.apiEndpoint != "" {
			opts = append(opts, option.WithEndpoint(d.apiEndpoint))
		}
		d.service, d.initErr = drive.NewService(context.WithoutCancel(ctx), opts...)
	})
	return d.service, d.initErr
}

func (d *DriveDownloader) viaAPI(ctx context.Context, id string) (download, error) {
	svc, err := d.driveService(ctx)
	if err != nil {
		return download{}, fmt.Errorf("drive service: %w", err)
	}

	file, err := svc.Files.Get(id).Fields(driveMetadataField).Context(ctx).Do()
	if err != nil {
		return download{}, fmt.Errorf("drive metadata: %w", err)
	}

	var resp *http.Response
	if file.MimeType == mimeTypeGoogleDoc {
		resp, err = svc.Files.Export(id, exportMimePDF).Context(ctx).Download()
	} else {
		resp, err = svc.Files.Get(id).Context(ctx).Download()
	}
	if err != nil {
		return download{}, fmt.Errorf("drive download: %w", err)
	}
	defer resp.Body.Close()

	body, err := readLimited(resp.Body)
	if err != nil {
		return download{}, err
	}
	modified, _ := time.Parse(time.RFC3339, file.ModifiedTime)
	return download{body: body, lastModified: modified, filename: file.Name}, nil
}

func (d *DriveDownloader) viaExportLink(ctx context.Context, id string) (download, error) {
	query := url.Values{"export": {"download"}, "id": {id}}
	resp, err := d.get(ctx, d.exportURL+"?"+query.Encode())
	if err != nil {
		return download{}, err
	}
	defer resp.Body.Close()

	if !isHTML(resp) {
		return fromResponse(resp)
	}

	// large or unscanned files answer with a confirmation form first
	action, params, err := confirmationForm(resp.Body)
	if err != nil {
		return download{}, err
	}
	target, err := formTarget(resp.Request.URL, action, params)
	if err != nil {
		return download{}, err
	}
	d.logger.Debug("Following drive confirmation form", "target", target)
	confirmed, err := d.get(ctx, target)
	if err != nil {
		return download{}, err
	}
	defer confirmed.Body.Close()
	if isHTML(confirmed) {
		return download{}, fmt.Errorf("drive kept returning a web page for file %s, is it shared publicly?", id)
	}
	return fromResponse(confirmed)
}

func (d *DriveDownloader) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", config.BrowserUserAgent)
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("%s answered %s", req.URL.Host, resp.Status)
	}
	return resp, nil
}

// formTarget resolves a form action against the page that served it and
// merges the hidden fields into any query the action already carries.
func formTarget(page *url.URL, action string, params url.Values) (string, error) {
	ref, err := url.Parse(strings.TrimSpace(action))
	if err != nil {
		return "", fmt.Errorf("drive confirmation form action %q: %w", action, err)
	}
	u := page.ResolveReference(ref)
	query := u.Query()
	for key, values := range params {
		query[key] = values
	}
	u.RawQuery = query.Encode()
	return u.String(), nil
}

// confirmationForm returns the action and hidden fields of the download form.
func confirmationForm(r io.Reader) (string, url.Values, error) {
	root, err := html.Parse(r)
	if err != nil {
		return "", nil, err
	}

	var action string
	params := url.Values{}
	var walk func(n *html.Node, inForm bool)
	walk = func(n *html.Node, inForm bool) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Form:
				if action == "" {
					action = attr(n, "action")
					inForm = true
				}
			case atom.Input:
				if inForm && attr(n, "name") != "" {
					params.Set(attr(n, "name"), attr(n, "value"))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, inForm)
		}
	}
	walk(root, false)

	if action == "" {
		return "", nil, fmt.Errorf("%w: drive returned a page without a download form", document.ErrSourceFetch)
	}
	return action, params, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func isHTML(resp *http.Response) bool {
	return strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html")
}

func fromResponse(resp *http.Response) (download, error) {
	body, err := readLimited(resp.Body)
	if err != nil {
		return download{}, err
	}
	d := download{body: body}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := http.ParseTime(lm); err == nil {
			d.lastModified = t
		}
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		d.filename = params["filename"]
	}
	return d, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, config.MaxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading download: %w", err)
	}
	if len(body) > config.MaxDownloadBytes {
		return nil, fmt.Errorf("download larger than %d bytes", config.MaxDownloadBytes)
	}
	return body, nil
}

func isDriveURL(u string) bool {
	return strings.Contains(u, "drive.google.com") || strings.Contains(u, "docs.google.com")
}

// driveFileID understands /file/d/<id>/view, /document/d/<id> and ?id=<id>.
func driveFileID(shareURL string) string {
	if m := fileIDPath.FindStringSubmatch(shareURL); m != nil {
		return m[1]
	}
	u, err := url.Parse(shareURL)
	if err != nil {
		return ""
	}
	if id := u.Query().Get("id"); fileIDParam.MatchString(id) {
		return id
	}
	return ""
}
