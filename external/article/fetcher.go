package article

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"

	"github.com/felixbhw/n17-dash/internal/platform/logging"
	"github.com/felixbhw/n17-dash/internal/usecase"
)

const (
	defaultUserAgent = "Mozilla/5.0 (compatible; n17-dash/1.0; +https://github.com/felixbhw/n17-dash)"
	defaultMaxBytes  = 2 << 20
	defaultMaxChars  = 8000
)

// ErrSkippedHost is returned for hosts whose pages carry no article text,
// such as Reddit threads.
var ErrSkippedHost = crerr.New("article host is skipped")

var defaultSkipHosts = []string{"reddit.com", "redd.it", "old.reddit.com", "x.com", "twitter.com"}

var noiseSelectors = "script, style, noscript, nav, header, footer, aside, form, figure, iframe"

var containerSelectors = []string{
	"[itemprop=articleBody]",
	"article",
	"main",
	"body",
}

type FetcherConfig struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
	MaxChars  int
	SkipHosts []string
	Logger    *logging.Logger
}

// Fetcher downloads a news page and returns its readable paragraphs.
type Fetcher struct {
	client    *resty.Client
	maxBytes  int64
	maxChars  int
	skipHosts []string
	logger    *logging.Logger
}

var _ usecase.BodyFetcher = (*Fetcher)(nil)

func NewFetcher(cfg FetcherConfig) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = defaultMaxChars
	}
	skipHosts := cfg.SkipHosts
	if len(skipHosts) == 0 {
		skipHosts = defaultSkipHosts
	}

	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("user-agent", userAgent)
	client.SetHeader("accept", "text/html,application/xhtml+xml")
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &Fetcher{
		client:    client,
		maxBytes:  maxBytes,
		maxChars:  maxChars,
		skipHosts: skipHosts,
		logger:    logger,
	}
}

func (f *Fetcher) FetchBody(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", crerr.Wrapf(err, "parse article url %q", rawURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("article url %q uses unsupported scheme %q", rawURL, parsed.Scheme)
	}
	if f.skipped(parsed.Hostname()) {
		return "", crerr.Wrapf(ErrSkippedHost, "%s", parsed.Hostname())
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(parsed.String())
	if err != nil {
		return "", crerr.Wrapf(err, "fetch article %s", parsed.Host)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return "", crerr.Newf("fetch article %s: status=%d", parsed.Host, resp.StatusCode())
	}
	if ct := strings.ToLower(resp.Header().Get("content-type")); ct != "" && !strings.Contains(ct, "html") {
		return "", crerr.Newf("fetch article %s: unsupported content type %q", parsed.Host, ct)
	}

	text, err := ExtractText(io.LimitReader(body, f.maxBytes), f.maxChars)
	if err != nil {
		return "", crerr.Wrapf(err, "extract article %s", parsed.Host)
	}
	f.logger.DebugContext(ctx, "fetched article body", "host", parsed.Host, "chars", utf8.RuneCountInString(text))
	return text, nil
}

func (f *Fetcher) skipped(host string) bool {
	host = strings.ToLower(strings.TrimPrefix(host, "www."))
	for _, skip := range f.skipHosts {
		skip = strings.ToLower(strings.TrimSpace(skip))
		if skip == "" {
			continue
		}
		if host == skip || strings.HasSuffix(host, "."+skip) {
			return true
		}
	}
	return false
}

// ExtractText returns the paragraphs of the main content block joined by
// blank lines, cut to maxChars runes.
func ExtractText(r io.Reader, maxChars int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	doc.Find(noiseSelectors).Remove()

	var container *goquery.Selection
	for _, selector := range containerSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			container = sel
			break
		}
	}
	if container == nil {
		return "", nil
	}

	paragraphs := make([]string, 0, 16)
	container.Find("p").Each(func(_ int, p *goquery.Selection) {
		if text := collapseSpace(p.Text()); text != "" {
			paragraphs = append(paragraphs, text)
		}
	})
	text := strings.Join(paragraphs, "\n\n")
	if text == "" {
		text = collapseSpace(container.Text())
	}
	return truncateRunes(text, maxChars), nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit]))
}
