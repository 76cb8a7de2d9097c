package apifootball

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"golang.org/x/sync/singleflight"

	"github.com/felixbhw/n17-dash/internal/domain/identity"
	"github.com/felixbhw/n17-dash/internal/platform/logging"
	"github.com/felixbhw/n17-dash/internal/platform/resilience"
	"github.com/felixbhw/n17-dash/internal/usecase"
)

const (
	defaultBaseURL = "https://v3.football.api-sports.io"
	apiKeyHeader   = "x-apisports-key"
	maxBodyBytes   = 6 << 20
)

var errAPIFootballTransient = crerr.New("api-football transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads squads and player profiles from API-Football v3.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     singleflight.Group
	backoff    func(attempt int) time.Duration
}

var (
	_ usecase.RosterLookup = (*Client)(nil)
	_ usecase.PlayerSearch = (*Client)(nil)
)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		maxRetries: max(cfg.MaxRetries, 0),
		logger:     logger,
		breaker:    resilience.NewFromConfig(cfg.CircuitBreaker),
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt+1) * time.Second
		},
	}
}

type squadsEnvelope struct {
	Errors   any `json:"errors"`
	Response []struct {
		Team struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"team"`
		Players []squadPlayer `json:"players"`
	} `json:"response"`
}

type squadPlayer struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Age      int    `json:"age"`
	Number   *int   `json:"number"`
	Position string `json:"position"`
}

type profilesEnvelope struct {
	Errors   any `json:"errors"`
	Response []struct {
		Player profile `json:"player"`
	} `json:"response"`
}

type profile struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
}

// Squad returns the current squad of a team.
func (c *Client) Squad(ctx context.Context, teamID string) ([]identity.Entry, error) {
	teamID = strings.TrimSpace(teamID)
	if _, err := strconv.ParseInt(teamID, 10, 64); err != nil {
		return nil, fmt.Errorf("%w: team id %q must be numeric", usecase.ErrInvalidInput, teamID)
	}

	var payload squadsEnvelope
	if err := c.doJSON(ctx, "/players/squads", map[string]string{"team": teamID}, &payload); err != nil {
		return nil, fmt.Errorf("fetch squad team=%s: %w", teamID, err)
	}
	if err := providerErrors(payload.Errors); err != nil {
		return nil, fmt.Errorf("fetch squad team=%s: %w", teamID, err)
	}

	out := make([]identity.Entry, 0, 32)
	for _, team := range payload.Response {
		for _, p := range team.Players {
			if p.ID <= 0 || strings.TrimSpace(p.Name) == "" {
				continue
			}
			out = append(out, identity.Entry{
				ID:   strconv.FormatInt(p.ID, 10),
				Name: strings.TrimSpace(p.Name),
			})
		}
	}
	return out, nil
}

// Search queries player profiles by name. The provider rejects terms shorter
// than four characters, so callers filter those out first.
func (c *Client) Search(ctx context.Context, term string) ([]identity.Entry, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, fmt.Errorf("%w: search term is required", usecase.ErrInvalidInput)
	}

	var payload profilesEnvelope
	if err := c.doJSON(ctx, "/players/profiles", map[string]string{"search": term}, &payload); err != nil {
		return nil, fmt.Errorf("search players term=%q: %w", term, err)
	}
	if err := providerErrors(payload.Errors); err != nil {
		return nil, fmt.Errorf("search players term=%q: %w", term, err)
	}

	out := make([]identity.Entry, 0, len(payload.Response))
	for _, item := range payload.Response {
		p := item.Player
		if p.ID <= 0 {
			continue
		}
		out = append(out, identity.Entry{
			ID:        strconv.FormatInt(p.ID, 10),
			Name:      strings.TrimSpace(p.Name),
			Firstname: strings.TrimSpace(p.Firstname),
			Lastname:  strings.TrimSpace(p.Lastname),
		})
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.apiKey == "" {
		return fmt.Errorf("%w: api-football key is not configured", usecase.ErrDependencyUnavailable)
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}
	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		var raw []byte
		execErr := c.breaker.Execute(ctx, func(ctx context.Context) error {
			var reqErr error
			raw, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}, isAPIFootballCircuitFailure)
		return raw, execErr
	})
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "api-football circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: football data provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		req.Header.Set(apiKeyHeader, c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errAPIFootballTransient, redact(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errAPIFootballTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errAPIFootballTransient, resp.StatusCode, abbreviate(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviate(raw))
			}
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(c.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "api-football request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

// providerErrors turns the envelope's errors field into an error. The field
// is an empty array on success and an object keyed by error kind otherwise.
func providerErrors(v any) error {
	switch errs := v.(type) {
	case map[string]any:
		if len(errs) == 0 {
			return nil
		}
		keys := make([]string, 0, len(errs))
		for key := range errs {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s: %v", key, errs[key]))
		}
		err := fmt.Errorf("provider errors: %s", strings.Join(parts, "; "))
		if _, limited := errs["rateLimit"]; limited {
			return fmt.Errorf("%w: %v", errAPIFootballTransient, err)
		}
		return err
	case []any:
		if len(errs) == 0 {
			return nil
		}
		return fmt.Errorf("provider errors: %v", errs)
	default:
		return nil
	}
}

func isAPIFootballCircuitFailure(err error) bool {
	return stderrors.Is(err, errAPIFootballTransient)
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func redact(value, secret string) string {
	if secret == "" {
		return value
	}
	return strings.ReplaceAll(value, secret, "REDACTED")
}

func abbreviate(raw []byte) string {
	const limit = 512
	s := strings.TrimSpace(string(raw))
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "...(truncated)"
}
