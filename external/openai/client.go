package openai

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/felixbhw/n17-dash/internal/platform/logging"
	"github.com/felixbhw/n17-dash/internal/platform/resilience"
	"github.com/felixbhw/n17-dash/internal/usecase"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	maxBodyBytes   = 4 << 20
)

var errOpenAITransient = crerr.New("openai transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Model          string
	Temperature    float64
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client sends chat completion requests in JSON mode and returns the raw
// message content for the caller to decode.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxRetries  int
	logger      *logging.Logger
	breaker     *resilience.CircuitBreaker
	backoff     func(attempt int) time.Duration
}

var _ usecase.Oracle = (*Client)(nil)

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
		httpClient.Timeout = 60 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	return &Client{
		httpClient:  httpClient,
		baseURL:     baseURL,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       model,
		temperature: cfg.Temperature,
		maxRetries:  max(cfg.MaxRetries, 0),
		logger:      logger,
		breaker:     resilience.NewFromConfig(cfg.CircuitBreaker),
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt+1) * time.Second
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	ResponseFormat responseFormat `json:"response_format"`
	Temperature    float64        `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete asks the model for a JSON object. The system message carries the
// instructions and the shape hint; the user message carries the context.
func (c *Client) Complete(ctx context.Context, instructions, contextText, shapeHint string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: openai api key is not configured", usecase.ErrDependencyUnavailable)
	}

	system := strings.TrimSpace(instructions)
	if hint := strings.TrimSpace(shapeHint); hint != "" {
		system += "\n\nRespond with a single JSON object shaped like:\n" + hint
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigStd.NewEncoder(buf).Encode(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: contextText},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
		Temperature:    c.temperature,
	}); err != nil {
		return nil, fmt.Errorf("encode chat request: %w", err)
	}
	body := append([]byte(nil), buf.B...)

	var raw []byte
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var reqErr error
		raw, reqErr = c.executeRequest(ctx, body)
		return reqErr
	}, isOpenAICircuitFailure)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "openai circuit breaker rejected request", "state", c.breaker.State())
		return nil, fmt.Errorf("%w: oracle is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return nil, err
	}

	var resp chatResponse
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("openai error type=%s: %s", resp.Error.Type, resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai response has no choices")
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, fmt.Errorf("openai response content is empty (finish_reason=%s)", resp.Choices[0].FinishReason)
	}
	return []byte(content), nil
}

func (c *Client) executeRequest(ctx context.Context, body []byte) ([]byte, error) {
	endpoint := c.baseURL + "/chat/completions"

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errOpenAITransient, redact(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errOpenAITransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: openai status=%d body=%s", errOpenAITransient, resp.StatusCode, abbreviate(raw))
			default:
				return nil, fmt.Errorf("openai status=%d body=%s", resp.StatusCode, abbreviate(raw))
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

	c.logger.WarnContext(ctx, "openai request failed", "attempts", c.maxRetries+1, "error", lastErr)
	return nil, lastErr
}

func isOpenAICircuitFailure(err error) bool {
	return stderrors.Is(err, errOpenAITransient)
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
