// Package sentiment scores habit importance statements through an external
// sentiment endpoint, falling back to a local keyword heuristic.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/alexanderramin/slotwise/internal/domain"
	"github.com/alexanderramin/slotwise/internal/logging"
)

var (
	// ErrNotConfigured indicates no endpoint is set.
	ErrNotConfigured = errors.New("sentiment endpoint not configured")

	// ErrStatus indicates the endpoint answered with a non-200 status.
	ErrStatus = errors.New("sentiment endpoint returned error status")
)

// Result is the analysis of one importance statement.
type Result struct {
	Sentiment  domain.Sentiment
	Importance int
	Confidence float64
	Fallback   bool
}

// Analyzer scores importance statements. Implementations never fail; they
// degrade to the local heuristic instead.
type Analyzer interface {
	Analyze(ctx context.Context, statement string) Result
}

type Config struct {
	Endpoint        string
	APIKey          string
	Timeout         time.Duration
	MaxRetries      uint64
	InitialInterval time.Duration
	CacheSize       int
}

func DefaultConfig() Config {
	return Config{
		Endpoint:        "https://api.sentiment.example/v1/analyze",
		Timeout:         10 * time.Second,
		MaxRetries:      2,
		InitialInterval: 200 * time.Millisecond,
		CacheSize:       256,
	}
}

// Client calls the remote endpoint with retries and caches successful
// results by statement.
type Client struct {
	cfg          Config
	http         *http.Client
	cache        *lru.Cache[string, Result]
	logger       *slog.Logger
	buildBackoff func() backoff.BackOff
}

// NewClient creates a Client. A nil logger discards log output.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultConfig().CacheSize
	}
	cache, err := lru.New[string, Result](size)
	if err != nil {
		return nil, fmt.Errorf("creating sentiment cache: %w", err)
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		cache:  cache,
		logger: logger,
	}
	c.buildBackoff = func() backoff.BackOff {
		b := backoff.NewExponentialBackOff()
		if cfg.InitialInterval > 0 {
			b.InitialInterval = cfg.InitialInterval
		}
		b.MaxElapsedTime = cfg.Timeout
		return backoff.WithMaxRetries(b, cfg.MaxRetries)
	}
	return c, nil
}

type analyzeRequest struct {
	Text              string `json:"text"`
	AnalyzeImportance bool   `json:"analyze_importance"`
}

type analyzeResponse struct {
	Sentiment       *string  `json:"sentiment"`
	ImportanceScore *float64 `json:"importance_score"`
	Confidence      *float64 `json:"confidence"`
}

func (c *Client) Analyze(ctx context.Context, statement string) Result {
	if cached, ok := c.cache.Get(statement); ok {
		return cached
	}

	res, err := c.remote(ctx, statement)
	if err != nil {
		c.logger.WarnContext(ctx, "sentiment_fallback", "error", err.Error())
		return Fallback(statement)
	}
	c.cache.Add(statement, res)
	return res
}

func (c *Client) remote(ctx context.Context, statement string) (Result, error) {
	if c.cfg.Endpoint == "" {
		return Result{}, ErrNotConfigured
	}
	body, err := json.Marshal(analyzeRequest{Text: statement, AnalyzeImportance: true})
	if err != nil {
		return Result{}, fmt.Errorf("marshaling request: %w", err)
	}

	var out Result
	op := func() error {
		r, err := c.doRequest(ctx, body)
		if err != nil {
			return err
		}
		out = r
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(c.buildBackoff(), ctx)); err != nil {
		return Result{}, err
	}
	return out, nil
}

func (c *Client) doRequest(ctx context.Context, body []byte) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return Result{}, backoff.Permanent(statusErr)
		}
		return Result{}, statusErr
	}

	var parsed analyzeResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return Result{}, backoff.Permanent(fmt.Errorf("decoding response: %w", err))
	}
	return parsed.toResult(), nil
}

func (r analyzeResponse) toResult() Result {
	res := Result{Sentiment: domain.SentimentNeutral, Importance: 50, Confidence: 0.5}
	if r.Sentiment != nil && domain.ValidSentiments[domain.Sentiment(*r.Sentiment)] {
		res.Sentiment = domain.Sentiment(*r.Sentiment)
	}
	if r.ImportanceScore != nil && !math.IsNaN(*r.ImportanceScore) {
		res.Importance = importanceFromScore(*r.ImportanceScore)
	}
	if r.Confidence != nil {
		res.Confidence = *r.Confidence
	}
	return res
}

// importanceFromScore clamps before converting so out-of-range floats
// never reach the int conversion.
func importanceFromScore(score float64) int {
	return int(math.Round(math.Max(0, math.Min(100, score))))
}
