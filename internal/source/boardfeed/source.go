// Package boardfeed queries the external job listings search API. The feed is
// treated as untrusted: it may return fewer results than asked for, drift its
// schema, or fail transiently, and callers scope any error to one harvest.
package boardfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"jobherald/internal/domain"
)

type Config struct {
	BaseURL        string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Client is an HTTP client for the listings search endpoint.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        cfg.BaseURL,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("source", "boardfeed"),
	}
}

// SearchPostings runs one bounded query and returns the postings in feed
// order. Rows without a provider identity are dropped: identity is the
// dedup key and a posting without one can never be marked seen.
func (c *Client) SearchPostings(ctx context.Context, q domain.SearchQuery) ([]domain.Posting, error) {
	params := url.Values{}
	params.Set("search_term", q.Term)
	params.Set("location", q.Location)
	params.Set("results_wanted", strconv.Itoa(q.ResultCap))
	if q.RecencyWindowHours > 0 {
		params.Set("hours_old", strconv.Itoa(q.RecencyWindowHours))
	}
	if q.CompanyID != "" {
		params.Set("company_id", q.CompanyID)
	}

	reqURL := c.baseURL + "?" + params.Encode()

	var resp *searchResponse
	var err error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err = c.doRequest(ctx, reqURL)
		if err == nil {
			return c.transform(resp.Jobs), nil
		}

		if attempt == c.maxAttempts {
			break
		}

		backoff := c.calculateBackoff(attempt)
		c.logger.Warn("search request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", c.maxAttempts, err)
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (*searchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "JobHerald/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var searchResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &searchResp, nil
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > c.maxBackoff {
		backoff = c.maxBackoff
	}
	return backoff
}

func (c *Client) transform(jobs []jobResult) []domain.Posting {
	postings := make([]domain.Posting, 0, len(jobs))

	for _, j := range jobs {
		if j.ID == "" {
			c.logger.Warn("dropping posting without identity", "title", j.Title)
			continue
		}

		postings = append(postings, domain.Posting{
			Identity:       j.ID,
			Title:          j.Title,
			Company:        j.Company,
			CompanyURL:     j.CompanyURL,
			ApplicationURL: j.JobURL,
			Location:       j.Location,
			Description:    j.Description,
		})
	}

	return postings
}
