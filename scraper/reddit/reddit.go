package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ottawa-housing/config"
	"ottawa-housing/models"
	"ottawa-housing/utils"
)

// maxPages bounds pagination in case the feed keeps handing out cursors.
const maxPages = 50

// defaultRetryAfter is used when a 429 carries no usable Retry-After header.
const defaultRetryAfter = 60 * time.Second

// ErrForbidden is returned when the feed rejects the request outright.
var ErrForbidden = errors.New("reddit: access forbidden")

// Client pages through a user's public submission feed.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	user          string
	userAgent     string
	limit         int
	maxRetryAfter time.Duration
	proxy         *url.URL
	probeURL      string

	pool   *utils.WorkerPool
	retry  *utils.RetryConfig
	logger *utils.Logger
}

// New creates a ready-to-use feed Client. Requests go through the configured
// proxy when one is set.
func New(cfg *config.Config, logger *utils.Logger) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	proxy := cfg.ProxyURL()
	if proxy != nil {
		transport.Proxy = http.ProxyURL(proxy)
	}

	limit := cfg.PageLimit
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	return &Client{
		httpClient:    &http.Client{Transport: transport, Timeout: 30 * time.Second},
		baseURL:       strings.TrimRight(cfg.RedditBaseURL, "/"),
		user:          cfg.RedditUser,
		userAgent:     cfg.UserAgent,
		limit:         limit,
		maxRetryAfter: cfg.MaxRetryAfter,
		proxy:         proxy,
		probeURL:      cfg.ProxyProbeURL,
		pool:          utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   5 * time.Second,
			Logger:      logger,
		},
		logger: logger,
	}
}

// WithBackoff overrides the base retry delay.
func (c *Client) WithBackoff(d time.Duration) *Client {
	c.retry.BaseDelay = d
	return c
}

type listing struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data submission `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type submission struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Subreddit  string  `json:"subreddit"`
	SelfText   string  `json:"selftext"`
	CreatedUTC float64 `json:"created_utc"`
}

// FetchPosts returns every submission of the configured user, following the
// pagination cursor until the feed is exhausted.
func (c *Client) FetchPosts(ctx context.Context) ([]*models.RawPost, error) {
	var (
		all   []*models.RawPost
		after string
		seen  = map[string]struct{}{}
	)

	for page := 1; page <= maxPages; page++ {
		c.logger.Info("[reddit] Fetching posts (batch of up to %d)", c.limit)
		if after != "" {
			c.logger.Debug("[reddit] Continuing from cursor: %s", after)
		}

		batch, next, err := c.fetchBatch(ctx, after)
		if err != nil {
			return all, err
		}
		all = append(all, batch...)
		c.logger.Info("[reddit] Fetched %d posts (total so far: %d)", len(batch), len(all))

		if next == "" {
			c.logger.Info("[reddit] Finished fetching all posts. Total: %d", len(all))
			return all, nil
		}
		if _, dup := seen[next]; dup {
			c.logger.Warn("[reddit] Cursor %s repeated, stopping", next)
			return all, nil
		}
		seen[next] = struct{}{}
		after = next
	}

	c.logger.Warn("[reddit] Stopped after %d pages", maxPages)
	return all, nil
}

func (c *Client) batchURL(after string) string {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.limit))
	if after != "" {
		q.Set("after", after)
	}
	return fmt.Sprintf("%s/user/%s/submitted.json?%s", c.baseURL, url.PathEscape(c.user), q.Encode())
}

func (c *Client) fetchBatch(ctx context.Context, after string) ([]*models.RawPost, string, error) {
	var (
		posts []*models.RawPost
		next  string
	)

	target := c.batchURL(after)
	err := c.retry.Do(ctx, "fetch-reddit-batch", func() error {
		c.pool.Throttle()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return utils.Permanent(fmt.Errorf("reddit: build request: %w", err))
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return utils.Permanent(ctx.Err())
			}
			return fmt.Errorf("reddit: request: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := c.retryAfter(resp.Header.Get("Retry-After"))
			c.logger.Warn("[reddit] Rate limited. Waiting %v before retry", wait)
			return &utils.WaitError{Wait: wait, Err: errors.New("reddit: rate limited")}
		case resp.StatusCode == http.StatusForbidden:
			return ErrForbidden
		case resp.StatusCode != http.StatusOK:
			// Any other failed status, proxy 4xx included, is retried.
			return fmt.Errorf("reddit: unexpected status: %s", resp.Status)
		}

		var body listing
		if err := json.NewDecoder(io.LimitReader(resp.Body, 32<<20)).Decode(&body); err != nil {
			return fmt.Errorf("reddit: decode: %w", err)
		}

		scraped := time.Now().UTC()
		posts = make([]*models.RawPost, 0, len(body.Data.Children))
		for _, child := range body.Data.Children {
			posts = append(posts, child.Data.toRawPost(scraped))
		}
		next = body.Data.After
		return nil
	})
	return posts, next, err
}

func (s submission) toRawPost(scraped time.Time) *models.RawPost {
	sec, frac := math.Modf(s.CreatedUTC)
	return &models.RawPost{
		ID:         s.ID,
		Title:      s.Title,
		Subreddit:  s.Subreddit,
		SelfText:   s.SelfText,
		CreatedUTC: time.Unix(int64(sec), int64(frac*1e9)).UTC(),
		ScrapedAt:  scraped,
	}
}

// retryAfter parses a Retry-After header given in seconds, falling back to
// a minute and never exceeding the configured cap.
func (c *Client) retryAfter(header string) time.Duration {
	wait := defaultRetryAfter
	if n, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && n >= 0 {
		wait = time.Duration(n) * time.Second
	}
	if c.maxRetryAfter > 0 && wait > c.maxRetryAfter {
		wait = c.maxRetryAfter
	}
	return wait
}

// VerifyProxy checks that the configured proxy can reach the probe URL. It is
// a no-op when no proxy is configured.
func (c *Client) VerifyProxy(ctx context.Context) error {
	if c.proxy == nil {
		return nil
	}
	c.logger.Info("[reddit] Testing proxy connection via %s", c.proxy.Host)

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.probeURL, nil)
	if err != nil {
		return fmt.Errorf("reddit: proxy probe request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reddit: proxy probe: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reddit: proxy probe failed with status %s", resp.Status)
	}

	var ip struct {
		Origin string `json:"origin"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ip); err == nil && ip.Origin != "" {
		c.logger.Info("[reddit] Proxy test successful, current IP: %s", ip.Origin)
	} else {
		c.logger.Info("[reddit] Proxy test successful")
	}
	return nil
}
