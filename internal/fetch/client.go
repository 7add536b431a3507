package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jonesrussell/north-cloud/project-ingestor/internal/adapter"
	"github.com/jonesrussell/north-cloud/project-ingestor/internal/logger"
)

// Client pulls datasets from the upstream APIs. Failed requests are retried
// a fixed number of times with a fixed delay between attempts; the upstream
// rate limiters respond better to a steady cadence than to bursts.
type Client struct {
	httpClient *http.Client
	logger     logger.Logger
	retries    int
	retryDelay time.Duration
}

// NewClient builds a fetch client. retries is the number of attempts after
// the first; zero means fail fast.
func NewClient(log logger.Logger, timeout time.Duration, retries int, retryDelay time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		logger:     log,
		retries:    retries,
		retryDelay: retryDelay,
	}
}

// Get fetches a URL, retrying transport errors and 5xx responses. Non-5xx
// HTTP errors are terminal; retrying a 404 never helps.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("Retrying fetch",
				logger.String("url", url),
				logger.Int("attempt", attempt),
				logger.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay):
			}
		}

		body, retryable, err := c.getOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("fetch %s: %w", url, lastErr)
}

func (c *Client) getOnce(ctx context.Context, url string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, true, fmt.Errorf("upstream returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}
	return body, false, nil
}

// GetRecords fetches a URL and decodes the response with the same shape
// handling as the file readers.
func (c *Client) GetRecords(ctx context.Context, url string) ([]adapter.RawRecord, error) {
	body, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	records, err := DecodeJSONRecords(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return records, nil
}

// GetPaginated walks an offset-paginated endpoint until a page comes back
// short. buildURL receives the next offset; pageSize is the expected page
// length.
func (c *Client) GetPaginated(ctx context.Context, buildURL func(offset int) string, pageSize int) ([]adapter.RawRecord, error) {
	var all []adapter.RawRecord

	for offset := 0; ; offset += pageSize {
		page, err := c.GetRecords(ctx, buildURL(offset))
		if err != nil {
			return nil, err
		}
		all = append(all, page...)

		c.logger.Debug("Fetched page",
			logger.Int("offset", offset),
			logger.Int("records", len(page)),
		)

		if len(page) < pageSize {
			return all, nil
		}
	}
}
