package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "dadoscraper/pkg/errors"
	"dadoscraper/pkg/logger"
)

// Client is an HTTP client for the dados.gov.br search API. A single
// Client is shared across a whole run so connections are reused.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	logger     logger.Logger
}

// NewClient creates a new catalog API client with a per-request timeout
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent": "dadoscraper/1.0 (+bulk catalog downloader)",
			"Accept":     "application/json",
		},
		baseURL: BaseURL,
		logger:  log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetBaseURL overrides the API base URL (used by tests)
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// doRequest performs a GET request with the configured headers
func (c *Client) doRequest(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("failed to create request: %v", err),
			Code:    0,
		}
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    req.URL.String(),
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"method":   req.Method,
			"url":      req.URL.String(),
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("network error: %v", err),
			Code:    0,
		}
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"method":   req.Method,
		"url":      req.URL.String(),
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// checkResponseStatus converts non-success HTTP statuses into typed errors
func (c *Client) checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		c.logger.WarnWithFields("resource not found", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeNotFound,
			Message: "resource not found",
			Code:    resp.StatusCode,
		}
	case resp.StatusCode == http.StatusTooManyRequests:
		c.logger.WarnWithFields("rate limit exceeded", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeRateLimit,
			Message: "rate limit exceeded",
			Code:    resp.StatusCode,
		}
	case errs.IsRetryableStatusCode(resp.StatusCode):
		c.logger.ErrorWithFields("server error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeServerError,
			Message: "server error",
			Code:    resp.StatusCode,
		}
	default:
		c.logger.ErrorWithFields("unexpected API error", map[string]interface{}{
			"status": resp.StatusCode,
			"url":    resp.Request.URL.String(),
		})
		return &errs.Error{
			Type:    errs.ErrorTypeUnknown,
			Message: fmt.Sprintf("unexpected status code: %d", resp.StatusCode),
			Code:    resp.StatusCode,
		}
	}
}

// TotalRecords probes a license partition for its declared total record
// count using a minimal-size query. A returned error means the count is
// unknown, which is distinct from a valid count of zero: callers must skip
// the partition without reserving any naming range for it.
//
// A single attempt, no retry: partitions are independent and re-runnable,
// so a transient probe failure just skips the partition for this run.
func (c *Client) TotalRecords(ctx context.Context, license string) (int, error) {
	url := ProbeURL(c.baseURL, license)

	c.logger.InfoWithFields("probing total record count", map[string]interface{}{
		"license": LicenseLabel(license),
	})

	resp, err := c.doRequest(ctx, url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return 0, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read response body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	var envelope SearchEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse search envelope", map[string]interface{}{
			"license":      LicenseLabel(license),
			"status":       resp.StatusCode,
			"error":        err.Error(),
			"body_preview": bodyPreview,
		})
		return 0, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("failed to parse JSON: %v", err),
			Code:    resp.StatusCode,
		}
	}

	if envelope.TotalRegistros == nil {
		return 0, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: "response envelope is missing totalRegistros",
			Code:    resp.StatusCode,
		}
	}

	total := *envelope.TotalRegistros
	if total < 0 {
		return 0, &errs.Error{
			Type:    errs.ErrorTypeParsing,
			Message: fmt.Sprintf("negative totalRegistros: %d", total),
			Code:    resp.StatusCode,
		}
	}

	c.logger.InfoWithFields("probed total record count", map[string]interface{}{
		"license": LicenseLabel(license),
		"total":   total,
	})

	return total, nil
}

// FetchPage fetches one page of a license partition and returns the raw
// response body verbatim. The body is not parsed; persisting the untouched
// envelope is the whole point of the scrape.
func (c *Client) FetchPage(ctx context.Context, offset, pageSize int, license string) ([]byte, error) {
	url := SearchURL(c.baseURL, offset, pageSize, license)

	resp, err := c.doRequest(ctx, url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkResponseStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &errs.Error{
			Type:    errs.ErrorTypeNetwork,
			Message: fmt.Sprintf("failed to read page body: %v", err),
			Code:    resp.StatusCode,
		}
	}

	c.logger.DebugWithFields("fetched page", map[string]interface{}{
		"license": LicenseLabel(license),
		"offset":  offset,
		"size":    len(body),
	})

	return body, nil
}
