// Package source fetches pre-aggregated sales reports from the POS back-office API.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/odyssey-erp/salesboard/internal/salesreport"
)

const reportPath = "/reports/sales"

var (
	ErrMissingBaseURL = errors.New("source: pos api url is required")
	ErrUnauthorized   = errors.New("source: pos api unauthorized")
)

// APIError carries a non-2xx upstream response.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("pos api error: %s", e.Status)
	}
	return fmt.Sprintf("pos api error: %s: %s", e.Status, e.Body)
}

// Config configures the upstream client.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	RetryCount int
}

// Client implements salesreport.Source over HTTP.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// NewClient builds the client. Retries cover transport errors and 429s.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, ErrMissingBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RetryCount < 0 {
		cfg.RetryCount = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp != nil && resp.StatusCode() == http.StatusTooManyRequests
		})
	if cfg.Token != "" {
		httpClient.SetAuthScheme("Bearer")
		httpClient.SetAuthToken(cfg.Token)
	}
	return &Client{http: httpClient, logger: logger.With(slog.String("component", "pos_source"))}, nil
}

// FetchReport requests the report for filter.
func (c *Client) FetchReport(ctx context.Context, filter salesreport.Filter) (salesreport.Report, error) {
	query := map[string]string{
		"startDate": filter.From.Format(salesreport.DateLayout),
		"endDate":   filter.To.Format(salesreport.DateLayout),
	}
	if filter.OrderType != "" {
		query["orderType"] = filter.OrderType
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(reportPath)
	if err != nil {
		return salesreport.Report{}, fmt.Errorf("source: request report: %w", err)
	}
	c.logger.Debug("pos report response",
		slog.Int("status", resp.StatusCode()),
		slog.Duration("duration", time.Since(start)),
	)
	if resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden {
		return salesreport.Report{}, ErrUnauthorized
	}
	if resp.IsError() {
		return salesreport.Report{}, &APIError{
			StatusCode: resp.StatusCode(),
			Status:     resp.Status(),
			Body:       strings.TrimSpace(string(resp.Body())),
		}
	}
	return decodeReport(resp.Body())
}

// decodeReport accepts either a {"data": report} envelope or a bare report.
func decodeReport(body []byte) (salesreport.Report, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return salesreport.Report{}, fmt.Errorf("source: decode report: %w", err)
	}
	payload := body
	if data := bytes.TrimSpace(envelope.Data); len(data) > 0 && !bytes.Equal(data, []byte("null")) {
		payload = data
	}
	var report salesreport.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return salesreport.Report{}, fmt.Errorf("source: decode report: %w", err)
	}
	return report, nil
}
