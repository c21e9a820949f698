package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"subscription-manager/internal/common/errors"
	"subscription-manager/internal/common/logger"
	"subscription-manager/internal/common/metrics"
	"subscription-manager/internal/subscription"

	"github.com/google/uuid"
)

// Client talks to the customer record store over HTTP. Records live at
// {baseURL}/{customerID}/ and are wrapped in a {"data": ...} envelope.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger
}

type envelope struct {
	Data *subscription.CustomerRecord `json:"data"`
}

func NewClient(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log.WithFields(map[string]interface{}{"component": "recordstore"}),
	}
}

// Fetch reads the record for customerID.
func (c *Client) Fetch(ctx context.Context, customerID string) (int, *subscription.CustomerRecord, error) {
	return c.do(ctx, http.MethodGet, customerID, nil)
}

// Write replaces the record for customerID and returns the record the store echoes back.
func (c *Client) Write(ctx context.Context, customerID string, record *subscription.CustomerRecord) (int, *subscription.CustomerRecord, error) {
	body, err := json.Marshal(envelope{Data: record})
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	return c.do(ctx, http.MethodPut, customerID, body)
}

func (c *Client) customerURL(customerID string) string {
	return fmt.Sprintf("%s/%s/", c.baseURL, url.PathEscape(customerID))
}

func (c *Client) do(ctx context.Context, method, customerID string, body []byte) (int, *subscription.CustomerRecord, error) {
	target := c.customerURL(customerID)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordStoreRequestDuration.WithLabelValues(method, "error").Observe(time.Since(start).Seconds())
		return 0, nil, errors.NewRecordStoreUnreachableError(target, err)
	}
	defer resp.Body.Close()
	metrics.RecordStoreRequestDuration.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	c.logger.Debug("record store responded", map[string]interface{}{
		"method":     method,
		"url":        target,
		"status":     resp.StatusCode,
		"requestId":  requestID,
		"durationMs": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, nil, nil
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, errors.NewRecordStoreUnreachableError(target, fmt.Errorf("failed to read response body: %w", err))
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return resp.StatusCode, nil, nil
	}

	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return 0, nil, errors.NewRecordStoreBadResponseError(target, resp.StatusCode, err)
	}
	return resp.StatusCode, env.Data, nil
}
