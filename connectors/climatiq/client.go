// Package climatiq is a thin connector for the Climatiq cloud computing
// estimation API. It submits accumulated batches one request body at a time
// and collects the raw per-item results.
package climatiq

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"cloud-carbon/domain/emissions"
)

// DefaultBaseURL is the versioned estimation endpoint root.
const DefaultBaseURL = "https://api.climatiq.io/data/v1/estimate"

const defaultTimeout = 15 * time.Second

// Client handles Climatiq estimation API requests.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new estimation API client. An empty baseURL falls back
// to DefaultBaseURL; a zero timeout falls back to 15 seconds.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SendBatch posts one provider's pending batch, one request per body, against
// {base}/{provider}/{endpoint}.
//
// Without a credential it fails immediately and makes no network call. An
// item that draws an HTTP error response (403 or otherwise) is skipped and
// the batch continues; a connectivity-level or unclassified failure aborts
// the whole batch and yields no results. Item errors are joined and returned
// next to whatever results were collected.
func (c *Client) SendBatch(ctx context.Context, provider emissions.ProviderID, kind emissions.ResourceKind, bodies []emissions.RequestBody) ([]emissions.Result, error) {
	if c.apiKey == "" {
		return nil, emissions.ErrMissingCredential
	}
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, provider, kind.Endpoint())
	results := make([]emissions.Result, 0, len(bodies))
	var itemErrs []error
	for _, body := range bodies {
		res, err := c.post(ctx, url, provider, body)
		if err != nil {
			var permErr *emissions.PermissionError
			var httpErr *emissions.HTTPError
			if errors.As(err, &permErr) || errors.As(err, &httpErr) {
				slog.Warn("climatiq.item.skipped", "provider", provider, "kind", kind, "error", err)
				itemErrs = append(itemErrs, err)
				continue
			}
			slog.Error("climatiq.batch.aborted", "provider", provider, "kind", kind, "error", err)
			return []emissions.Result{}, err
		}
		results = append(results, res)
	}
	return results, errors.Join(itemErrs...)
}

func (c *Client) post(ctx context.Context, url string, provider emissions.ProviderID, body emissions.RequestBody) (emissions.Result, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &emissions.ConnectivityError{Provider: provider, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusForbidden {
		return nil, &emissions.PermissionError{Provider: provider}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &emissions.HTTPError{Provider: provider, Status: resp.StatusCode}
	}

	var result emissions.Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result, nil
}
