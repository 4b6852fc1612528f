package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tizendotnet/netcore-jenkins/internal/models"
)

const (
	headerAPIKey        = "X-NuGet-ApiKey"
	maxResponseBodySize = 4096
	maxSummaryLength    = 500
)

// DeleteResult represents the result of a package delete request
type DeleteResult struct {
	HTTPStatus      int
	LatencyMs       int
	ResponseSummary string
}

// Client talks to the MyGet feed API with a feed API key
type Client struct {
	feedURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a feed client; a nil httpClient gets a 30s timeout client
func NewClient(feedURL, apiKey string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		feedURL:    strings.TrimRight(feedURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
		logger:     logger,
	}
}

// FeedState fetches the package/version listing of the feed
func (c *Client) FeedState(ctx context.Context) (*models.FeedState, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.feedURL+"/api/v2/feed-state")
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed-state request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxSummaryLength))
		return nil, fmt.Errorf("feed-state request returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var state models.FeedState
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode feed state: %w", err)
	}

	c.logger.Debug("Fetched feed state",
		zap.String("feed_url", c.feedURL),
		zap.Int("package_count", len(state.Packages)),
	)

	return &state, nil
}

// DeletePackage hard-deletes one package version. A non-2xx answer is
// reported through the result, not as an error.
func (c *Client) DeletePackage(ctx context.Context, packageID, version string) (*DeleteResult, error) {
	endpoint := fmt.Sprintf("%s/api/v2/package/%s/%s?hardDelete=true",
		c.feedURL, url.PathEscape(packageID), url.PathEscape(version))

	req, err := c.newRequest(ctx, http.MethodDelete, endpoint)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("delete request failed: %w", err)
	}
	defer resp.Body.Close()

	result := &DeleteResult{
		HTTPStatus: resp.StatusCode,
		LatencyMs:  int(time.Since(startTime).Milliseconds()),
	}

	// Read response body (limited to maxResponseBodySize)
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if readErr != nil {
		c.logger.Warn("Failed to read response body",
			zap.Error(readErr),
			zap.String("url", endpoint),
		)
	}
	if len(body) > 0 {
		summary := string(body)
		if len(summary) > maxSummaryLength {
			summary = summary[:maxSummaryLength] + "..."
		}
		result.ResponseSummary = summary
	}

	return result, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set(headerAPIKey, c.apiKey)
	return req, nil
}
