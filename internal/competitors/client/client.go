// Package client provides the HTTP client for the ad-library intelligence API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"leadintel_backend/platform/logger"
)

// AdIntel is a snapshot of a competitor's advertising footprint.
type AdIntel struct {
	AdSpendEstimate float64 `json:"adSpendEstimate"`
	ActiveCreatives int     `json:"activeCreatives"`
}

// Client is the HTTP client for the ad-library API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	log        *logger.Logger
}

// New creates an ad-library client.
func New(baseURL, token string, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		token:      token,
		log:        log,
	}
}

// FetchAdIntel queries the ad library for one advertiser by name.
func (c *Client) FetchAdIntel(ctx context.Context, advertiser string) (AdIntel, error) {
	params := url.Values{}
	params.Set("advertiser", advertiser)
	reqURL := fmt.Sprintf("%s/v1/ads?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return AdIntel{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("ad-library request failed", "error", err, "advertiser", advertiser)
		return AdIntel{}, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		// Unknown advertiser, not an error
		return AdIntel{}, nil
	case http.StatusUnauthorized:
		return AdIntel{}, fmt.Errorf("unauthorized: invalid ad-library token")
	default:
		return AdIntel{}, fmt.Errorf("ad-library returned status %d", resp.StatusCode)
	}

	var intel AdIntel
	if err := json.NewDecoder(resp.Body).Decode(&intel); err != nil {
		return AdIntel{}, fmt.Errorf("decode response: %w", err)
	}
	return intel, nil
}
