// Package places provides the map-provider client used to enrich listings
// with nearby points of interest.
package places

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

	"github.com/propertyconnect/engine/pkg/config"
)

// DefaultTimeout is the maximum time to wait for the map provider.
const DefaultTimeout = 15 * time.Second

// searchRadiusMeters bounds the nearby search around a listing.
const searchRadiusMeters = 2000

// Place is a single nearby point of interest.
type Place struct {
	Name     string  `json:"name"`
	Vicinity string  `json:"vicinity,omitempty"`
	Rating   float64 `json:"rating,omitempty"`
}

// Insights is the enrichment payload stored on a listing.
type Insights struct {
	Schools     []Place   `json:"schools,omitempty"`
	Restaurants []Place   `json:"restaurants,omitempty"`
	Transit     []Place   `json:"transit,omitempty"`
	FetchedAt   time.Time `json:"fetchedAt"`
}

// Client provides access to the map provider's places API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new places client. Returns nil when no API key is
// configured; callers treat a nil client as enrichment disabled.
func NewClient(cfg *config.PlacesConfig, logger *zap.Logger) *Client {
	if cfg.APIKey == "" {
		return nil
	}
	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: logger.Named("places"),
	}
}

// LocalInsights fetches nearby schools, restaurants and transit stops around
// the given coordinates.
func (c *Client) LocalInsights(ctx context.Context, lat, lng float64) (*Insights, error) {
	insights := &Insights{FetchedAt: time.Now().UTC()}

	var err error
	if insights.Schools, err = c.nearby(ctx, lat, lng, "school"); err != nil {
		return nil, err
	}
	if insights.Restaurants, err = c.nearby(ctx, lat, lng, "restaurant"); err != nil {
		return nil, err
	}
	if insights.Transit, err = c.nearby(ctx, lat, lng, "transit_station"); err != nil {
		return nil, err
	}

	return insights, nil
}

// nearbyResponse mirrors the provider's nearby search payload.
type nearbyResponse struct {
	Status  string  `json:"status"`
	Results []Place `json:"results"`
}

func (c *Client) nearby(ctx context.Context, lat, lng float64, placeType string) ([]Place, error) {
	endpoint := fmt.Sprintf("%s/place/nearbysearch/json?%s", c.baseURL, url.Values{
		"location": {fmt.Sprintf("%f,%f", lat, lng)},
		"radius":   {fmt.Sprintf("%d", searchRadiusMeters)},
		"type":     {placeType},
		"key":      {c.apiKey},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create places request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call places API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("places API returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read places response: %w", err)
	}

	var parsed nearbyResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode places response: %w", err)
	}
	if parsed.Status != "OK" && parsed.Status != "ZERO_RESULTS" {
		return nil, fmt.Errorf("places API returned status %q", parsed.Status)
	}

	// Cap each category so the stored payload stays small.
	if len(parsed.Results) > 5 {
		parsed.Results = parsed.Results[:5]
	}
	c.logger.Debug("nearby search completed",
		zap.String("type", placeType),
		zap.Int("results", len(parsed.Results)))
	return parsed.Results, nil
}
