package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"bizradar/models"
)

// Client resolves free-text locations against a Nominatim-compatible index.
type Client struct {
	baseURL   string
	userAgent string
	email     string
	http      *http.Client
	limiter   *rate.Limiter
	log       *slog.Logger
}

func NewClient(baseURL, userAgent, email string, log *slog.Logger) *Client {
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		email:     email,
		http:      &http.Client{Timeout: 15 * time.Second},
		// Nominatim's usage policy caps anonymous clients at one
		// request per second.
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
		log:     log,
	}
}

// Resolve returns the best-scoring coordinate for the location text, or
// (nil, nil) when the index has no candidates at all.
func (c *Client) Resolve(ctx context.Context, locationText string) (*models.Coordinate, error) {
	candidates, err := c.search(ctx, locationText)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		c.log.Warn("no geocoding candidates", "query", locationText)
		return nil, nil
	}

	idx, score := Best(locationText, candidates)
	chosen := candidates[idx]

	lat, err := strconv.ParseFloat(chosen.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse candidate latitude %q: %w", chosen.Lat, err)
	}
	lng, err := strconv.ParseFloat(chosen.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse candidate longitude %q: %w", chosen.Lon, err)
	}

	c.log.Info("resolved location",
		"query", locationText,
		"display_name", chosen.DisplayName,
		"score", score,
		"candidates", len(candidates))

	return &models.Coordinate{
		Lat:         lat,
		Lng:         lng,
		DisplayName: chosen.DisplayName,
		MatchScore:  score,
	}, nil
}

func (c *Client) search(ctx context.Context, query string) ([]Candidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "20")
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.email != "" {
		req.Header.Set("From", c.email)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocode request: status %d: %s", resp.StatusCode, body)
	}

	var candidates []Candidate
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	return candidates, nil
}
