// Package catalog resolves artist/title pairs to catalog track ids through
// the iTunes Search API of a regional storefront.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/llehouerou/lastmix/internal/config"
)

var (
	// ErrNotFound is returned when no candidate is close enough.
	ErrNotFound = errors.New("no catalog match")
	// ErrEmptyQuery is returned for an empty artist or title.
	ErrEmptyQuery = errors.New("empty catalog query")
)

const (
	userAgent = "lastmix/0.1 (https://github.com/llehouerou/lastmix)"

	// Retry configuration
	maxRetries   = 2
	initialDelay = 500 * time.Millisecond
	maxDelay     = 5 * time.Second
)

// Song is one catalog search result.
type Song struct {
	ID     string
	Artist string
	Title  string
	Album  string
	URL    string
}

// Client searches the catalog with request pacing and coalesces identical
// concurrent lookups.
type Client struct {
	httpClient *http.Client
	baseURL    string
	storefront string
	threshold  float64
	limit      int
	limiter    *rate.Limiter
	group      singleflight.Group
	retryDelay time.Duration
	logger     zerolog.Logger
}

// New creates a catalog client from cfg, with defaults applied.
func New(cfg config.CatalogConfig, logger zerolog.Logger) *Client {
	cfg = (&config.Config{Catalog: cfg}).GetCatalogConfig()
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    cfg.BaseURL,
		storefront: cfg.Storefront,
		threshold:  cfg.MatchThreshold,
		limit:      cfg.SearchLimit,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		retryDelay: initialDelay,
		logger:     logger.With().Str("component", "catalog").Logger(),
	}
}

// searchResponse is the iTunes Search API payload.
type searchResponse struct {
	ResultCount int            `json:"resultCount"`
	Results     []searchResult `json:"results"`
}

type searchResult struct {
	WrapperType    string `json:"wrapperType"`
	Kind           string `json:"kind"`
	TrackID        int64  `json:"trackId"`
	ArtistName     string `json:"artistName"`
	TrackName      string `json:"trackName"`
	CollectionName string `json:"collectionName"`
	TrackViewURL   string `json:"trackViewUrl"`
}

// Search returns the songs matching term in the storefront.
func (c *Client) Search(ctx context.Context, term string) ([]Song, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("term", term)
	params.Set("country", c.storefront)
	params.Set("media", "music")
	params.Set("entity", "song")
	params.Set("limit", strconv.Itoa(c.limit))

	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	resp, err := c.doRequestWithRetry(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("API status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	songs := make([]Song, 0, len(result.Results))
	for _, r := range result.Results {
		if r.Kind != "song" || r.TrackID == 0 {
			continue
		}
		songs = append(songs, Song{
			ID:     strconv.FormatInt(r.TrackID, 10),
			Artist: r.ArtistName,
			Title:  r.TrackName,
			Album:  r.CollectionName,
			URL:    r.TrackViewURL,
		})
	}
	return songs, nil
}

func (c *Client) doRequestWithRetry(ctx context.Context, reqURL string) (*http.Response, error) {
	var lastErr error
	delay := c.retryDelay

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = min(delay*2, maxDelay)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		// Success or client error (4xx) - don't retry
		if resp.StatusCode < 500 {
			return resp, nil
		}

		// Server error (5xx) - retry
		resp.Body.Close()
		lastErr = fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	return nil, fmt.Errorf("request failed after %d retries: %w", maxRetries+1, lastErr)
}
