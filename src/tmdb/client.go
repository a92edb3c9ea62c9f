// Package tmdb is a small client for the TMDB v3 movie API. It covers the
// four endpoints the movie tools need: text search, the genre catalog,
// genre discovery, and lookup by id.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/elee1766/moviefinder/src/httpkit"
)

const (
	DefaultBaseURL = "https://api.themoviedb.org/3"
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 4096
)

// ErrNotFound is returned when TMDB answers 404 for a resource.
var ErrNotFound = errors.New("tmdb: resource not found")

// ErrNoAPIKey is returned by New when no API key is configured.
var ErrNoAPIKey = errors.New("tmdb: API key is required")

// APIError is a non-2xx answer from TMDB other than 404.
type APIError struct {
	StatusCode    int
	StatusMessage string
	Endpoint      string
}

func (e *APIError) Error() string {
	if e.StatusMessage != "" {
		return fmt.Sprintf("tmdb: %s returned %d: %s", e.Endpoint, e.StatusCode, e.StatusMessage)
	}
	return fmt.Sprintf("tmdb: %s returned %d", e.Endpoint, e.StatusCode)
}

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Logger  *slog.Logger

	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Movie is the subset of TMDB's movie object the tools render.
type Movie struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Overview    string  `json:"overview"`
	Popularity  float64 `json:"popularity"`
}

// Genre is one entry of the movie genre catalog.
type Genre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type pagedMovies struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalResults int     `json:"total_results"`
}

type genreList struct {
	Genres []Genre `json:"genres"`
}

type statusBody struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
}

// Client talks to TMDB. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// New builds a Client from cfg.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = httpkit.NewClient(httpkit.WithTimeout(cfg.Timeout))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    httpClient,
		logger:  logger.With("component", "tmdb"),
	}, nil
}

// SearchMovies runs a free-text title search.
func (c *Client) SearchMovies(ctx context.Context, query string) ([]Movie, error) {
	var out pagedMovies
	if err := c.get(ctx, "/search/movie", url.Values{"query": {query}}, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// Genres returns the movie genre catalog.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	var out genreList
	if err := c.get(ctx, "/genre/movie/list", nil, &out); err != nil {
		return nil, err
	}
	return out.Genres, nil
}

// DiscoverByGenre lists movies tagged with the genre, most popular first.
func (c *Client) DiscoverByGenre(ctx context.Context, genreID int64) ([]Movie, error) {
	params := url.Values{
		"with_genres": {strconv.FormatInt(genreID, 10)},
		"sort_by":     {"popularity.desc"},
	}
	var out pagedMovies
	if err := c.get(ctx, "/discover/movie", params, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// MovieDetails fetches one movie. A missing movie yields ErrNotFound.
func (c *Client) MovieDetails(ctx context.Context, id int64) (*Movie, error) {
	var out Movie
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Close releases pooled connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("tmdb: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "endpoint", endpoint, "error", err)
		return fmt.Errorf("tmdb: %s: %w", endpoint, err)
	}
	c.logger.Debug("request complete",
		"endpoint", endpoint,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode == http.StatusNotFound {
		httpkit.DrainAndClose(resp.Body, maxErrorBody)
		return fmt.Errorf("%s: %w", endpoint, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := httpkit.ReadErrorBody(resp.Body, maxErrorBody)
		apiErr := &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint}
		var sb statusBody
		if json.Unmarshal([]byte(body), &sb) == nil && sb.StatusMessage != "" {
			apiErr.StatusMessage = sb.StatusMessage
		} else {
			apiErr.StatusMessage = strings.TrimSpace(body)
		}
		return apiErr
	}
	defer httpkit.DrainAndClose(resp.Body, maxErrorBody)

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tmdb: decode %s: %w", endpoint, err)
	}
	return nil
}
