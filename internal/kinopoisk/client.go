// Package kinopoisk is the client for the remote movie-catalog search API.
//
// It distinguishes two failure modes the rest of the bot treats differently:
// ErrUnavailable for connectivity problems (no decodable payload at all) and
// ServerError for an explicit error payload carrying a status code and
// message. Both surface to the user as "try later", but they are logged and
// counted under different classifications.
package kinopoisk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/ndorokhov/go-movie-bot/internal/filters"
)

// PageLimit is the page size requested from the remote service.
const PageLimit = 15

// DefaultTimeout bounds every remote call.
const DefaultTimeout = 10 * time.Second

// ErrUnavailable reports a connectivity failure: the service did not answer
// with a decodable payload. No store writes may follow it.
var ErrUnavailable = errors.New("kinopoisk: service unavailable")

// ServerError is an explicit error payload returned by the service.
type ServerError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("kinopoisk: server error %d: %s", e.StatusCode, e.Message)
}

// selectFields is the fixed projection requested for every search.
var selectFields = []string{
	"id", "name", "alternativeName", "type", "year", "rating", "ageRating",
	"genres", "countries", "shortDescription", "description", "isSeries",
	"poster",
}

// Doc is one catalog item as the service returns it.
type Doc struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	AlternativeName  string   `json:"alternativeName"`
	Type             string   `json:"type"`
	Year             int      `json:"year"`
	ShortDescription string   `json:"shortDescription"`
	Description      string   `json:"description"`
	AgeRating        int      `json:"ageRating"`
	IsSeries         bool     `json:"isSeries"`
	Rating           Rating   `json:"rating"`
	Poster           Poster   `json:"poster"`
	Genres           []Named  `json:"genres"`
	Countries        []Named  `json:"countries"`
}

// Rating carries the service's per-source ratings; only the primary one is
// used.
type Rating struct {
	KP float64 `json:"kp"`
}

// Poster carries the poster image references.
type Poster struct {
	URL        string `json:"url"`
	PreviewURL string `json:"previewUrl"`
}

// Named is the {"name": ...} wrapper the service uses for genre and country
// lists.
type Named struct {
	Name string `json:"name"`
}

// Page is one page of search results. Pages is the total page count for the
// query, not the remaining count.
type Page struct {
	Docs  []Doc `json:"docs"`
	Pages int   `json:"pages"`
}

// Config configures a Client.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration // DefaultTimeout when zero
	RPS     float64       // outbound request budget; unlimited when zero
}

// Client talks to the movie-catalog search API.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// New returns a ready Client.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		limiter: limiter,
	}
}

// SearchByTitle runs a free-text title search for one page.
func (c *Client) SearchByTitle(ctx context.Context, query string, page int) (Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(PageLimit))
	params.Set("query", query)
	return c.get(ctx, "/v1.4/movie/search", params)
}

// SearchByFilters runs a filter search for one page.
func (c *Client) SearchByFilters(ctx context.Context, q filters.RemoteQuery, page int) (Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(PageLimit))
	for _, f := range selectFields {
		params.Add("selectFields", f)
	}
	params.Set("sortField", q.SortField)
	params.Set("sortType", q.SortType)
	for _, t := range q.Types {
		params.Add("type", t)
	}
	for _, g := range q.Genres {
		params.Add("genres.name", g)
	}
	for _, cn := range q.Countries {
		params.Add("countries.name", cn)
	}
	if q.Year != "" {
		params.Set("year", q.Year)
	}
	params.Set("rating.kp", q.Rating)
	return c.get(ctx, "/v1.4/movie", params)
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (Page, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return Page{}, fmt.Errorf("kinopoisk: rate wait: %w", err)
		}
	}

	u := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Page{}, fmt.Errorf("kinopoisk: build request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		observeRequest(path, "connectivity", time.Since(start))
		log.Warn().Err(err).Str("classification", "connectivity").Str("path", path).Msg("remote search unreachable")
		return Page{}, ErrUnavailable
	}
	defer resp.Body.Close()

	// Success and error bodies share one decode target: the service signals
	// an error by a non-zero statusCode, never by transport status alone.
	var raw struct {
		Docs       []Doc  `json:"docs"`
		Pages      int    `json:"pages"`
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		observeRequest(path, "connectivity", time.Since(start))
		log.Warn().Err(err).Str("classification", "connectivity").Str("path", path).Msg("remote search returned undecodable payload")
		return Page{}, ErrUnavailable
	}
	if raw.StatusCode != 0 {
		observeRequest(path, "server_error", time.Since(start))
		return Page{}, &ServerError{StatusCode: raw.StatusCode, Message: raw.Message}
	}
	observeRequest(path, "ok", time.Since(start))
	return Page{Docs: raw.Docs, Pages: raw.Pages}, nil
}
