// Package tmdb fetches canonical movie metadata from The Movie Database.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Clark-Hu/movielog/internal/domain"
)

// ErrNotFound is returned when TMDB does not know the requested id.
var ErrNotFound = errors.New("tmdb: not found")

// StatusError reports an unexpected upstream status code.
type StatusError struct {
	TmdbID int
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb: upstream returned %d for movie %d", e.Status, e.TmdbID)
}

// Client defines the contract for looking up movie metadata.
type Client interface {
	FetchByID(ctx context.Context, tmdbID int) (*domain.Metadata, error)
}

// Options configures HTTPClient.
type Options struct {
	BaseURL  string
	Token    string
	Language string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// HTTPClient implements Client over the TMDB v3 REST API.
type HTTPClient struct {
	baseURL  *url.URL
	token    string
	defaults url.Values
	client   *http.Client
	logger   *zap.Logger
}

// NewHTTPClient constructs a client with bearer auth and default query
// parameters applied to every request.
func NewHTTPClient(opts Options) (*HTTPClient, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	parsed, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse tmdb url")
	}
	defaults := url.Values{}
	if opts.Language != "" {
		defaults.Set("language", opts.Language)
	}
	timeout := opts.Timeout
	return &HTTPClient{
		baseURL:  parsed,
		token:    opts.Token,
		defaults: defaults,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger.Named("tmdb"),
	}, nil
}

// FetchByID retrieves the details of one movie.
func (c *HTTPClient) FetchByID(ctx context.Context, tmdbID int) (*domain.Metadata, error) {
	endpoint := *c.baseURL
	endpoint.Path = c.baseURL.Path + "/movie/" + strconv.Itoa(tmdbID)
	endpoint.RawQuery = c.defaults.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch movie %d", tmdbID)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload movieDetails
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, errors.Wrap(err, "decode tmdb response")
		}
		return parseDetails(payload)
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		c.logger.Warn("unexpected status", zap.Int("status", resp.StatusCode), zap.Int("tmdbID", tmdbID))
		return nil, &StatusError{TmdbID: tmdbID, Status: resp.StatusCode}
	}
}

type genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// movieDetails is the subset of /movie/{id} this service stores.
type movieDetails struct {
	ID            int     `json:"id"`
	OriginalTitle string  `json:"original_title"`
	Title         string  `json:"title"`
	ReleaseDate   string  `json:"release_date"`
	Genres        []genre `json:"genres"`
	Runtime       *int    `json:"runtime"`
	PosterPath    *string `json:"poster_path"`
	Budget        int64   `json:"budget"`
	Revenue       int64   `json:"revenue"`
	Tagline       *string `json:"tagline"`
	Overview      *string `json:"overview"`
}

// parseDetails keeps empty optional values out of the metadata.
func parseDetails(p movieDetails) (*domain.Metadata, error) {
	md := &domain.Metadata{
		Title:   domain.Title{Original: p.OriginalTitle, German: nonEmpty(&p.Title)},
		Genres:  make([]string, 0, len(p.Genres)),
		Budget:  &p.Budget,
		Revenue: &p.Revenue,
	}
	if p.ReleaseDate != "" {
		released, err := domain.ParseDate(p.ReleaseDate)
		if err != nil {
			return nil, errors.Wrap(err, "parse release_date")
		}
		md.ReleaseDate = &released
	}
	for _, g := range p.Genres {
		md.Genres = append(md.Genres, g.Name)
	}
	if p.Runtime != nil && *p.Runtime != 0 {
		md.Runtime = p.Runtime
	}
	md.PosterURL = nonEmpty(p.PosterPath)
	md.Tagline = nonEmpty(p.Tagline)
	md.Overview = nonEmpty(p.Overview)
	return md, nil
}

func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	v := *s
	return &v
}
