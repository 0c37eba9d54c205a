package movies

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"cinebook/internal/shared/config"
)

// CatalogClient fetches title metadata from the upstream movie catalog.
type CatalogClient interface {
	FetchMovie(ctx context.Context, id string) (*Movie, error)
	FetchPopular(ctx context.Context) ([]Movie, error)
}

type catalogClient struct {
	baseURL      string
	imageBaseURL string
	apiKey       string
	httpClient   *http.Client
	now          func() time.Time
}

func NewCatalogClient(cfg *config.Config) CatalogClient {
	return &catalogClient{
		baseURL:      cfg.Catalog.BaseURL,
		imageBaseURL: cfg.Catalog.ImageBaseURL,
		apiKey:       cfg.Catalog.APIKey,
		httpClient:   &http.Client{Timeout: cfg.Catalog.Timeout},
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// Upstream wire shapes. Only the fields we persist are decoded.

type catalogGenre struct {
	Name string `json:"name"`
}

type catalogCastMember struct {
	Name string `json:"name"`
}

type catalogVideo struct {
	Key  string `json:"key"`
	Site string `json:"site"`
	Type string `json:"type"`
}

type catalogMovieResponse struct {
	ID           json.Number    `json:"id"`
	Title        string         `json:"title"`
	Overview     string         `json:"overview"`
	PosterPath   string         `json:"poster_path"`
	BackdropPath string         `json:"backdrop_path"`
	ReleaseDate  string         `json:"release_date"`
	Runtime      int            `json:"runtime"`
	Genres       []catalogGenre `json:"genres"`
	VoteAverage  float64        `json:"vote_average"`
	VoteCount    int            `json:"vote_count"`
	Popularity   float64        `json:"popularity"`
	Credits      struct {
		Cast []catalogCastMember `json:"cast"`
	} `json:"credits"`
	Videos struct {
		Results []catalogVideo `json:"results"`
	} `json:"videos"`
}

type catalogPopularResponse struct {
	Results []catalogMovieResponse `json:"results"`
}

func (c *catalogClient) FetchMovie(ctx context.Context, id string) (*Movie, error) {
	endpoint := fmt.Sprintf("%s/movie/%s", c.baseURL, url.PathEscape(id))
	query := url.Values{}
	query.Set("api_key", c.apiKey)
	query.Set("append_to_response", "credits,videos")

	var resp catalogMovieResponse
	if err := c.getJSON(ctx, endpoint, query, &resp); err != nil {
		return nil, err
	}

	movie := c.toMovie(&resp)
	return &movie, nil
}

func (c *catalogClient) FetchPopular(ctx context.Context) ([]Movie, error) {
	endpoint := c.baseURL + "/movie/popular"
	query := url.Values{}
	query.Set("api_key", c.apiKey)

	var resp catalogPopularResponse
	if err := c.getJSON(ctx, endpoint, query, &resp); err != nil {
		return nil, err
	}

	result := make([]Movie, 0, len(resp.Results))
	for i := range resp.Results {
		result = append(result, c.toMovie(&resp.Results[i]))
	}
	return result, nil
}

func (c *catalogClient) getJSON(ctx context.Context, endpoint string, query url.Values, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrMovieNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("%w: catalog returned status %d", ErrCatalogUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrCatalogUnavailable, err)
	}
	return nil
}

func (c *catalogClient) toMovie(resp *catalogMovieResponse) Movie {
	genres := make([]string, 0, len(resp.Genres))
	for _, g := range resp.Genres {
		genres = append(genres, g.Name)
	}

	// Top-billed cast only, the full list runs into the dozens.
	castLimit := 10
	if len(resp.Credits.Cast) < castLimit {
		castLimit = len(resp.Credits.Cast)
	}
	cast := make([]string, 0, castLimit)
	for _, member := range resp.Credits.Cast[:castLimit] {
		cast = append(cast, member.Name)
	}

	trailerURL := ""
	for _, video := range resp.Videos.Results {
		if video.Site == "YouTube" && video.Type == "Trailer" {
			trailerURL = "https://www.youtube.com/watch?v=" + video.Key
			break
		}
	}

	movie := Movie{
		ID:          resp.ID.String(),
		Title:       resp.Title,
		Overview:    resp.Overview,
		ReleaseDate: resp.ReleaseDate,
		Runtime:     resp.Runtime,
		Genres:      genres,
		Cast:        cast,
		TrailerURL:  trailerURL,
		Rating:      resp.VoteAverage,
		VoteCount:   resp.VoteCount,
		Popularity:  resp.Popularity,
		FetchedAt:   c.now(),
	}
	if resp.PosterPath != "" {
		movie.PosterURL = c.imageBaseURL + "/w500" + resp.PosterPath
	}
	if resp.BackdropPath != "" {
		movie.BackdropURL = c.imageBaseURL + "/w780" + resp.BackdropPath
	}
	return movie
}
