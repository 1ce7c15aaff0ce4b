// Package wikidata resolves free-text place names to coordinates using the
// wikidata.org entity search API and its SPARQL endpoint.
package wikidata

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
)

// Default endpoints on wikidata.org.
const (
	DefaultSearchURL = "https://www.wikidata.org/w/api.php"
	DefaultSPARQLURL = "https://query.wikidata.org/sparql"
)

// Wikimedia asks API clients to identify themselves.
const userAgent = "citytemp geolocator script (github.com/rtm0/citytemp)"

const maxBodyBytes = 10 << 20

// Candidate is one entity returned by the search API.
type Candidate struct {
	ID          string
	Label       string
	Description string
}

// Client is a Wikidata client capable of searching entities and fetching
// their coordinate property.
type Client struct {
	logger    *slog.Logger
	httpCli   *http.Client
	searchURL string
	sparqlURL string
}

// NewClient creates a new Wikidata client.
func NewClient(logger *slog.Logger, searchURL, sparqlURL string) (*Client, error) {
	for _, u := range []string{searchURL, sparqlURL} {
		if _, err := url.Parse(u); err != nil {
			return nil, err
		}
	}
	return &Client{
		logger:    logger,
		httpCli:   &http.Client{Timeout: 30 * time.Second},
		searchURL: searchURL,
		sparqlURL: sparqlURL,
	}, nil
}

// Search runs a wbsearchentities query and returns the candidate entities.
func (c *Client) Search(ctx context.Context, query string) ([]Candidate, error) {
	q := url.Values{}
	q.Set("action", "wbsearchentities")
	q.Set("search", query)
	q.Set("type", "item")
	q.Set("format", "json")
	q.Set("language", "en")

	body, err := c.get(ctx, c.searchURL, q, "application/json")
	if err != nil {
		return nil, err
	}

	var payload struct {
		Search []struct {
			ID          string `json:"id"`
			Label       string `json:"label"`
			Description string `json:"description"`
		} `json:"search"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	cands := make([]Candidate, len(payload.Search))
	for i, s := range payload.Search {
		cands[i] = Candidate{ID: s.ID, Label: s.Label, Description: s.Description}
	}
	c.logger.Info("Wikidata search", "query", query, "candidates", len(cands))
	return cands, nil
}

// The P625 coordinate property, split into its longitude and latitude parts.
const coordQuery = `SELECT ?lon ?lat WHERE {
  wd:%s p:P625 [
    psv:P625 [
      wikibase:geoLongitude ?lon;
      wikibase:geoLatitude  ?lat;
    ]
  ].
}`

// Coordinates fetches the coordinate property of an entity via SPARQL.
func (c *Client) Coordinates(ctx context.Context, entityID string) (lat, lon float64, err error) {
	q := url.Values{}
	q.Set("query", fmt.Sprintf(coordQuery, entityID))

	body, err := c.get(ctx, c.sparqlURL, q, "application/sparql-results+json")
	if err != nil {
		return 0, 0, err
	}

	// SPARQL JSON results carry all literals as strings.
	var payload struct {
		Results struct {
			Bindings []struct {
				Lon struct {
					Value string `json:"value"`
				} `json:"lon"`
				Lat struct {
					Value string `json:"value"`
				} `json:"lat"`
			} `json:"bindings"`
		} `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, 0, err
	}
	if len(payload.Results.Bindings) == 0 {
		return 0, 0, fmt.Errorf("entity %s has no coordinate property", entityID)
	}
	b := payload.Results.Bindings[0]
	if lat, err = strconv.ParseFloat(b.Lat.Value, 64); err != nil {
		return 0, 0, fmt.Errorf("entity %s: latitude %q: %w", entityID, b.Lat.Value, err)
	}
	if lon, err = strconv.ParseFloat(b.Lon.Value, 64); err != nil {
		return 0, 0, fmt.Errorf("entity %s: longitude %q: %w", entityID, b.Lon.Value, err)
	}
	return lat, lon, nil
}

func (c *Client) get(ctx context.Context, rawURL string, q url.Values, accept string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", userAgent)

	res, err := c.httpCli.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return nil, fmt.Errorf("status %d body: %s", res.StatusCode, b)
	}
	return io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
}
