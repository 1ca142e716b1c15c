package occurrence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/calluna-data/habimap/internal/monitoring"
)

// Common errors for the occurrence client.
var (
	ErrNoRecords = errors.New("occurrence API returned no usable records")
)

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client pages through the GBIF occurrence search API. It only sequences
// requests and decodes responses; a failed page aborts the download.
type Client struct {
	client    HTTPClient
	baseURL   string
	userAgent string
	pageSize  int
}

// searchResponse is the subset of the GBIF occurrence search payload the
// pipeline consumes.
type searchResponse struct {
	Offset       int  `json:"offset"`
	Limit        int  `json:"limit"`
	EndOfRecords bool `json:"endOfRecords"`
	Count        int  `json:"count"`
	Results      []struct {
		Key              int64   `json:"key"`
		Species          string  `json:"species"`
		DecimalLongitude float64 `json:"decimalLongitude"`
		DecimalLatitude  float64 `json:"decimalLatitude"`
		Year             int     `json:"year"`
		BasisOfRecord    string  `json:"basisOfRecord"`
		HasCoordinate    bool    `json:"hasCoordinate"`
	} `json:"results"`
}

const (
	defaultBaseURL    = "https://api.gbif.org/v1/occurrence/search"
	defaultPageSize   = 300 // GBIF caps limit at 300
	defaultMaxRecords = 10000
)

// NewClient creates an occurrence client against the public GBIF API.
func NewClient() *Client {
	return &Client{
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   defaultBaseURL,
		userAgent: "habimap/1.0 (github.com/calluna-data/habimap)",
		pageSize:  defaultPageSize,
	}
}

// NewClientWith creates a client with a custom HTTP client and base URL.
// Useful for tests with mocked transports.
func NewClientWith(client HTTPClient, baseURL string) *Client {
	c := NewClient()
	c.client = client
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

// Fetch downloads all occurrence records matching the query, paging until the
// API reports the end of records or the record cap is hit. Records without
// coordinates or outside the bounding box are dropped.
func (c *Client) Fetch(ctx context.Context, q Query) ([]Record, error) {
	if q.ScientificName == "" {
		return nil, fmt.Errorf("fetch: scientific name is required")
	}
	if err := q.Box.Validate(); err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	maxRecords := q.MaxRecords
	if maxRecords <= 0 {
		maxRecords = defaultMaxRecords
	}

	var records []Record
	for offset := 0; ; {
		page, err := c.fetchPage(ctx, q, offset)
		if err != nil {
			return nil, err
		}
		for _, r := range page.Results {
			if !r.HasCoordinate {
				continue
			}
			if !q.Box.Contains(r.DecimalLongitude, r.DecimalLatitude) {
				continue
			}
			records = append(records, Record{
				Key:           r.Key,
				Species:       r.Species,
				Lon:           r.DecimalLongitude,
				Lat:           r.DecimalLatitude,
				Year:          r.Year,
				BasisOfRecord: r.BasisOfRecord,
			})
		}
		monitoring.Logf("fetch: offset %d, %d records so far (count %d)", offset, len(records), page.Count)

		if page.EndOfRecords || len(records) >= maxRecords {
			break
		}
		got := len(page.Results)
		if got == 0 {
			break
		}
		offset += got
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	if len(records) > maxRecords {
		records = records[:maxRecords]
	}
	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, q Query, offset int) (*searchResponse, error) {
	params := url.Values{}
	params.Set("scientificName", q.ScientificName)
	params.Set("hasCoordinate", "true")
	params.Set("decimalLongitude", fmt.Sprintf("%g,%g", q.Box.MinLon, q.Box.MaxLon))
	params.Set("decimalLatitude", fmt.Sprintf("%g,%g", q.Box.MinLat, q.Box.MaxLat))
	params.Set("limit", strconv.Itoa(c.pageSize))
	params.Set("offset", strconv.Itoa(offset))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page at offset %d: %w", offset, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch page at offset %d: status %d: %s", offset, resp.StatusCode, body)
	}

	var page searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("fetch page at offset %d: decode: %w", offset, err)
	}
	return &page, nil
}
