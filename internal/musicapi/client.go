package musicapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"innario/internal/fileutil"
)

// DefaultBaseURL is the church music library endpoint serving hymn metadata.
const DefaultBaseURL = "https://www.churchofjesuschrist.org/media/music/api"

const (
	defaultLimit     = 500
	defaultBatchSize = 20
)

// Song is one hymn entry as the music library returns it. Only the fields the
// selection flow reads are decoded.
type Song struct {
	Number   int      `json:"songNumber"`
	Title    string   `json:"title"`
	Category string   `json:"bookSectionTitle"`
	Tags     []string `json:"tags"`
}

// Catalog bundles the decoded songs with the untouched payload so the catalog
// file keeps every upstream field.
type Catalog struct {
	Songs []Song
	Raw   json.RawMessage
}

// Fetcher defines the catalog download operation used by the CLI.
type Fetcher interface {
	FetchCatalog(ctx context.Context) (*Catalog, error)
}

// Client downloads the hymn catalog from the music library API.
type Client struct {
	baseURL    string
	language   string
	limit      int
	httpClient *http.Client
}

var _ Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLimit caps how many songs one fetch requests.
func WithLimit(limit int) Option {
	return func(c *Client) {
		if limit > 0 {
			c.limit = limit
		}
	}
}

// New creates a music library client for the given language edition.
func New(baseURL, language string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("music api base url required")
	}
	language = strings.TrimSpace(language)
	if language == "" {
		return nil, errors.New("music api language required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   language,
		limit:      defaultLimit,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// identifier is the filter document the songsFilteredList endpoint expects in
// its query string.
type identifier struct {
	Lang          string   `json:"lang"`
	Limit         int      `json:"limit"`
	Offset        int      `json:"offset"`
	OrderByKey    []string `json:"orderByKey"`
	BookQueryList []string `json:"bookQueryList"`
}

type response struct {
	Data json.RawMessage `json:"data"`
}

// FetchCatalog downloads the hymnbook in catalog order.
func (c *Client) FetchCatalog(ctx context.Context) (*Catalog, error) {
	filter, err := json.Marshal(identifier{
		Lang:          c.language,
		Limit:         c.limit,
		Offset:        0,
		OrderByKey:    []string{"bookSongPosition"},
		BookQueryList: []string{"hymns"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal identifier: %w", err)
	}

	endpoint, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse music api url: %w", err)
	}
	params := url.Values{}
	params.Set("type", "songsFilteredList")
	params.Set("lang", c.language)
	params.Set("identifier", string(filter))
	params.Set("batchSize", strconv.Itoa(defaultBatchSize))
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("music api returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode music api response: %w", err)
	}
	if len(payload.Data) == 0 {
		return nil, errors.New("music api response has no data")
	}

	var songs []Song
	if err := json.Unmarshal(payload.Data, &songs); err != nil {
		return nil, fmt.Errorf("decode songs: %w", err)
	}
	if len(songs) == 0 {
		return nil, errors.New("music api returned an empty catalog")
	}
	return &Catalog{Songs: songs, Raw: payload.Data}, nil
}

// SaveCatalog downloads the hymnbook and writes it to path as indented JSON.
// An existing file is kept next to it as a .bak copy before being replaced.
func (c *Client) SaveCatalog(ctx context.Context, path string) (*Catalog, error) {
	catalog, err := c.FetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	var formatted bytes.Buffer
	if err := json.Indent(&formatted, catalog.Raw, "", "  "); err != nil {
		return nil, fmt.Errorf("format catalog: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		if err := fileutil.CopyFile(path, path+".bak"); err != nil {
			return nil, fmt.Errorf("back up previous catalog: %w", err)
		}
	}
	if err := fileutil.WriteFileAtomic(path, formatted.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write catalog: %w", err)
	}
	return catalog, nil
}
