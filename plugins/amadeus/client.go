package amadeus

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

	"github.com/firebase/genkit/go/genkit"
	"github.com/va6996/flightfinder/config"
	"github.com/va6996/flightfinder/log"
	"github.com/va6996/flightfinder/tools"
)

const (
	BaseURLTest       = "https://test.api.amadeus.com"
	BaseURLProduction = "https://api.amadeus.com"

	tokenPath     = "/v1/security/oauth2/token"
	locationsPath = "/v1/reference-data/locations"

	defaultLocationLimit = 5
)

// Client is the Amadeus API client. It holds no token state: every call
// that needs authorization fetches a fresh token first.
type Client struct {
	ClientID      string
	ClientSecret  string
	BaseURL       string
	HTTPClient    *http.Client
	LocationLimit int

	// Cache, when set, stores location lookups. Tokens and flight offers are never cached.
	Cache    ResponseCache
	CacheTTL time.Duration

	LocationTool *AirportLookupTool
	FlightTool   *FlightSearchTool
}

// Ensure Client provides its tools through the registry plugin contract
var _ tools.ToolPlugin = (*Client)(nil)

// Option customizes a Client
type Option func(*Client)

// WithCache enables caching of location lookups
func WithCache(cache ResponseCache, ttl time.Duration) Option {
	return func(c *Client) {
		c.Cache = cache
		c.CacheTTL = ttl
	}
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.HTTPClient = hc
	}
}

// AuthToken represents the OAuth2 token response
type AuthToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// AuthError reports a failed client-credentials exchange
type AuthError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %v", e.Err)
	}
	return fmt.Sprintf("authentication failed: %s", e.Status)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// APIError reports a non-2xx answer from a data endpoint
type APIError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s returned %s", e.Endpoint, e.Status)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// LocationSearchResponse wraps the API response for locations
type LocationSearchResponse struct {
	Data []LocationData `json:"data"`
}

// LocationData represents a single location result from Amadeus
type LocationData struct {
	SubType  string  `json:"subType"`
	Name     string  `json:"name"`
	IataCode string  `json:"iataCode"`
	Address  Address `json:"address"`
}

// Address contains location details
type Address struct {
	CityName    string `json:"cityName"`
	CityCode    string `json:"cityCode"`
	CountryName string `json:"countryName"`
	CountryCode string `json:"countryCode"`
}

// NewClient creates a new Amadeus client from explicit configuration.
// Tools are registered when both gk and registry are provided.
func NewClient(cfg config.AmadeusConfig, gk *genkit.Genkit, registry *tools.Registry, opts ...Option) *Client {
	baseURL := BaseURLTest
	if cfg.Production {
		baseURL = BaseURLProduction
	}
	if cfg.BaseURL != "" {
		baseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	limit := cfg.LocationLimit
	if limit <= 0 {
		limit = defaultLocationLimit
	}

	c := &Client{
		ClientID:      cfg.ClientID,
		ClientSecret:  cfg.ClientSecret,
		BaseURL:       baseURL,
		HTTPClient:    &http.Client{Timeout: cfg.Timeout},
		LocationLimit: limit,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.RegisterTools(gk, registry)
	return c
}

// RegisterTools creates the lookup and search tools and registers them
func (c *Client) RegisterTools(gk *genkit.Genkit, registry *tools.Registry) {
	c.LocationTool = NewAirportLookupTool(c, gk, registry)
	c.FlightTool = NewFlightSearchTool(c, gk, registry)
}

// FetchToken exchanges the client credentials for a bearer token.
// Any failure is returned as *AuthError.
func (c *Client) FetchToken(ctx context.Context) (string, error) {
	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", c.ClientID)
	data.Set("client_secret", c.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+tokenPath, strings.NewReader(data.Encode()))
	if err != nil {
		return "", &AuthError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Errorf(ctx, "Amadeus token request failed: %v", err)
		return "", &AuthError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Errorf(ctx, "Amadeus token endpoint returned %s", resp.Status)
		return "", &AuthError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var token AuthToken
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", &AuthError{StatusCode: resp.StatusCode, Status: resp.Status, Err: fmt.Errorf("malformed token response: %w", err)}
	}
	if token.AccessToken == "" {
		return "", &AuthError{StatusCode: resp.StatusCode, Status: resp.Status, Err: errors.New("token response has no access_token")}
	}

	return token.AccessToken, nil
}

// getJSON authenticates, performs a GET and decodes the JSON body into out
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	token, err := c.FetchToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		log.Errorf(ctx, "Amadeus API request failed: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		log.Errorf(ctx, "%s: API returned status %s", endpoint, resp.Status)
		return &APIError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// SearchLocations searches for airports and cities by keyword
func (c *Client) SearchLocations(ctx context.Context, keyword string) ([]LocationData, error) {
	cacheKey := GenerateCacheKey("locations", strings.ToLower(keyword), c.LocationLimit)
	if c.Cache != nil {
		if raw, ok := c.Cache.Get(ctx, cacheKey); ok {
			var cached []LocationData
			if err := json.Unmarshal(raw, &cached); err == nil {
				log.Debugf(ctx, "SearchLocations: cache hit for %q", keyword)
				return cached, nil
			}
		}
	}

	params := url.Values{}
	params.Set("subType", "CITY,AIRPORT")
	params.Set("keyword", keyword)
	params.Set("page[limit]", strconv.Itoa(c.LocationLimit))

	var result LocationSearchResponse
	if err := c.getJSON(ctx, locationsPath, params, &result); err != nil {
		log.Errorf(ctx, "SearchLocations: %v", err)
		return nil, err
	}

	if c.Cache != nil {
		if raw, err := json.Marshal(result.Data); err == nil {
			c.Cache.Set(ctx, cacheKey, raw, c.CacheTTL)
		}
	}

	return result.Data, nil
}
