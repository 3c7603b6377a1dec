package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/va6996/flightfinder/config"
)

// mockServer mocks the Amadeus endpoints and counts calls per path
type mockServer struct {
	*httptest.Server
	tokenCalls    int32
	locationCalls int32
	flightCalls   int32

	tokenStatus int
	locations   []LocationData
	offers      []FlightOffer
	lastQuery   atomic.Value
}

func newMockServer(t *testing.T) *mockServer {
	m := &mockServer{tokenStatus: http.StatusOK}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case tokenPath:
			atomic.AddInt32(&m.tokenCalls, 1)
			if m.tokenStatus != http.StatusOK {
				w.WriteHeader(m.tokenStatus)
				w.Write([]byte(`{"error":"invalid_client"}`))
				return
			}
			assert.Equal(t, "client_credentials", r.FormValue("grant_type"))
			json.NewEncoder(w).Encode(AuthToken{
				AccessToken: "test_token",
				ExpiresIn:   1799,
				TokenType:   "Bearer",
			})
		case locationsPath:
			atomic.AddInt32(&m.locationCalls, 1)
			assert.Equal(t, "Bearer test_token", r.Header.Get("Authorization"))
			m.lastQuery.Store(r.URL.Query())
			json.NewEncoder(w).Encode(LocationSearchResponse{Data: m.locations})
		case flightOffersPath:
			atomic.AddInt32(&m.flightCalls, 1)
			assert.Equal(t, "Bearer test_token", r.Header.Get("Authorization"))
			m.lastQuery.Store(r.URL.Query())
			json.NewEncoder(w).Encode(FlightSearchResponse{Data: m.offers})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(m.Close)
	return m
}

func (m *mockServer) query() url.Values {
	v, _ := m.lastQuery.Load().(url.Values)
	return v
}

func newTestClient(m *mockServer, opts ...Option) *Client {
	return NewClient(config.AmadeusConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		BaseURL:      m.URL,
		Timeout:      5 * time.Second,
	}, nil, nil, opts...)
}

func TestNewClient_BaseURL(t *testing.T) {
	c := NewClient(config.AmadeusConfig{}, nil, nil)
	assert.Equal(t, BaseURLTest, c.BaseURL)
	assert.Equal(t, defaultLocationLimit, c.LocationLimit)
	assert.NotNil(t, c.LocationTool)
	assert.NotNil(t, c.FlightTool)

	c = NewClient(config.AmadeusConfig{Production: true}, nil, nil)
	assert.Equal(t, BaseURLProduction, c.BaseURL)

	c = NewClient(config.AmadeusConfig{Production: true, BaseURL: "http://localhost:9999/"}, nil, nil)
	assert.Equal(t, "http://localhost:9999", c.BaseURL)
}

func TestClient_FetchToken(t *testing.T) {
	m := newMockServer(t)
	c := newTestClient(m)

	token, err := c.FetchToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test_token", token)
}

func TestClient_FetchToken_Unauthorized(t *testing.T) {
	m := newMockServer(t)
	m.tokenStatus = http.StatusUnauthorized
	c := newTestClient(m)

	_, err := c.FetchToken(context.Background())
	require.Error(t, err)

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
}

func TestClient_FetchToken_EmptyToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token_type":"Bearer"}`))
	}))
	defer ts.Close()

	c := NewClient(config.AmadeusConfig{BaseURL: ts.URL}, nil, nil)
	_, err := c.FetchToken(context.Background())

	var authErr *AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Contains(t, err.Error(), "no access_token")
}

func TestClient_SearchLocations(t *testing.T) {
	m := newMockServer(t)
	m.locations = []LocationData{{
		SubType:  "AIRPORT",
		Name:     "CHARLES DE GAULLE",
		IataCode: "CDG",
		Address:  Address{CityName: "PARIS", CityCode: "PAR", CountryName: "FRANCE", CountryCode: "FR"},
	}}
	c := newTestClient(m)

	locs, err := c.SearchLocations(context.Background(), "France")
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, "CDG", locs[0].IataCode)

	q := m.query()
	assert.Equal(t, "CITY,AIRPORT", q["subType"][0])
	assert.Equal(t, "France", q["keyword"][0])
	assert.Equal(t, "5", q["page[limit]"][0])
}

func TestClient_TokenFetchedPerCall(t *testing.T) {
	m := newMockServer(t)
	c := newTestClient(m)
	ctx := context.Background()

	_, err := c.SearchLocations(ctx, "France")
	require.NoError(t, err)
	_, err = c.SearchLocations(ctx, "South Africa")
	require.NoError(t, err)
	_, err = c.SearchFlights(ctx, FlightQuery{Origin: "CDG", Destination: "JNB", DepartureDate: "2026-10-19"})
	require.NoError(t, err)

	assert.Equal(t, int32(3), atomic.LoadInt32(&m.tokenCalls))
}

func TestClient_SearchLocations_Cached(t *testing.T) {
	m := newMockServer(t)
	m.locations = []LocationData{{Name: "O R TAMBO INTL", IataCode: "JNB"}}
	c := newTestClient(m, WithCache(NewSimpleCache(), time.Hour))
	ctx := context.Background()

	first, err := c.SearchLocations(ctx, "South Africa")
	require.NoError(t, err)
	second, err := c.SearchLocations(ctx, "south africa")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.locationCalls))
	assert.Equal(t, int32(1), atomic.LoadInt32(&m.tokenCalls))
}

func TestClient_SearchFlights(t *testing.T) {
	m := newMockServer(t)
	m.offers = []FlightOffer{{ID: "1", Price: Price{Currency: "USD", Total: "420.50"}}}
	c := newTestClient(m)

	offers, err := c.SearchFlights(context.Background(), FlightQuery{
		Origin:        "CDG",
		Destination:   "JNB",
		DepartureDate: "2026-10-19",
		Currency:      "USD",
	})
	require.NoError(t, err)
	require.Len(t, offers, 1)

	q := m.query()
	assert.Equal(t, "CDG", q["originLocationCode"][0])
	assert.Equal(t, "JNB", q["destinationLocationCode"][0])
	assert.Equal(t, "2026-10-19", q["departureDate"][0])
	assert.Equal(t, "1", q["adults"][0])
	assert.Equal(t, "USD", q["currencyCode"][0])
}

func TestClient_APIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == tokenPath {
			w.Write([]byte(`{"access_token":"tok"}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"errors":[{"title":"SYSTEM ERROR"}]}`))
	}))
	defer ts.Close()

	c := NewClient(config.AmadeusConfig{BaseURL: ts.URL}, nil, nil)
	_, err := c.SearchFlights(context.Background(), FlightQuery{Origin: "CDG", Destination: "JNB", DepartureDate: "2026-10-19"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "SYSTEM ERROR")
}

func TestSimpleCache_Expiry(t *testing.T) {
	c := NewSimpleCache()
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	c.Set(ctx, "k", []byte("v"), time.Minute)
	v, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}
