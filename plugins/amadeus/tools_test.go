package amadeus

import (
	"context"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/va6996/flightfinder/config"
	"github.com/va6996/flightfinder/tools"
)

func offer(id, total string, airlines ...string) FlightOffer {
	return FlightOffer{
		ID:                     id,
		Price:                  Price{Currency: "USD", Total: total},
		ValidatingAirlineCodes: airlines,
		Itineraries: []Itinerary{{
			Segments: []Segment{
				{Departure: FlightEndPoint{IataCode: "CDG", At: "2026-10-19T10:00:00"}, Arrival: FlightEndPoint{IataCode: "DXB", At: "2026-10-19T18:00:00"}},
				{Departure: FlightEndPoint{IataCode: "DXB", At: "2026-10-19T21:00:00"}, Arrival: FlightEndPoint{IataCode: "JNB", At: "2026-10-20T04:10:00"}},
			},
		}},
	}
}

func TestAirportLookupTool_Execute(t *testing.T) {
	m := newMockServer(t)
	m.locations = []LocationData{
		{IataCode: "CDG", Name: "CHARLES DE GAULLE", Address: Address{CityName: "PARIS", CountryName: "FRANCE"}},
		{IataCode: "", Name: "NO CODE", Address: Address{CityName: "LYON", CountryName: "FRANCE"}},
		{IataCode: "ORY", Name: "ORLY", Address: Address{CityName: "PARIS", CountryName: "FRANCE"}},
	}
	c := newTestClient(m)

	res := c.LocationTool.Execute(context.Background(), "France")
	require.False(t, res.Failed())
	assert.Equal(t, "CDG (CHARLES DE GAULLE, PARIS, FRANCE)\nORY (ORLY, PARIS, FRANCE)", res.Output)
}

func TestAirportLookupTool_InputForms(t *testing.T) {
	m := newMockServer(t)
	m.locations = []LocationData{{IataCode: "JNB", Name: "O R TAMBO INTL", Address: Address{CityName: "JOHANNESBURG", CountryName: "SOUTH AFRICA"}}}
	c := newTestClient(m)
	ctx := context.Background()

	for _, in := range []string{`"South Africa"`, ` 'South Africa' `, `{"keyword": "South Africa"}`} {
		res := c.LocationTool.Execute(ctx, in)
		require.False(t, res.Failed(), in)
		assert.Equal(t, "South Africa", m.query().Get("keyword"), in)
	}
}

func TestAirportLookupTool_NoMatches(t *testing.T) {
	m := newMockServer(t)
	c := newTestClient(m)

	res := c.LocationTool.Execute(context.Background(), "Atlantis")
	require.False(t, res.Failed())
	assert.Equal(t, "No airports found for Atlantis", res.Output)
}

func TestAirportLookupTool_EmptyInput(t *testing.T) {
	m := newMockServer(t)
	c := newTestClient(m)

	res := c.LocationTool.Execute(context.Background(), "  ")
	require.True(t, res.Failed())
	assert.Equal(t, tools.KindInvalidInput, res.Err.Kind)
	assert.Equal(t, int32(0), m.tokenCalls)
}

func TestTools_AuthenticationFailure(t *testing.T) {
	m := newMockServer(t)
	m.tokenStatus = http.StatusUnauthorized
	c := newTestClient(m)
	ctx := context.Background()

	res := c.LocationTool.Execute(ctx, "France")
	require.True(t, res.Failed())
	assert.Equal(t, tools.KindAuthentication, res.Err.Kind)
	assert.Equal(t, "Failed to authenticate with the Amadeus API.", res.Text())

	res = c.FlightTool.Execute(ctx, `{"origin": "CDG", "destination": "JNB"}`)
	require.True(t, res.Failed())
	assert.Equal(t, tools.KindAuthentication, res.Err.Kind)
	assert.Equal(t, "Failed to authenticate with the Amadeus API.", res.Text())
	assert.Equal(t, int32(0), m.flightCalls)
}

func TestFlightSearchTool_BudgetExcludesAll(t *testing.T) {
	m := newMockServer(t)
	m.offers = []FlightOffer{offer("1", "600.00", "AF")}
	c := newTestClient(m)

	res := c.FlightTool.Execute(context.Background(), `{"origin": "CDG", "destination": "JNB", "budget": 500}`)
	require.False(t, res.Failed())
	assert.Equal(t, "No flights found under $500", res.Output)
}

func TestFlightSearchTool_FiltersAndKeepsOrder(t *testing.T) {
	m := newMockServer(t)
	m.offers = []FlightOffer{
		offer("1", "950.00", "EK"),
		offer("2", "1200.00", "AF"),
		offer("3", "780.40", "QR", "EK"),
	}
	c := newTestClient(m)

	res := c.FlightTool.Execute(context.Background(), `{"origin": "cdg", "destination": "jnb", "budget": 1000}`)
	require.False(t, res.Failed())

	expected := "Airline: EK\nPrice: $950.00\nDeparture: 2026-10-19T10:00:00\nArrival: 2026-10-20T04:10:00\n" +
		"\n" +
		"Airline: QR, EK\nPrice: $780.40\nDeparture: 2026-10-19T10:00:00\nArrival: 2026-10-20T04:10:00\n"
	assert.Equal(t, expected, res.Output)
	assert.Equal(t, "CDG", m.query().Get("originLocationCode"))
	assert.Equal(t, "JNB", m.query().Get("destinationLocationCode"))
}

func TestFlightSearchTool_NoBudgetKeepsAll(t *testing.T) {
	m := newMockServer(t)
	m.offers = []FlightOffer{offer("1", "5000.00", "AF"), offer("2", "99.99", "U2")}
	c := newTestClient(m)

	res := c.FlightTool.Execute(context.Background(), `{"origin": "CDG", "destination": "JNB", "budget": "unlimited"}`)
	require.False(t, res.Failed())
	assert.Contains(t, res.Output, "Price: $5000.00")
	assert.Contains(t, res.Output, "Price: $99.99")
}

func TestFlightSearchTool_NoOffers(t *testing.T) {
	m := newMockServer(t)
	c := newTestClient(m)

	res := c.FlightTool.Execute(context.Background(), `{"origin": "CDG", "destination": "JNB"}`)
	require.False(t, res.Failed())
	assert.Equal(t, "No flights found for the given parameters.", res.Output)
}

func TestFlightSearchTool_LenientInput(t *testing.T) {
	m := newMockServer(t)
	m.offers = []FlightOffer{offer("1", "300.00", "AF")}
	c := newTestClient(m)
	ctx := context.Background()

	inputs := []string{
		`{'origin': 'CDG', 'destination': 'JNB', 'budget': 1000}`,
		"```json\n{\"origin\": \"CDG\", \"destination\": \"JNB\"}\n```",
		`{origin: "CDG", destination: "JNB", budget: 1000,}`,
	}
	for _, in := range inputs {
		res := c.FlightTool.Execute(ctx, in)
		require.False(t, res.Failed(), in)
		assert.Contains(t, res.Output, "Airline: AF", in)
	}
}

func TestFlightSearchTool_InvalidInput(t *testing.T) {
	m := newMockServer(t)
	c := newTestClient(m)
	ctx := context.Background()

	res := c.FlightTool.Execute(ctx, "")
	require.True(t, res.Failed())
	assert.Equal(t, "Invalid input format. Please provide input as a JSON string.", res.Text())

	res = c.FlightTool.Execute(ctx, `{"origin": "CDG"}`)
	require.True(t, res.Failed())
	assert.Equal(t, tools.KindInvalidInput, res.Err.Kind)
	assert.Equal(t, "Both origin and destination are required.", res.Text())

	res = c.FlightTool.Execute(ctx, `{"origin": "CDG", "destination": "JNB", "departure_date": "tomorrow"}`)
	require.True(t, res.Failed())
	assert.Equal(t, tools.KindInvalidInput, res.Err.Kind)

	assert.Equal(t, int32(0), m.tokenCalls)
}

func TestFlightSearchTool_DefaultsDepartureToToday(t *testing.T) {
	m := newMockServer(t)
	c := newTestClient(m)
	c.FlightTool.Now = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }

	c.FlightTool.Execute(context.Background(), `{"origin": "CDG", "destination": "JNB"}`)
	assert.Equal(t, "2026-10-19", m.query().Get("departureDate"))
	assert.Equal(t, "1", m.query().Get("adults"))
	assert.Equal(t, "USD", m.query().Get("currencyCode"))
}

func TestFilterByBudget_InvalidPrice(t *testing.T) {
	_, err := FilterByBudget([]FlightOffer{offer("7", "abc")}, MaxPrice(100))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `offer "7" has invalid total price "abc"`)
}

func TestParseBudget(t *testing.T) {
	cases := []struct {
		in      interface{}
		bounded bool
		ceiling float64
		wantErr bool
	}{
		{in: nil},
		{in: 1000.0, bounded: true, ceiling: 1000},
		{in: 0.0},
		{in: -5.0},
		{in: math.Inf(1)},
		{in: "inf"},
		{in: "No Limit"},
		{in: "$1,250.50", bounded: true, ceiling: 1250.5},
		{in: "cheap", wantErr: true},
		{in: true, wantErr: true},
	}
	for _, tc := range cases {
		b, err := ParseBudget(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "%v", tc.in)
			continue
		}
		require.NoError(t, err, "%v", tc.in)
		ceiling, bounded := b.Ceiling()
		assert.Equal(t, tc.bounded, bounded, "%v", tc.in)
		if tc.bounded {
			assert.Equal(t, tc.ceiling, ceiling, "%v", tc.in)
		}
	}
}

func TestBudget_String(t *testing.T) {
	assert.Equal(t, "unlimited", Unbounded().String())
	assert.Equal(t, "500", MaxPrice(500).String())
	assert.Equal(t, "499.99", MaxPrice(499.99).String())
}

func TestRegisterTools(t *testing.T) {
	gk := genkit.Init(context.Background())
	registry := tools.NewRegistry()

	NewClient(config.AmadeusConfig{}, gk, registry)

	assert.Equal(t, []string{LookupAirportToolName, SearchFlightsToolName}, registry.Names())

	lookup, ok := registry.Lookup(LookupAirportToolName)
	require.True(t, ok)
	assert.False(t, lookup.ReturnDirect)

	search, ok := registry.Lookup(SearchFlightsToolName)
	require.True(t, ok)
	assert.True(t, search.ReturnDirect)
}
