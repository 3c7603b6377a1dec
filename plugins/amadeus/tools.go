package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/kaptinlin/jsonrepair"
	"github.com/va6996/flightfinder/log"
	"github.com/va6996/flightfinder/tools"
)

const (
	LookupAirportToolName = "lookup_airport"
	SearchFlightsToolName = "search_flights"

	dateLayout         = "2006-01-02"
	authFailureMessage = "Failed to authenticate with the Amadeus API."
)

// LocationInput is the structured input of the airport lookup tool
type LocationInput struct {
	Keyword string `json:"keyword" description:"City or country name, e.g. 'France' or 'South Africa'"`
}

// FlightSearchInput is the structured input of the flight search tool
type FlightSearchInput struct {
	Origin        string   `json:"origin" description:"Origin IATA code, e.g. CDG"`
	Destination   string   `json:"destination" description:"Destination IATA code, e.g. JNB"`
	Budget        *float64 `json:"budget,omitempty" description:"Maximum total price in USD"`
	DepartureDate string   `json:"departure_date,omitempty" description:"Departure date YYYY-MM-DD, defaults to today"`
}

// flightRequest is the lenient decoding target for model-written input
type flightRequest struct {
	Origin        string      `json:"origin"`
	Destination   string      `json:"destination"`
	Budget        interface{} `json:"budget"`
	DepartureDate string      `json:"departure_date"`
}

// AirportLookupTool implementation
type AirportLookupTool struct {
	Client *Client
}

func (t *AirportLookupTool) Name() string {
	return LookupAirportToolName
}

func (t *AirportLookupTool) Description() string {
	return "Looks up airport codes for a given city or country. Input: the place name. Example: 'France' or 'South Africa'"
}

// Execute looks up airports matching the free-text place name
func (t *AirportLookupTool) Execute(ctx context.Context, input string) tools.Result {
	log.Debugf(ctx, "AirportLookupTool executing with input: %s", input)

	if t.Client == nil {
		return tools.Fail(tools.KindUpstream, "Error looking up airport: amadeus client not initialized")
	}

	keyword := keywordFromInput(input)
	if keyword == "" {
		return tools.Fail(tools.KindInvalidInput, "A city or country name is required to look up airports.")
	}

	locations, err := t.Client.SearchLocations(ctx, keyword)
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			log.Errorf(ctx, "AirportLookupTool: %v", err)
			return tools.Fail(tools.KindAuthentication, authFailureMessage)
		}
		return tools.Fail(tools.KindUpstream, "Error looking up airport: %v", err)
	}

	lines := FormatAirports(locations)
	if len(lines) == 0 {
		return tools.Ok(fmt.Sprintf("No airports found for %s", keyword))
	}

	log.Debugf(ctx, "AirportLookupTool completed successfully. Found %d airports.", len(lines))
	return tools.Ok(strings.Join(lines, "\n"))
}

// FormatAirports renders locations as "CODE (name, city, country)", skipping
// entries without a code or a name
func FormatAirports(locations []LocationData) []string {
	lines := make([]string, 0, len(locations))
	for _, l := range locations {
		if l.IataCode == "" || l.Name == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s (%s, %s, %s)", l.IataCode, l.Name, l.Address.CityName, l.Address.CountryName))
	}
	return lines
}

// keywordFromInput accepts a bare place name, a quoted one, or {"keyword": "..."}
func keywordFromInput(input string) string {
	s := strings.TrimSpace(input)
	if strings.HasPrefix(s, "{") {
		var in LocationInput
		if err := json.Unmarshal([]byte(s), &in); err == nil {
			s = in.Keyword
		}
	}
	return strings.TrimSpace(strings.Trim(s, "\"'` "))
}

// NewAirportLookupTool initializes and registers the AirportLookupTool
func NewAirportLookupTool(c *Client, gk *genkit.Genkit, registry *tools.Registry) *AirportLookupTool {
	t := &AirportLookupTool{Client: c}
	if gk == nil || registry == nil {
		return t
	}
	registry.Register(genkit.DefineTool[*LocationInput, string](
		gk,
		LookupAirportToolName,
		t.Description(),
		func(ctx *ai.ToolContext, input *LocationInput) (string, error) {
			keyword := ""
			if input != nil {
				keyword = input.Keyword
			}
			return tools.Finish(ctx, LookupAirportToolName, t.Execute(ctx, keyword), false)
		},
	), t.Execute)
	return t
}

// FlightSearchTool implementation
type FlightSearchTool struct {
	Client *Client
	Now    func() time.Time
}

func (t *FlightSearchTool) Name() string {
	return SearchFlightsToolName
}

func (t *FlightSearchTool) Description() string {
	return `Searches for flights using the Amadeus API. Input: a JSON object with origin and destination IATA codes, and optional budget (USD) and departure_date (YYYY-MM-DD). Example: {"origin": "CDG", "destination": "JNB", "budget": 500}`
}

// Execute searches one-way offers for one adult in USD and filters them by budget
func (t *FlightSearchTool) Execute(ctx context.Context, input string) tools.Result {
	log.Debugf(ctx, "FlightSearchTool executing with input: %s", input)

	if t.Client == nil {
		return tools.Fail(tools.KindUpstream, "An error occurred while searching for flights: amadeus client not initialized")
	}

	req, err := parseFlightRequest(input)
	if err != nil {
		log.Warnf(ctx, "FlightSearchTool: unparseable input %q: %v", input, err)
		return tools.Fail(tools.KindInvalidInput, "Invalid input format. Please provide input as a JSON string.")
	}

	origin := strings.ToUpper(strings.TrimSpace(req.Origin))
	destination := strings.ToUpper(strings.TrimSpace(req.Destination))
	if origin == "" || destination == "" {
		return tools.Fail(tools.KindInvalidInput, "Both origin and destination are required.")
	}

	budget, err := ParseBudget(req.Budget)
	if err != nil {
		return tools.Fail(tools.KindInvalidInput, "Invalid budget: %v. Provide the budget as a number.", err)
	}

	departure := strings.TrimSpace(req.DepartureDate)
	if departure == "" {
		departure = t.now().Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, departure); err != nil {
		return tools.Fail(tools.KindInvalidInput, "Invalid departure_date %q. Use the YYYY-MM-DD format.", departure)
	}

	offers, err := t.Client.SearchFlights(ctx, FlightQuery{
		Origin:        origin,
		Destination:   destination,
		DepartureDate: departure,
		Adults:        1,
		Currency:      "USD",
	})
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) {
			log.Errorf(ctx, "FlightSearchTool: %v", err)
			return tools.Fail(tools.KindAuthentication, authFailureMessage)
		}
		log.Errorf(ctx, "FlightSearchTool failed: %v", err)
		return tools.Fail(tools.KindUpstream, "An error occurred while searching for flights: %v", err)
	}

	if len(offers) == 0 {
		return tools.Ok("No flights found for the given parameters.")
	}

	kept, err := FilterByBudget(offers, budget)
	if err != nil {
		return tools.Fail(tools.KindUpstream, "An error occurred while searching for flights: %v", err)
	}
	if len(kept) == 0 {
		if budget.Bounded() {
			return tools.Ok(fmt.Sprintf("No flights found under $%s", budget))
		}
		return tools.Ok("No flights found.")
	}

	log.Debugf(ctx, "FlightSearchTool completed successfully. %d of %d offers within budget %s.", len(kept), len(offers), budget)
	return tools.Ok(FormatOffers(kept))
}

func (t *FlightSearchTool) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// parseFlightRequest decodes strict JSON first, then JSON written with single
// quotes, then whatever jsonrepair can salvage
func parseFlightRequest(input string) (*flightRequest, error) {
	s := stripCodeFence(strings.TrimSpace(input))
	if s == "" {
		return nil, errors.New("empty input")
	}

	var req flightRequest
	err := json.Unmarshal([]byte(s), &req)
	if err == nil {
		return &req, nil
	}

	req = flightRequest{}
	if qerr := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), &req); qerr == nil {
		return &req, nil
	}

	fixed, rerr := jsonrepair.JSONRepair(s)
	if rerr != nil {
		return nil, err
	}
	req = flightRequest{}
	if ferr := json.Unmarshal([]byte(fixed), &req); ferr != nil {
		return nil, ferr
	}
	return &req, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// NewFlightSearchTool initializes and registers the FlightSearchTool as a return-direct tool
func NewFlightSearchTool(c *Client, gk *genkit.Genkit, registry *tools.Registry) *FlightSearchTool {
	t := &FlightSearchTool{Client: c, Now: time.Now}
	if gk == nil || registry == nil {
		return t
	}
	registry.Register(genkit.DefineTool[*FlightSearchInput, string](
		gk,
		SearchFlightsToolName,
		t.Description(),
		func(ctx *ai.ToolContext, input *FlightSearchInput) (string, error) {
			raw := "{}"
			if input != nil {
				if b, err := json.Marshal(input); err == nil {
					raw = string(b)
				}
			}
			return tools.Finish(ctx, SearchFlightsToolName, t.Execute(ctx, raw), true)
		},
	), t.Execute, tools.ReturnDirect())
	return t
}
