package amadeus

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const flightOffersPath = "/v2/shopping/flight-offers"

// --- Structs for Flight Search (Simplified) ---

type FlightSearchResponse struct {
	Data []FlightOffer `json:"data"`
}

type FlightOffer struct {
	Type                   string      `json:"type"`
	ID                     string      `json:"id"`
	Source                 string      `json:"source"`
	OneWay                 bool        `json:"oneWay"`
	LastTicketingDate      string      `json:"lastTicketingDate"`
	NumberOfBookableSeats  int         `json:"numberOfBookableSeats"`
	Itineraries            []Itinerary `json:"itineraries"`
	Price                  Price       `json:"price"`
	ValidatingAirlineCodes []string    `json:"validatingAirlineCodes"`
}

type Itinerary struct {
	Duration string    `json:"duration"`
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Departure     FlightEndPoint `json:"departure"`
	Arrival       FlightEndPoint `json:"arrival"`
	CarrierCode   string         `json:"carrierCode"`
	Number        string         `json:"number"`
	Duration      string         `json:"duration"`
	NumberOfStops int            `json:"numberOfStops"`
}

type FlightEndPoint struct {
	IataCode string `json:"iataCode"`
	Terminal string `json:"terminal,omitempty"`
	At       string `json:"at"`
}

type Price struct {
	Currency   string `json:"currency"`
	Total      string `json:"total"`
	Base       string `json:"base"`
	GrandTotal string `json:"grandTotal,omitempty"`
}

// FlightQuery holds the parameters of a one-way offer search
type FlightQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	Adults        int
	Currency      string
}

// PricedOffer is an offer whose total price has been parsed
type PricedOffer struct {
	Offer FlightOffer
	Total float64
}

// SearchFlights searches for flight offers
func (c *Client) SearchFlights(ctx context.Context, q FlightQuery) ([]FlightOffer, error) {
	adults := q.Adults
	if adults <= 0 {
		adults = 1
	}

	params := url.Values{}
	params.Set("originLocationCode", q.Origin)
	params.Set("destinationLocationCode", q.Destination)
	params.Set("departureDate", q.DepartureDate)
	params.Set("adults", strconv.Itoa(adults))
	if q.Currency != "" {
		params.Set("currencyCode", q.Currency)
	}

	var searchResp FlightSearchResponse
	if err := c.getJSON(ctx, flightOffersPath, params, &searchResp); err != nil {
		return nil, err
	}
	return searchResp.Data, nil
}

// TotalPrice parses the offer's total price
func (o FlightOffer) TotalPrice() (float64, error) {
	total, err := strconv.ParseFloat(strings.TrimSpace(o.Price.Total), 64)
	if err != nil {
		return 0, fmt.Errorf("offer %q has invalid total price %q", o.ID, o.Price.Total)
	}
	return total, nil
}

// DepartureTime is the departure of the first segment of the first itinerary
func (o FlightOffer) DepartureTime() string {
	if len(o.Itineraries) == 0 || len(o.Itineraries[0].Segments) == 0 {
		return "n/a"
	}
	return o.Itineraries[0].Segments[0].Departure.At
}

// ArrivalTime is the arrival of the last segment of the first itinerary
func (o FlightOffer) ArrivalTime() string {
	if len(o.Itineraries) == 0 || len(o.Itineraries[0].Segments) == 0 {
		return "n/a"
	}
	segments := o.Itineraries[0].Segments
	return segments[len(segments)-1].Arrival.At
}

// FilterByBudget drops every offer priced above the budget ceiling, keeping input order.
// An offer with an unparseable price fails the whole filter.
func FilterByBudget(offers []FlightOffer, budget Budget) ([]PricedOffer, error) {
	kept := make([]PricedOffer, 0, len(offers))
	for _, offer := range offers {
		total, err := offer.TotalPrice()
		if err != nil {
			return nil, err
		}
		if !budget.Allows(total) {
			continue
		}
		kept = append(kept, PricedOffer{Offer: offer, Total: total})
	}
	return kept, nil
}

// FormatOffer renders one offer as a human-readable block
func FormatOffer(p PricedOffer) string {
	return fmt.Sprintf("Airline: %s\nPrice: $%.2f\nDeparture: %s\nArrival: %s\n",
		strings.Join(p.Offer.ValidatingAirlineCodes, ", "),
		p.Total,
		p.Offer.DepartureTime(),
		p.Offer.ArrivalTime(),
	)
}

// FormatOffers joins the rendered offers with blank lines between them
func FormatOffers(offers []PricedOffer) string {
	blocks := make([]string, 0, len(offers))
	for _, p := range offers {
		blocks = append(blocks, FormatOffer(p))
	}
	return strings.Join(blocks, "\n")
}
