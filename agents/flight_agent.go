package agents

import (
	"context"
	"errors"
	"fmt"

	runctx "github.com/va6996/flightfinder/context"
	"github.com/va6996/flightfinder/log"
	"github.com/va6996/flightfinder/plugins/core"
	"github.com/va6996/flightfinder/tools"
)

// Outcome is the result of processing one user query: an answer or a structured error
type Outcome struct {
	Answer string       `json:"answer,omitempty"`
	Err    *tools.Error `json:"error,omitempty"`
}

// Failed reports whether the query could not be answered
func (o Outcome) Failed() bool {
	return o.Err != nil
}

func (o Outcome) String() string {
	if o.Err != nil {
		return o.Err.Message
	}
	return o.Answer
}

// ReasonerFactory builds a fresh reasoner for every query
type ReasonerFactory func() Reasoner

// FlightAgent turns a free-text query into a flight search run.
// It keeps no state between queries.
type FlightAgent struct {
	extractor   core.Extractor
	newReasoner ReasonerFactory
}

// NewFlightAgent creates a new FlightAgent
func NewFlightAgent(extractor core.Extractor, factory ReasonerFactory) *FlightAgent {
	if extractor == nil {
		extractor = core.NewRegexExtractor()
	}
	return &FlightAgent{
		extractor:   extractor,
		newReasoner: factory,
	}
}

// ProcessQuery extracts the travel details, rejects incomplete queries before any
// network call, and runs a reasoning engine over the two flight tools
func (a *FlightAgent) ProcessQuery(ctx context.Context, query string) Outcome {
	if runctx.RunIDFromContext(ctx) == "" {
		ctx = runctx.WithRunID(ctx, runctx.NewRunID())
	}
	log.Infof(ctx, "FlightAgent: Processing query: %s", query)

	details := a.extractor.Extract(query)
	log.Debugf(ctx, "FlightAgent: Extracted origin=%q destination=%q budget=%s",
		details.Origin, details.Destination, FormatBudget(details.Budget))

	if err := core.ValidateQuery(ctx, details); err != nil {
		var missing *core.MissingFieldsError
		if errors.As(err, &missing) {
			return Outcome{Err: &tools.Error{Kind: tools.KindMissingFields, Message: missing.Error()}}
		}
		return Outcome{Err: &tools.Error{Kind: tools.KindInvalidInput, Message: err.Error()}}
	}

	if a.newReasoner == nil {
		return orchestrationFailure(ctx, errors.New("no reasoning engine configured"))
	}
	reasoner := a.newReasoner()
	if reasoner == nil {
		return orchestrationFailure(ctx, errors.New("no reasoning engine configured"))
	}

	answer, err := reasoner.Run(ctx, Task{Query: query, Details: details})
	if err != nil {
		return orchestrationFailure(ctx, err)
	}

	log.Infof(ctx, "FlightAgent: Completed query")
	return Outcome{Answer: answer}
}

func orchestrationFailure(ctx context.Context, err error) Outcome {
	log.Errorf(ctx, "FlightAgent: %v", err)
	return Outcome{Err: &tools.Error{
		Kind:    tools.KindOrchestration,
		Message: fmt.Sprintf("An error occurred while processing your request: %v", err),
	}}
}
