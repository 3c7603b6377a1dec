package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	runctx "github.com/va6996/flightfinder/context"
	"github.com/va6996/flightfinder/plugins/core"
	"github.com/va6996/flightfinder/tools"
)

// MockReasoner
type MockReasoner struct {
	mock.Mock
}

func (m *MockReasoner) Run(ctx context.Context, task Task) (string, error) {
	args := m.Called(ctx, task)
	return args.String(0), args.Error(1)
}

func TestFlightAgent_ProcessQuery(t *testing.T) {
	reasoner := new(MockReasoner)
	reasoner.On("Run", mock.MatchedBy(func(ctx context.Context) bool {
		return runctx.RunIDFromContext(ctx) != ""
	}), mock.MatchedBy(func(task Task) bool {
		return task.Details.Origin == "France" &&
			task.Details.Destination == "South Africa" &&
			task.Details.Budget != nil && *task.Details.Budget == 1000
	})).Return(expectedOffer, nil).Once()

	agent := NewFlightAgent(core.NewRegexExtractor(), func() Reasoner { return reasoner })
	out := agent.ProcessQuery(context.Background(), "flight from France to South Africa under 1000 dollars")

	assert.False(t, out.Failed())
	assert.Equal(t, expectedOffer, out.String())
	reasoner.AssertExpectations(t)
}

func TestFlightAgent_MissingFieldsSkipReasoning(t *testing.T) {
	built := 0
	agent := NewFlightAgent(core.NewRegexExtractor(), func() Reasoner {
		built++
		return new(MockReasoner)
	})

	out := agent.ProcessQuery(context.Background(), "flight to Spain")

	require.True(t, out.Failed())
	assert.Equal(t, tools.KindMissingFields, out.Err.Kind)
	assert.Equal(t, "Missing details: Please specify origin (e.g., 'from France').", out.String())
	assert.Equal(t, 0, built)
}

func TestFlightAgent_ReasonerError(t *testing.T) {
	reasoner := new(MockReasoner)
	reasoner.On("Run", mock.Anything, mock.Anything).Return("", errors.New("model unavailable"))

	agent := NewFlightAgent(nil, func() Reasoner { return reasoner })
	out := agent.ProcessQuery(context.Background(), "from Paris to Rome")

	require.True(t, out.Failed())
	assert.Equal(t, tools.KindOrchestration, out.Err.Kind)
	assert.Equal(t, "An error occurred while processing your request: model unavailable", out.String())
}

func TestFlightAgent_FreshReasonerPerQuery(t *testing.T) {
	built := 0
	agent := NewFlightAgent(core.NewRegexExtractor(), func() Reasoner {
		built++
		r := new(MockReasoner)
		r.On("Run", mock.Anything, mock.Anything).Return("ok", nil)
		return r
	})

	ctx := runctx.WithRunID(context.Background(), "fixed-run")
	for i := 0; i < 3; i++ {
		out := agent.ProcessQuery(ctx, "from Paris to Rome")
		assert.Equal(t, "ok", out.String())
	}
	assert.Equal(t, 3, built)
}

func TestFlightAgent_NoReasoner(t *testing.T) {
	out := NewFlightAgent(nil, nil).ProcessQuery(context.Background(), "from Paris to Rome")
	require.True(t, out.Failed())
	assert.True(t, strings.HasPrefix(out.String(), "An error occurred while processing your request:"))
}

func TestFlightAgent_EndToEndWithReAct(t *testing.T) {
	stub := newAmadeusStub(t)
	registry := newFlightRegistry(t, stub.URL)

	llm := new(MockLLM)
	llm.On("GenerateContent", mock.Anything, mock.Anything).
		Return("Thought: search\nAction: search_flights\nAction Input: {\"origin\": \"CDG\", \"destination\": \"JNB\", \"budget\": 900}", nil).Once()

	agent := NewFlightAgent(core.NewRegexExtractor(), func() Reasoner {
		return NewReActExecutor(llm, registry)
	})
	out := agent.ProcessQuery(context.Background(), "flight from France to South Africa under 900 dollars")

	assert.False(t, out.Failed())
	assert.Equal(t, "No flights found under $900", out.String())
}
