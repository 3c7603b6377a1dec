package agents

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Prompt variables every flight search template is rendered with
const (
	VarTools           = "tools"
	VarToolNames       = "tool_names"
	VarQuery           = "query"
	VarAgentScratchpad = "agent_scratchpad"
	VarOrigin          = "origin"
	VarDestination     = "destination"
	VarBudget          = "budget"
)

// FlightSearchVariables is the fixed placeholder set of the flight search prompts
var FlightSearchVariables = []string{
	VarTools, VarToolNames, VarQuery, VarAgentScratchpad, VarOrigin, VarDestination, VarBudget,
}

// FlightSearchTemplate drives the text ReAct engine
const FlightSearchTemplate = `
You are a helpful flight search assistant. Your goal is to help users find flights within their budget.
The query has been preprocessed and these details were extracted:
Origin: {origin}
Destination: {destination}
Budget: ${budget} USD

Follow these steps:
1. First look up the airport codes for {origin}
2. Then look up the airport codes for {destination}
3. Use the most appropriate airport codes to search for flights within the budget

Use this format:
Thought: I'll start by finding airports in {origin}
Action: lookup_airport
Action Input: "{origin}"
Observation: [airport codes and details]
Thought: Now I'll find airports in {destination}
Action: lookup_airport
Action Input: "{destination}"
Observation: [airport codes and details]
Thought: I'll search for flights using the most suitable airport codes
Action: search_flights
Action Input: {{"origin": "XXX", "destination": "YYY", "budget": {budget}}}
Observation: [flight search results]
Thought: [analyze the results]
Final Answer: [provide a clear response with flight options]

Available Tools:
{tools}

Tool Names:
{tool_names}

User Query:
{query}
{agent_scratchpad}
`

// FlightSearchToolCallingTemplate is the system prompt for models with native tool calling
const FlightSearchToolCallingTemplate = `
You are a helpful flight search assistant. Your goal is to help users find flights within their budget.
The query has been preprocessed and these details were extracted:
Origin: {origin}
Destination: {destination}
Budget: ${budget} USD

Follow these steps:
1. Call lookup_airport with {origin} to find the origin airport codes
2. Call lookup_airport with {destination} to find the destination airport codes
3. Call search_flights once with the most appropriate codes and the budget, e.g. {{"origin": "XXX", "destination": "YYY", "budget": {budget}}}
Its result is returned to the user as is, so do not call any tool after it.

Available Tools:
{tools}

Tool Names:
{tool_names}

User Query:
{query}
{agent_scratchpad}
`

// PromptTemplate renders {name} placeholders. "{{" and "}}" produce literal braces.
type PromptTemplate struct {
	Template       string
	InputVariables []string
}

func NewPromptTemplate(text string, inputVariables ...string) *PromptTemplate {
	return &PromptTemplate{Template: text, InputVariables: inputVariables}
}

// NewFlightSearchPrompt returns the ReAct flight search prompt
func NewFlightSearchPrompt() *PromptTemplate {
	return NewPromptTemplate(FlightSearchTemplate, FlightSearchVariables...)
}

// Render substitutes every placeholder. A declared variable without a value,
// or a placeholder that is not supplied, is an error.
func (p *PromptTemplate) Render(values map[string]string) (string, error) {
	for _, v := range p.InputVariables {
		if _, ok := values[v]; !ok {
			return "", fmt.Errorf("missing value for prompt variable %q", v)
		}
	}

	var b strings.Builder
	s := p.Template
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(s[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("unterminated placeholder at offset %d", i)
			}
			name := s[i+1 : i+1+end]
			val, ok := values[name]
			if !ok {
				return "", fmt.Errorf("missing value for prompt variable %q", name)
			}
			b.WriteString(val)
			i += end + 1
		case c == '}':
			return "", fmt.Errorf("single '}' at offset %d", i)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// FormatBudget renders a budget for the prompt, "unlimited" when there is no ceiling
func FormatBudget(budget *float64) string {
	if budget == nil || *budget <= 0 || math.IsInf(*budget, 1) || math.IsNaN(*budget) {
		return "unlimited"
	}
	return strconv.FormatFloat(*budget, 'f', -1, 64)
}
