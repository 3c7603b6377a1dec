package agents

import (
	"fmt"
	"regexp"
	"strings"
)

const finalAnswerMarker = "Final Answer:"

var (
	actionPattern      = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
	actionOnlyPattern  = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)`)
	actionInputPattern = regexp.MustCompile(`(?s)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
)

// AgentAction is a tool call chosen by the model
type AgentAction struct {
	Tool      string
	ToolInput string
	Log       string
}

// AgentFinish is the model's final answer
type AgentFinish struct {
	Output string
	Log    string
}

// Step is one executed action and what the tool answered
type Step struct {
	Action      AgentAction
	Observation string
}

// ParseError reports model output that is neither an action nor a final answer.
// Observation is what gets fed back to the model.
type ParseError struct {
	Observation string
	Output      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("Could not parse LLM output: `%s`", e.Output)
}

// ParseReAct reads a single-input ReAct completion. Exactly one of the
// returned action and finish is non-nil when err is nil.
func ParseReAct(text string) (*AgentAction, *AgentFinish, error) {
	includesAnswer := strings.Contains(text, finalAnswerMarker)

	if m := actionPattern.FindStringSubmatch(text); m != nil {
		if includesAnswer {
			return nil, nil, &ParseError{
				Observation: "Invalid Format: Provide either an Action or a Final Answer, not both.",
				Output:      text,
			}
		}
		input := strings.TrimSpace(m[2])
		input = strings.Trim(input, `"`)
		return &AgentAction{
			Tool:      strings.TrimSpace(m[1]),
			ToolInput: input,
			Log:       text,
		}, nil, nil
	}

	if includesAnswer {
		parts := strings.Split(text, finalAnswerMarker)
		return nil, &AgentFinish{
			Output: strings.TrimSpace(parts[len(parts)-1]),
			Log:    text,
		}, nil
	}

	if !actionOnlyPattern.MatchString(text) {
		return nil, nil, &ParseError{Observation: "Invalid Format: Missing 'Action:' after 'Thought:'", Output: text}
	}
	if !actionInputPattern.MatchString(text) {
		return nil, nil, &ParseError{Observation: "Invalid Format: Missing 'Action Input:' after 'Action:'", Output: text}
	}
	return nil, nil, &ParseError{Observation: "Invalid or incomplete response", Output: text}
}
