package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/va6996/flightfinder/log"
	"github.com/va6996/flightfinder/plugins"
	"github.com/va6996/flightfinder/tools"
)

const (
	DefaultMaxIterations = 15

	observationStop = "\nObservation"
	stoppedMessage  = "Agent stopped due to iteration limit or time limit."
)

// ReActExecutor runs the text Thought/Action/Observation loop: render the prompt
// with the steps so far, ask the model for the next step, run the chosen tool and
// repeat until the model gives a final answer or a return-direct tool answers.
type ReActExecutor struct {
	llm           plugins.LLMClient
	registry      *tools.Registry
	prompt        *PromptTemplate
	maxIterations int
	verbose       bool
}

var _ Reasoner = (*ReActExecutor)(nil)

// ExecutorOption customizes a ReActExecutor
type ExecutorOption func(*ReActExecutor)

// WithMaxIterations caps the number of model calls per run
func WithMaxIterations(n int) ExecutorOption {
	return func(e *ReActExecutor) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithVerbose logs every step at info level
func WithVerbose(v bool) ExecutorOption {
	return func(e *ReActExecutor) {
		e.verbose = v
	}
}

// WithPrompt replaces the flight search prompt
func WithPrompt(p *PromptTemplate) ExecutorOption {
	return func(e *ReActExecutor) {
		e.prompt = p
	}
}

// NewReActExecutor creates an executor over the registry's tools
func NewReActExecutor(llm plugins.LLMClient, registry *tools.Registry, opts ...ExecutorOption) *ReActExecutor {
	e := &ReActExecutor{
		llm:           llm,
		registry:      registry,
		prompt:        NewFlightSearchPrompt(),
		maxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the loop for one task
func (e *ReActExecutor) Run(ctx context.Context, task Task) (string, error) {
	if e.llm == nil {
		return "", errors.New("no language model configured")
	}
	if e.registry == nil {
		return "", errors.New("no tools configured")
	}

	var steps []Step
	for i := 0; i < e.maxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		prompt, err := e.prompt.Render(e.variables(task, steps))
		if err != nil {
			return "", fmt.Errorf("failed to render prompt: %w", err)
		}

		log.Debugf(ctx, "ReActExecutor: Step %d/%d", i+1, e.maxIterations)
		completion, err := e.llm.GenerateContent(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("step %d failed: %w", i+1, err)
		}
		completion = truncateAtObservation(completion)
		e.trace(ctx, "%s", completion)

		action, finish, err := ParseReAct(completion)
		if err != nil {
			var perr *ParseError
			if !errors.As(err, &perr) {
				return "", err
			}
			log.Warnf(ctx, "ReActExecutor: %v", err)
			steps = append(steps, Step{
				Action:      AgentAction{Tool: "_Exception", ToolInput: perr.Observation, Log: completion},
				Observation: perr.Observation,
			})
			continue
		}

		if finish != nil {
			e.trace(ctx, "Finished chain with answer: %s", finish.Output)
			return finish.Output, nil
		}

		entry, ok := e.registry.Lookup(action.Tool)
		if !ok {
			obs := fmt.Sprintf("%s is not a valid tool, try one of [%s].", action.Tool, strings.Join(e.registry.Names(), ", "))
			e.trace(ctx, "Observation: %s", obs)
			steps = append(steps, Step{Action: *action, Observation: obs})
			continue
		}

		log.Infof(ctx, "ReActExecutor: Executing tool %s input: %s", action.Tool, action.ToolInput)
		res := entry.Execute(ctx, action.ToolInput)
		if res.Failed() {
			log.Warnf(ctx, "ReActExecutor: Tool %s failed (%s): %s", action.Tool, res.Err.Kind, res.Err.Message)
		}
		obs := res.Text()
		e.trace(ctx, "Observation: %s", obs)

		if entry.ReturnDirect {
			return obs, nil
		}
		steps = append(steps, Step{Action: *action, Observation: obs})
	}

	log.Warnf(ctx, "ReActExecutor: reached %d iterations without a final answer", e.maxIterations)
	return stoppedMessage, nil
}

func (e *ReActExecutor) variables(task Task, steps []Step) map[string]string {
	return map[string]string{
		VarTools:           e.registry.Describe(),
		VarToolNames:       strings.Join(e.registry.Names(), ", "),
		VarQuery:           task.Query,
		VarAgentScratchpad: Scratchpad(steps),
		VarOrigin:          task.Details.Origin,
		VarDestination:     task.Details.Destination,
		VarBudget:          FormatBudget(task.Details.Budget),
	}
}

func (e *ReActExecutor) trace(ctx context.Context, format string, args ...interface{}) {
	if e.verbose {
		log.Infof(ctx, format, args...)
		return
	}
	log.Debugf(ctx, format, args...)
}

// Scratchpad renders the steps so far the way the model is asked to write them
func Scratchpad(steps []Step) string {
	var b strings.Builder
	for _, s := range steps {
		b.WriteString(s.Action.Log)
		b.WriteString("\nObservation: ")
		b.WriteString(s.Observation)
		b.WriteString("\nThought: ")
	}
	return b.String()
}

// truncateAtObservation drops anything the model wrote past its own action,
// including observations it invented
func truncateAtObservation(s string) string {
	if i := strings.Index(s, observationStop); i >= 0 {
		return s[:i]
	}
	return s
}
