package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/va6996/flightfinder/log"
	"github.com/va6996/flightfinder/tools"
)

// NativeReasoner uses Genkit's native tool calling instead of a text protocol.
// Return-direct tools interrupt the generation and their output becomes the answer.
type NativeReasoner struct {
	genkit   *genkit.Genkit
	registry *tools.Registry
	model    ai.Model
	prompt   *PromptTemplate
	maxTurns int
}

var _ Reasoner = (*NativeReasoner)(nil)

// NewNativeReasoner creates a reasoner over the registry's genkit tools
func NewNativeReasoner(gk *genkit.Genkit, registry *tools.Registry, model ai.Model, maxTurns int) *NativeReasoner {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxIterations
	}
	return &NativeReasoner{
		genkit:   gk,
		registry: registry,
		model:    model,
		prompt:   NewPromptTemplate(FlightSearchToolCallingTemplate, FlightSearchVariables...),
		maxTurns: maxTurns,
	}
}

// Run generates with tools until the model answers or a return-direct tool fires
func (n *NativeReasoner) Run(ctx context.Context, task Task) (string, error) {
	if n.genkit == nil || n.model == nil {
		return "", errors.New("no language model configured")
	}
	if n.registry == nil {
		return "", errors.New("no tools configured")
	}

	system, err := n.prompt.Render(map[string]string{
		VarTools:           n.registry.Describe(),
		VarToolNames:       strings.Join(n.registry.Names(), ", "),
		VarQuery:           task.Query,
		VarAgentScratchpad: "",
		VarOrigin:          task.Details.Origin,
		VarDestination:     task.Details.Destination,
		VarBudget:          FormatBudget(task.Details.Budget),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}

	var toolRefs []ai.ToolRef
	for _, tool := range n.registry.GetTools() {
		toolRefs = append(toolRefs, tool)
	}
	log.Debugf(ctx, "NativeReasoner: Generating with %d tools, max turns %d", len(toolRefs), n.maxTurns)

	ctx, direct := tools.WithDirectReturn(ctx)
	response, err := genkit.Generate(ctx,
		n.genkit,
		ai.WithModel(n.model),
		ai.WithSystem(system),
		ai.WithPrompt(task.Query),
		ai.WithTools(toolRefs...),
		ai.WithMaxTurns(n.maxTurns),
	)

	if tool, output, ok := direct.Output(); ok {
		log.Infof(ctx, "NativeReasoner: %s returned directly", tool)
		return output, nil
	}
	if err != nil {
		log.Errorf(ctx, "NativeReasoner: Generate error: %v", err)
		return "", fmt.Errorf("generation failed: %w", err)
	}

	if response.FinishReason == ai.FinishReasonInterrupted {
		for _, part := range response.Interrupts() {
			log.Warnf(ctx, "NativeReasoner: unhandled interrupt from %s", part.ToolRequest.Name)
		}
		return "", errors.New("generation interrupted without an answer")
	}

	text := strings.TrimSpace(response.Text())
	log.Debugf(ctx, "NativeReasoner: Final response: %s", text)
	return text, nil
}
