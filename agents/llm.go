package agents

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/va6996/flightfinder/plugins"
)

// GenkitModel adapts a Genkit model to the plain prompt-in, text-out LLMClient
type GenkitModel struct {
	genkit *genkit.Genkit
	model  ai.Model
}

var _ plugins.LLMClient = (*GenkitModel)(nil)

func NewGenkitModel(gk *genkit.Genkit, model ai.Model) *GenkitModel {
	return &GenkitModel{genkit: gk, model: model}
}

// GenerateContent sends a single-turn prompt and returns the response text
func (m *GenkitModel) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if m.genkit == nil || m.model == nil {
		return "", errors.New("genkit model not initialized")
	}
	resp, err := genkit.Generate(ctx,
		m.genkit,
		ai.WithModel(m.model),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("generate failed: %w", err)
	}
	return resp.Text(), nil
}
