// Copyright 2025

// Package compat provides Genkit plugins for OpenAI-compatible chat APIs
// (OpenAI itself and Z.ai's GLM models).
package compat

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/core/api"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai"
	"github.com/openai/openai-go/option"
)

const (
	ProviderOpenAI = "openai"
	ProviderZai    = "zai"

	DefaultOpenAIBaseURL = "https://api.openai.com/v1/"
	DefaultZaiBaseURL    = "https://api.z.ai/api/paas/v4/"
)

// Compat is a Genkit plugin over an OpenAI-compatible endpoint
type Compat struct {
	// Provider names the plugin and prefixes its model names
	Provider string
	APIKey   string
	BaseURL  string
	// Models are defined on Init
	Models map[string]ai.ModelOptions

	openAICompatible *compat_oai.OpenAICompatible
}

// NewOpenAI returns a plugin for the OpenAI API
func NewOpenAI(apiKey, baseURL string) *Compat {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return &Compat{
		Provider: ProviderOpenAI,
		APIKey:   apiKey,
		BaseURL:  baseURL,
		Models: map[string]ai.ModelOptions{
			"gpt-4o-mini": {
				Label:    "OpenAI GPT-4o mini",
				Supports: &compat_oai.Multimodal,
				Versions: []string{"gpt-4o-mini"},
			},
			"gpt-4o": {
				Label:    "OpenAI GPT-4o",
				Supports: &compat_oai.Multimodal,
				Versions: []string{"gpt-4o"},
			},
		},
	}
}

// NewZai returns a plugin for Z.ai's GLM models
func NewZai(apiKey string) *Compat {
	return &Compat{
		Provider: ProviderZai,
		APIKey:   apiKey,
		BaseURL:  DefaultZaiBaseURL,
		Models: map[string]ai.ModelOptions{
			"glm-4.7": {
				Label:    "Z.ai GLM-4.7",
				Supports: &compat_oai.Multimodal,
				Versions: []string{"glm-4.7"},
			},
			"glm-4.7-flash": {
				Label:    "Z.ai GLM-4.7 Flash",
				Supports: &compat_oai.Multimodal,
				Versions: []string{"glm-4.7-flash"},
			},
			"glm-4.6": {
				Label:    "Z.ai GLM-4.6",
				Supports: &compat_oai.Multimodal,
				Versions: []string{"glm-4.6"},
			},
		},
	}
}

// Name implements genkit.Plugin.
func (c *Compat) Name() string {
	return c.Provider
}

// WithModel makes sure id is defined on Init, using default options when it is not predefined
func (c *Compat) WithModel(id string) *Compat {
	if id == "" {
		return c
	}
	if c.Models == nil {
		c.Models = make(map[string]ai.ModelOptions)
	}
	if _, ok := c.Models[id]; !ok {
		c.Models[id] = ai.ModelOptions{
			Label:    fmt.Sprintf("%s %s", c.Provider, id),
			Supports: &compat_oai.Multimodal,
			Versions: []string{id},
		}
	}
	return c
}

// Init implements genkit.Plugin.
func (c *Compat) Init(ctx context.Context) []api.Action {
	if c.APIKey == "" {
		panic(fmt.Sprintf("%s plugin initialization failed: apiKey is required", c.Provider))
	}

	if c.openAICompatible == nil {
		c.openAICompatible = &compat_oai.OpenAICompatible{}
	}
	c.openAICompatible.Opts = []option.RequestOption{
		option.WithAPIKey(c.APIKey),
		option.WithBaseURL(c.BaseURL),
	}
	c.openAICompatible.Provider = c.Provider

	var actions []api.Action
	actions = append(actions, c.openAICompatible.Init(ctx)...)

	for id, opts := range c.Models {
		actions = append(actions, c.DefineModel(id, opts).(api.Action))
	}
	return actions
}

// Model returns a model by name.
func (c *Compat) Model(g *genkit.Genkit, name string) ai.Model {
	return c.openAICompatible.Model(g, api.NewName(c.Provider, name))
}

// DefineModel defines a model with the given ID and options.
func (c *Compat) DefineModel(id string, opts ai.ModelOptions) ai.Model {
	return c.openAICompatible.DefineModel(c.Provider, id, opts)
}

// ListActions returns a list of actions provided by this plugin.
func (c *Compat) ListActions(ctx context.Context) []api.ActionDesc {
	return c.openAICompatible.ListActions(ctx)
}

// ResolveAction resolves an action by type and name.
func (c *Compat) ResolveAction(atype api.ActionType, name string) api.Action {
	return c.openAICompatible.ResolveAction(atype, name)
}
