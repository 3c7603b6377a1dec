package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/ollama"
	"github.com/va6996/flightfinder/agents"
	"github.com/va6996/flightfinder/bootstrap/compat"
	"github.com/va6996/flightfinder/config"
	"github.com/va6996/flightfinder/log"
	"github.com/va6996/flightfinder/orm"
	"github.com/va6996/flightfinder/plugins"
	"github.com/va6996/flightfinder/plugins/amadeus"
	"github.com/va6996/flightfinder/plugins/core"
	"github.com/va6996/flightfinder/plugins/gemini"
	ollamahttp "github.com/va6996/flightfinder/plugins/ollama"
	"github.com/va6996/flightfinder/tools"
)

// App holds the initialized components of the application
type App struct {
	FlightAgent *agents.FlightAgent
	Amadeus     *amadeus.Client
	Genkit      *genkit.Genkit
	Registry    *tools.Registry
	// Model is nil when the LLM is reached without a Genkit plugin
	Model ai.Model
	LLM   plugins.LLMClient

	closers []io.Closer
}

// Close releases the LLM client and cache connections
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Setup initializes the application components based on the configuration
func Setup(ctx context.Context, cfg *config.Config) (*App, error) {
	app := &App{}

	// 1. Setup Genkit with AI Plugin
	if err := setupModel(ctx, cfg.AI, app); err != nil {
		return nil, err
	}

	// 2. Optional reference-data cache
	var opts []amadeus.Option
	cache, closer, err := setupCache(cfg.Cache)
	if err != nil {
		app.Close()
		return nil, err
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}
	if cache != nil {
		log.Infof(ctx, "Caching location lookups in %s for %s", cfg.Cache.Driver, cfg.Cache.TTL)
		opts = append(opts, amadeus.WithCache(cache, cfg.Cache.TTL))
	}

	// 3. Init Tools Registry. Credentials are checked by the token endpoint, not here.
	app.Registry = tools.NewRegistry()
	if cfg.Amadeus.ClientID == "" || cfg.Amadeus.ClientSecret == "" {
		log.Warnf(ctx, "AMADEUS_CLIENT_ID or AMADEUS_CLIENT_SECRET is empty; flight tools will fail to authenticate")
	}
	app.Amadeus = amadeus.NewClient(cfg.Amadeus, app.Genkit, app.Registry, opts...)

	// 4. Init Agent
	factory, err := NewReasonerFactory(cfg.Agent, app)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.FlightAgent = agents.NewFlightAgent(core.NewRegexExtractor(), factory)

	log.Infof(ctx, "Flight agent ready (plugin: %s, engine: %s, tools: %v)", cfg.AI.Plugin, cfg.Agent.Engine, app.Registry.Names())
	return app, nil
}

func setupModel(ctx context.Context, cfg config.AIConfig, app *App) error {
	switch cfg.Plugin {
	case "ollama":
		log.Infof(ctx, "Using Ollama Plugin (Model: %s)...", cfg.Ollama.Model)
		ollamaPlugin := &ollama.Ollama{
			ServerAddress: cfg.Ollama.BaseURL,
		}
		app.Genkit = genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))

		// Define the model with capabilities - explicitly enable tool support
		app.Model = ollamaPlugin.DefineModel(app.Genkit, ollama.ModelDefinition{
			Name: cfg.Ollama.Model,
			Type: "chat",
		}, &ai.ModelOptions{
			Supports: &ai.ModelSupports{
				Multiturn:  true,
				SystemRole: true,
				Tools:      true,
				Media:      false,
			},
		})

	case "gemini":
		log.Infof(ctx, "Using Gemini Plugin (Model: %s)...", cfg.Gemini.Model)
		if cfg.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY must be set (or choose another AI_PLUGIN)")
		}
		app.Genkit = genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{
			APIKey: cfg.Gemini.APIKey,
		}))
		app.Model = googlegenai.GoogleAIModel(app.Genkit, cfg.Gemini.Model)

	case "gemini-sdk":
		log.Infof(ctx, "Using Gemini SDK (Model: %s)...", cfg.Gemini.Model)
		client, err := gemini.NewClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		app.Genkit = genkit.Init(ctx)
		app.LLM = client
		app.closers = append(app.closers, client)
		return nil

	case "ollama-http":
		log.Infof(ctx, "Using Ollama HTTP client (Model: %s)...", cfg.Ollama.Model)
		app.Genkit = genkit.Init(ctx)
		app.LLM = ollamahttp.NewClient(cfg.Ollama.BaseURL, cfg.Ollama.Model, cfg.Ollama.Timeout)
		return nil

	case "openai", "zai":
		var plugin *compat.Compat
		model := cfg.OpenAI.Model
		if cfg.Plugin == "zai" {
			if cfg.Zai.APIKey == "" {
				return fmt.Errorf("ZAI_API_KEY must be set (or choose another AI_PLUGIN)")
			}
			plugin = compat.NewZai(cfg.Zai.APIKey)
			model = cfg.Zai.Model
		} else {
			if cfg.OpenAI.APIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY must be set (or choose another AI_PLUGIN)")
			}
			plugin = compat.NewOpenAI(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
		}
		log.Infof(ctx, "Using %s Plugin (Model: %s)...", plugin.Name(), model)
		plugin.WithModel(model)
		app.Genkit = genkit.Init(ctx, genkit.WithPlugins(plugin))
		app.Model = plugin.Model(app.Genkit, model)

	default:
		return fmt.Errorf("unknown AI_PLUGIN %q (expected openai, zai, gemini, gemini-sdk, ollama or ollama-http)", cfg.Plugin)
	}

	app.LLM = agents.NewGenkitModel(app.Genkit, app.Model)
	return nil
}

// setupCache returns nil when caching is disabled
func setupCache(cfg config.CacheConfig) (amadeus.ResponseCache, io.Closer, error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}

	switch cfg.Driver {
	case "", "memory":
		return amadeus.NewSimpleCache(), nil, nil
	case "sqlite", "postgres":
		db, err := orm.Open(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get cache connection: %w", err)
		}
		store, err := orm.NewCacheStore(db)
		if err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		return store, sqlDB, nil
	default:
		return nil, nil, fmt.Errorf("unknown CACHE_DRIVER %q (expected memory, sqlite or postgres)", cfg.Driver)
	}
}

// NewReasonerFactory builds a fresh engine per query from the configured kind
func NewReasonerFactory(cfg config.AgentConfig, app *App) (agents.ReasonerFactory, error) {
	switch cfg.Engine {
	case "", "react":
		if app.LLM == nil {
			return nil, errors.New("react engine requires a language model")
		}
		return func() agents.Reasoner {
			return agents.NewReActExecutor(app.LLM, app.Registry,
				agents.WithMaxIterations(cfg.MaxIterations),
				agents.WithVerbose(cfg.Verbose),
			)
		}, nil
	case "native":
		if app.Model == nil {
			return nil, errors.New("native engine requires a Genkit model plugin (not gemini-sdk or ollama-http)")
		}
		return func() agents.Reasoner {
			return agents.NewNativeReasoner(app.Genkit, app.Registry, app.Model, cfg.MaxIterations)
		}, nil
	default:
		return nil, fmt.Errorf("unknown AGENT_ENGINE %q (expected react or native)", cfg.Engine)
	}
}
