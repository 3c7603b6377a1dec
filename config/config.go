package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// DefaultConfigFile is read when present; environment variables always win.
const DefaultConfigFile = "config.yaml"

// Config aggregates all application configuration
type Config struct {
	AI      AIConfig      `yaml:"ai"`
	Amadeus AmadeusConfig `yaml:"amadeus"`
	Agent   AgentConfig   `yaml:"agent"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
}

type AIConfig struct {
	Plugin string       `yaml:"plugin" env:"AI_PLUGIN" env-default:"openai"`
	OpenAI OpenAIConfig `yaml:"openai"`
	Zai    ZaiConfig    `yaml:"zai"`
	Gemini GeminiConfig `yaml:"gemini"`
	Ollama OllamaConfig `yaml:"ollama"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key" env:"OPENAI_API_KEY"`
	Model   string `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1/"`
}

type ZaiConfig struct {
	APIKey string `yaml:"api_key" env:"ZAI_API_KEY"`
	Model  string `yaml:"model" env:"ZAI_MODEL" env-default:"glm-4.7-flash"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key" env:"GEMINI_API_KEY"`
	Model  string `yaml:"model" env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`
}

type OllamaConfig struct {
	Model   string `yaml:"model" env:"OLLAMA_MODEL" env-default:"qwen3:4b"`
	BaseURL string `yaml:"base_url" env:"OLLAMA_BASE_URL" env-default:"http://localhost:11434"`
	// Timeout applies to the ollama-http plugin only
	Timeout time.Duration `yaml:"timeout" env:"OLLAMA_TIMEOUT" env-default:"120s"`
}

// AmadeusConfig holds the API credentials. They are not validated here;
// missing credentials surface as authentication failures at tool time.
type AmadeusConfig struct {
	ClientID      string        `yaml:"client_id" env:"AMADEUS_CLIENT_ID,API_KEY"`
	ClientSecret  string        `yaml:"client_secret" env:"AMADEUS_CLIENT_SECRET,API_SECRET"`
	Production    bool          `yaml:"production" env:"AMADEUS_PRODUCTION" env-default:"false"`
	BaseURL       string        `yaml:"base_url" env:"AMADEUS_BASE_URL"`
	Timeout       time.Duration `yaml:"timeout" env:"AMADEUS_TIMEOUT" env-default:"30s"`
	LocationLimit int           `yaml:"location_limit" env:"AMADEUS_LOCATION_LIMIT" env-default:"5"`
}

type AgentConfig struct {
	Engine        string `yaml:"engine" env:"AGENT_ENGINE" env-default:"react"`
	MaxIterations int    `yaml:"max_iterations" env:"AGENT_MAX_ITERATIONS" env-default:"15"`
	Verbose       bool   `yaml:"verbose" env:"AGENT_VERBOSE" env-default:"true"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled" env:"CACHE_ENABLED" env-default:"false"`
	Driver  string        `yaml:"driver" env:"CACHE_DRIVER" env-default:"memory"`
	DSN     string        `yaml:"dsn" env:"CACHE_DSN" env-default:"flightfinder.db"`
	TTL     time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"24h"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// Load reads .env (if present), then config.yaml and environment variables
// Priority: Env Vars > Config File > Defaults
func Load() (*Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom reads the given YAML file if it exists, falling back to env vars only.
func LoadFrom(path string) (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env config: %w", err)
		}
	}

	return &cfg, nil
}
