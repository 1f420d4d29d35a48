package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL"`

	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// Model identifiers for the three inference capabilities
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	CaptionModel   string `envconfig:"CAPTION_MODEL" default:"gpt-4o-mini"`
	ReasoningModel string `envconfig:"REASONING_MODEL" default:"gpt-4o-mini"`

	// Named vector collection holding the curated rule corpus
	RulesCollection string `envconfig:"RULES_COLLECTION" default:"presentation_rules"`

	// Path to poppler's pdftoppm used for slide rendering; empty disables
	// rendering and visual analysis degrades to text-only measurements
	PdftoppmPath string `envconfig:"PDFTOPPM_PATH" default:"pdftoppm"`

	InferenceTimeoutSecs int `envconfig:"INFERENCE_TIMEOUT_SECS" default:"60"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("DECKRAY", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

func (c *Config) HasOpenAI() bool {
	return c.OpenAIAPIKey != ""
}
