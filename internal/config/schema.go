package config

// Config holds slidedeck configuration.
// Stored at: {home}/config.yaml
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
	Generate     GenerateCfg               `mapstructure:"generate" yaml:"generate"`
}

// LLMProviderCfg configures an LLM provider.
type LLMProviderCfg struct {
	Type           string `mapstructure:"type" yaml:"type"`                       // "openai", "mock"
	Model          string `mapstructure:"model" yaml:"model"`                     // Model name
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`                 // API key (supports ${ENV_VAR} syntax)
	BaseURL        string `mapstructure:"base_url" yaml:"base_url,omitempty"`     // Optional API base URL
	RateLimit      int    `mapstructure:"rate_limit" yaml:"rate_limit"`           // Requests per minute
	MaxRetries     int    `mapstructure:"max_retries" yaml:"max_retries"`         // SDK transport retries
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // HTTP timeout
	Enabled        bool   `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg specifies default selections.
type DefaultsCfg struct {
	LLMProvider string `mapstructure:"llm_provider" yaml:"llm_provider"` // Default LLM provider
	Template    string `mapstructure:"template" yaml:"template"`         // Template file name under masters/, or a path
	Manual      string `mapstructure:"manual" yaml:"manual"`             // Slide manual file name under masters/, or a path
}

// GenerateCfg tunes the outline and detail model calls.
type GenerateCfg struct {
	Temperature    float64 `mapstructure:"temperature" yaml:"temperature"`
	DetailAttempts int     `mapstructure:"detail_attempts" yaml:"detail_attempts"` // Tries before giving up on unparsable detail output
	RetryDelayMS   int     `mapstructure:"retry_delay_ms" yaml:"retry_delay_ms"`
	TargetSlides   int     `mapstructure:"target_slides" yaml:"target_slides"` // Rough slide count asked of the outline
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openai": {
				Type:           "openai",
				Model:          "gpt-4.1",
				APIKey:         "${OPENAI_API_KEY}",
				RateLimit:      60,
				MaxRetries:     2,
				TimeoutSeconds: 300,
				Enabled:        true,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider: "openai",
			Template:    "slide.pptx",
			Manual:      "slide_manual.jsonl",
		},
		Generate: GenerateCfg{
			Temperature:    0.3,
			DetailAttempts: 3,
			RetryDelayMS:   500,
			TargetSlides:   10,
		},
	}
}

// GetLLMProvider returns an LLM provider config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled LLM providers.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
