package model

// Config holds the complete marincop configuration
type Config struct {
	Org          string            `yaml:"org" mapstructure:"org"`
	Company      string            `yaml:"company" mapstructure:"company"`
	Currency     string            `yaml:"currency" mapstructure:"currency"`
	Store        StoreConfig       `yaml:"store" mapstructure:"store"`
	LLM          LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Extraction   ExtractionConfig  `yaml:"extraction" mapstructure:"extraction"`
	Log          LogConfig         `yaml:"log" mapstructure:"log"`
}

// StoreConfig selects and configures the claim store backend
type StoreConfig struct {
	// Driver: "json", "sqlite", "postgres", "memory"
	Driver   string `yaml:"driver" mapstructure:"driver"`
	Path     string `yaml:"path" mapstructure:"path"`
	DSN      string `yaml:"dsn" mapstructure:"dsn"`
	MaxConns int32  `yaml:"max_conns" mapstructure:"max_conns"`
}

// LLMConfig configures the optional extraction oracle
type LLMConfig struct {
	// Provider: "openai", "ollama", "" (disabled)
	Provider string `yaml:"provider" mapstructure:"provider"`
	Model    string `yaml:"model" mapstructure:"model"`
	// APIKey is read from OPENAI_API_KEY and never written to disk
	APIKey        string  `yaml:"-" mapstructure:"-"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	Timeout       int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MinConfidence float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
	MaxTokens     int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	HTTPProxy     string  `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy    string  `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy       string  `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// CacheConfig configures the oracle reply cache
type CacheConfig struct {
	Enabled   bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir       string `yaml:"dir" mapstructure:"dir"`
	MemoryTTL int    `yaml:"memory_ttl" mapstructure:"memory_ttl"` // minutes
	DiskTTL   int    `yaml:"disk_ttl" mapstructure:"disk_ttl"`     // hours
}

// RateLimitConfig bounds oracle request rate per provider
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig controls batch drafting parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ExtractionConfig bounds notification text
type ExtractionConfig struct {
	MaxChars     int `yaml:"max_chars" mapstructure:"max_chars"`
	SummaryChars int `yaml:"summary_chars" mapstructure:"summary_chars"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Org:      "NOVA",
		Company:  "Nova Carriers",
		Currency: "USD",
		Store: StoreConfig{
			Driver:   "json",
			Path:     "data/claims.json",
			MaxConns: 4,
		},
		LLM: LLMConfig{
			Provider:      "", // Disabled by default
			Timeout:       20,
			MinConfidence: 0.5,
			MaxTokens:     1200,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".marincop-cache",
			MemoryTTL: 30,
			DiskTTL:   24 * 7,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Extraction: ExtractionConfig{
			MaxChars:     20000,
			SummaryChars: 400,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
