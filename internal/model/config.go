package model

import "time"

// Config is the full runtime configuration, built from defaults, the config
// file, environment variables and CLI flags (in ascending priority).
type Config struct {
	Transcript  TranscriptConfig  `yaml:"transcript"`
	LLM         LLMConfig         `yaml:"llm"`
	Search      SearchConfig      `yaml:"search"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	Enrich      EnrichConfig      `yaml:"enrich"`
	Cache       CacheConfig       `yaml:"cache"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	HTTP        HTTPConfig        `yaml:"http"`
	Output      OutputConfig      `yaml:"output"`
}

// TranscriptConfig controls transcript acquisition.
type TranscriptConfig struct {
	// Languages is the preference order for caption tracks. The provider
	// falls back to any listed track when none of these match.
	Languages []string `yaml:"languages"`
}

// LLMConfig holds generative-text service configuration.
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, anthropic, ollama
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
	Timeout  int    `yaml:"timeout"` // seconds, per call

	// Per-stage generation knobs. Query synthesis wants short, focused
	// output; evaluation wants room for the full structured judgment.
	QueryTemperature float32 `yaml:"query_temperature"`
	QueryMaxTokens   int     `yaml:"query_max_tokens"`
	EvalTemperature  float32 `yaml:"eval_temperature"`
	EvalMaxTokens    int     `yaml:"eval_max_tokens"`

	HTTPProxy  string `yaml:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty"`
	NoProxy    string `yaml:"no_proxy,omitempty"`
}

// SearchConfig holds web-search service configuration.
type SearchConfig struct {
	APIKey   string `yaml:"api_key,omitempty"`
	EngineID string `yaml:"engine_id,omitempty"` // Custom Search engine (cx) identifier
	BaseURL  string `yaml:"base_url,omitempty"`

	ResultsPerQuery int `yaml:"results_per_query"` // Top-K cap per query
}

// PipelineConfig bounds the evaluation pipeline itself.
type PipelineConfig struct {
	MaxQueries     int           `yaml:"max_queries"`      // Cap N on synthesized queries
	MaxPromptRunes int           `yaml:"max_prompt_runes"` // Leading transcript window for prompts
	Timeout        time.Duration `yaml:"timeout"`          // Whole-request timeout
}

// EnrichConfig controls the optional evidence-page snippet enricher.
type EnrichConfig struct {
	Enabled         bool  `yaml:"enabled"`
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`
	MinSnippetRunes int   `yaml:"min_snippet_runes"` // Only snippets shorter than this get enriched
}

// CacheConfig controls search-response caching. Transcripts are never
// cached: each evaluation is a fresh fetch.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// RateLimitConfig bounds outbound request rates per host.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// ConcurrencyConfig bounds parallel work.
type ConcurrencyConfig struct {
	SearchWorkers int `yaml:"search_workers"` // Concurrent per-query searches
	EnrichWorkers int `yaml:"enrich_workers"`
	BatchWorkers  int `yaml:"batch_workers"` // Concurrent video evaluations in batch mode
}

// HTTPConfig applies to all plain HTTP collaborators (transcript source,
// search service, enricher).
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout"`
	UserAgent  string        `yaml:"user_agent"`
	HTTPProxy  string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty"`
	NoProxy    string        `yaml:"no_proxy,omitempty"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns the documented defaults. The caps and the truncation
// window are deliberate fixed constants, tunable via config rather than
// inferred at runtime.
func DefaultConfig() *Config {
	return &Config{
		Transcript: TranscriptConfig{
			Languages: []string{"en"},
		},
		LLM: LLMConfig{
			Provider:         "openai",
			Timeout:          30,
			QueryTemperature: 0.3,
			QueryMaxTokens:   150,
			EvalTemperature:  0.7,
			EvalMaxTokens:    1000,
		},
		Search: SearchConfig{
			ResultsPerQuery: 5,
		},
		Pipeline: PipelineConfig{
			MaxQueries:     4,
			MaxPromptRunes: 24000,
			Timeout:        2 * time.Minute,
		},
		Enrich: EnrichConfig{
			Enabled:         false,
			MaxBodyBytes:    512 * 1024,
			MinSnippetRunes: 80,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     15 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Concurrency: ConcurrencyConfig{
			SearchWorkers: 3,
			EnrichWorkers: 4,
			BatchWorkers:  4,
		},
		HTTP: HTTPConfig{
			Timeout:   20 * time.Second,
			UserAgent: "Veritube/0.1 (+https://github.com/ppiankov/veritube)",
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
