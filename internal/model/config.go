package model

import "time"

// Config holds all runtime settings for the dashboard
type Config struct {
	Source       SourceConfig      `yaml:"source"`
	HTTP         HTTPConfig        `yaml:"http"`
	Cache        CacheConfig       `yaml:"cache"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting"`
	Consensus    ConsensusConfig   `yaml:"consensus"`
	Output       OutputConfig      `yaml:"output"`
}

// SourceConfig says where the JSON artifacts live
type SourceConfig struct {
	Location  string `yaml:"location"`   // http(s) base URL or local directory
	CacheBust bool   `yaml:"cache_bust"` // append ?v=<version> to HTTP requests
}

// HTTPConfig configures artifact fetching over HTTP
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty"`
	NoProxy      string        `yaml:"no_proxy,omitempty"`
}

// CacheConfig configures the artifact body cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig bounds parallel party-file fetches
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// RateLimitConfig limits requests per artifact host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// ConsensusConfig holds defaults for the consensus view
type ConsensusConfig struct {
	Radius    int      `yaml:"radius"`
	MaxRadius int      `yaml:"max_radius"`
	Mode      string   `yaml:"mode"`             // all, explicit
	Models    []string `yaml:"models,omitempty"` // empty selects every model
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool   `yaml:"verbose"`
	JSON    bool   `yaml:"json"`
	Color   string `yaml:"color"` // auto, always, never
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Location:  ".",
			CacheBust: true,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Manifesto/0.1 (+https://github.com/ppiankov/manifesto)",
			MaxBodyBytes: 50_000_000,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 8,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 20,
			BurstSize:         10,
		},
		Consensus: ConsensusConfig{
			Radius:    0,
			MaxRadius: 1000,
			Mode:      string(FilterAll),
		},
		Output: OutputConfig{
			Color: "auto",
		},
	}
}
