package model

import "time"

// Config is the complete thermoparam configuration
type Config struct {
	Resolve      ResolveConfig     `yaml:"resolve" mapstructure:"resolve"`
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	S3           S3Config          `yaml:"s3" mapstructure:"s3"`
	Output       OutputConfig      `yaml:"output" mapstructure:"output"`
	Logging      LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// ResolveConfig controls substance matching
type ResolveConfig struct {
	Scheme string `yaml:"scheme" mapstructure:"scheme"` // cas, name, iupac_name, smiles, inchi, formula
}

// HTTPConfig controls downloads of remote parameter libraries
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent    string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxRetries   int           `yaml:"max_retries" mapstructure:"max_retries"`
	InsecureTLS  bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// RateLimitConfig is applied per library host
type RateLimitConfig struct {
	RequestsPerSecond float64            `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int                `yaml:"burst_size" mapstructure:"burst_size"`
	Hosts             map[string]float64 `yaml:"hosts,omitempty" mapstructure:"hosts"` // requests per second by host
}

// CacheConfig controls caching of downloaded library files.
// Resolution results are never cached.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig bounds parallel work
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"` // batch jobs in flight
	Loaders int `yaml:"loaders" mapstructure:"loaders"` // libraries loaded in parallel per request
}

// S3Config configures access to s3:// library locations
type S3Config struct {
	Endpoint        string `yaml:"endpoint" mapstructure:"endpoint"`
	Region          string `yaml:"region,omitempty" mapstructure:"region"`
	AccessKeyID     string `yaml:"access_key_id,omitempty" mapstructure:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty" mapstructure:"secret_access_key"`
	Secure          bool   `yaml:"secure" mapstructure:"secure"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Format  string `yaml:"format" mapstructure:"format"` // json, yaml, text
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LoggingConfig controls console and file logging
type LoggingConfig struct {
	Level     string `yaml:"level" mapstructure:"level"`                     // none, normal, debug
	File      string `yaml:"file,omitempty" mapstructure:"file"`             // optional log file
	FileLevel string `yaml:"file_level,omitempty" mapstructure:"file_level"` // none, normal, debug
	FileMode  string `yaml:"file_mode,omitempty" mapstructure:"file_mode"`   // append, overwrite
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Resolve: ResolveConfig{
			Scheme: SchemeName.String(),
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "thermoparam/0.1 (+https://github.com/ppiankov/thermoparam)",
			MaxBodyBytes: 64 << 20,
			MaxRetries:   3,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "",
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
			Loaders: 4,
		},
		S3: S3Config{
			Endpoint: "s3.amazonaws.com",
			Secure:   true,
		},
		Output: OutputConfig{
			Format: "json",
		},
		Logging: LoggingConfig{
			Level:     "normal",
			FileLevel: "none",
			FileMode:  "overwrite",
		},
	}
}
