package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the jobsift configuration.
type Config struct {
	HTTP    HTTPConfig        `yaml:"http"`
	Auth    AuthConfig        `yaml:"auth"`
	Source  SourceConfig      `yaml:"source"`
	Cache   CacheConfig       `yaml:"cache"`
	Facets  map[string]string `yaml:"facets"` // field -> display name
	Report  ReportConfig      `yaml:"report"`
	Logging LoggingConfig     `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SourceConfig holds job board settings.
type SourceConfig struct {
	RequestBase    string              `yaml:"request_base"` // JSON endpoint root, e.g. https://x.wd1.myworkdayjobs.com/wday/cxs/x/Careers
	SiteURL        string              `yaml:"site_url"`     // browser-facing root
	SearchText     string              `yaml:"search_text"`
	AppliedFacets  map[string][]string `yaml:"applied_facets"`
	Limit          int                 `yaml:"limit"` // 0 = every matching posting
	TimeoutSec     int                 `yaml:"timeout_sec"`
	RatePerSec     float64             `yaml:"rate_per_sec"`
	Burst          int                 `yaml:"burst"`
	MaxRetries     int                 `yaml:"max_retries"`
	EnrichParallel int                 `yaml:"enrich_parallelism"`
}

// CacheConfig holds the posting detail cache settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration { return time.Duration(c.TTLSec) * time.Second }

// ReportConfig holds report sink settings.
type ReportConfig struct {
	Dir          string `yaml:"dir"`
	Prefix       string `yaml:"prefix"`
	Format       string `yaml:"format"` // html, markdown
	DateField    string `yaml:"date_field"`
	LastRunFile  string `yaml:"last_run_file"`
	Descriptions bool   `yaml:"descriptions"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Source.TimeoutSec <= 0 {
		c.Source.TimeoutSec = 15
	}
	if c.Source.RatePerSec <= 0 {
		c.Source.RatePerSec = 5
	}
	if c.Source.Burst <= 0 {
		c.Source.Burst = 1
	}
	if c.Source.MaxRetries <= 0 {
		c.Source.MaxRetries = 3
	}
	if c.Source.EnrichParallel <= 0 {
		c.Source.EnrichParallel = 4
	}
	c.Source.RequestBase = strings.TrimRight(c.Source.RequestBase, "/")
	c.Source.SiteURL = strings.TrimRight(c.Source.SiteURL, "/")
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 86400
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Report.Dir == "" {
		c.Report.Dir = "."
	}
	if c.Report.Prefix == "" {
		c.Report.Prefix = "jobs"
	}
	if c.Report.Format == "" {
		c.Report.Format = "html"
	}
	if c.Report.DateField == "" {
		c.Report.DateField = "startDate"
	}
	if c.Report.LastRunFile == "" {
		c.Report.LastRunFile = filepath.Join(c.Report.Dir, "last_run.txt")
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Source.RequestBase == "" {
		return fmt.Errorf("source.request_base is required")
	}
	if c.Source.Limit < 0 {
		return fmt.Errorf("source.limit must not be negative, got %d", c.Source.Limit)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache is enabled")
	}
	switch c.Report.Format {
	case "html", "markdown":
		// ok
	default:
		return fmt.Errorf("report.format must be \"html\" or \"markdown\", got %q", c.Report.Format)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
