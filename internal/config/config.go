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

	"github.com/kailas-cloud/ayat/internal/db"
	"github.com/kailas-cloud/ayat/internal/domain"
)

// Config holds the ayat API configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	TextStore   TextStoreConfig   `yaml:"text_store"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Generation  GenerationConfig  `yaml:"generation"`
	Search      SearchConfig      `yaml:"search"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
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

// VectorStoreConfig holds the valkey connection holding both retrieval collections.
type VectorStoreConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	DistanceMetric   string   `yaml:"distance_metric"` // cosine, ip, l2
}

// TextStoreConfig holds the PostgreSQL connection for canonical verse text.
type TextStoreConfig struct {
	DSN                string `yaml:"dsn"`
	MaxOpenConns       int    `yaml:"max_open_conns"`
	MaxIdleConns       int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeSec int    `yaml:"conn_max_lifetime_sec"`
	ReadinessTimeout   int    `yaml:"readiness_timeout_sec"`
	LookupTimeoutSec   int    `yaml:"lookup_timeout_sec"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string      `yaml:"provider"` // gateway, openai
	URL        string      `yaml:"url"`      // gateway base URL
	APIKey     string      `yaml:"api_key"`
	BaseURL    string      `yaml:"base_url"` // openai-compatible base URL
	Model      string      `yaml:"model"`
	Dimensions int         `yaml:"dimensions"`
	TimeoutSec int         `yaml:"timeout_sec"`
	Cache      CacheConfig `yaml:"cache"`
}

// CacheConfig holds embedding cache settings.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	TTLSec  int  `yaml:"ttl_sec"` // 0 = no expiry
}

// GenerationConfig holds generative backend and retry settings.
type GenerationConfig struct {
	APIKey            string  `yaml:"api_key"`
	BaseURL           string  `yaml:"base_url"`
	Model             string  `yaml:"model"`
	Temperature       float32 `yaml:"temperature"`
	MaxTokens         int     `yaml:"max_tokens"`
	TimeoutSec        int     `yaml:"timeout_sec"`
	MaxAttempts       int     `yaml:"max_attempts"`
	ShortRetryDelayMs int     `yaml:"short_retry_delay_ms"`
	ErrorRetryDelayMs int     `yaml:"error_retry_delay_ms"`
	MinChars          int     `yaml:"min_chars"`
	MinWords          int     `yaml:"min_words"`
}

// SearchConfig holds retrieval settings.
type SearchConfig struct {
	DenseCollection  string `yaml:"dense_collection"`
	SparseCollection string `yaml:"sparse_collection"`
	DefaultTopK      int    `yaml:"default_top_k"`
	MaxTopK          int    `yaml:"max_top_k"`
	TimeoutSec       int    `yaml:"timeout_sec"`
}

// Embedding provider names.
const (
	ProviderGateway = "gateway"
	ProviderOpenAI  = "openai"
)

// Seconds converts an integer seconds setting to a duration.
func Seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// Millis converts an integer milliseconds setting to a duration.
func Millis(n int) time.Duration { return time.Duration(n) * time.Millisecond }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

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
	vec := domain.DefaultVectorConfig()

	setInt(&c.HTTP.ReadTimeoutSec, 10)
	// A single answer may spend 60s embedding and 3x45s generating.
	setInt(&c.HTTP.WriteTimeoutSec, 240)
	setInt(&c.HTTP.ShutdownSec, 10)

	setInt(&c.VectorStore.ReadinessTimeout, 10)
	setString(&c.VectorStore.DistanceMetric, vec.DistanceMetric)

	setInt(&c.TextStore.MaxOpenConns, 10)
	setInt(&c.TextStore.MaxIdleConns, 5)
	setInt(&c.TextStore.ConnMaxLifetimeSec, 300)
	setInt(&c.TextStore.ReadinessTimeout, 10)
	setInt(&c.TextStore.LookupTimeoutSec, 10)

	setString(&c.Embedding.Provider, ProviderGateway)
	setString(&c.Embedding.Model, "bge-m3")
	setInt(&c.Embedding.Dimensions, vec.Dimensions)
	setInt(&c.Embedding.TimeoutSec, 60)

	setString(&c.Generation.BaseURL, "https://router.huggingface.co/v1")
	setString(&c.Generation.Model, "moonshotai/Kimi-K2-Instruct-0905")
	if c.Generation.Temperature <= 0 {
		c.Generation.Temperature = 0.7
	}
	setInt(&c.Generation.MaxTokens, 1200)
	setInt(&c.Generation.TimeoutSec, 45)
	setInt(&c.Generation.MaxAttempts, 3)
	setInt(&c.Generation.ShortRetryDelayMs, 2000)
	setInt(&c.Generation.ErrorRetryDelayMs, 3000)
	setInt(&c.Generation.MinChars, 100)
	setInt(&c.Generation.MinWords, 300)

	setString(&c.Search.DenseCollection, vec.DenseCollection)
	setString(&c.Search.SparseCollection, vec.SparseCollection)
	setInt(&c.Search.DefaultTopK, 5)
	setInt(&c.Search.MaxTopK, 50)
	setInt(&c.Search.TimeoutSec, 30)
}

func setInt(p *int, def int) {
	if *p <= 0 {
		*p = def
	}
}

func setString(p *string, def string) {
	if *p == "" {
		*p = def
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.VectorStore.Addrs) == 0 {
		return fmt.Errorf("vector_store.addrs is required")
	}
	if c.TextStore.DSN == "" {
		return fmt.Errorf("text_store.dsn is required")
	}
	switch c.Embedding.Provider {
	case ProviderGateway:
		if c.Embedding.URL == "" {
			return fmt.Errorf("embedding.url is required for the gateway provider")
		}
	case ProviderOpenAI:
		// ok
	default:
		return fmt.Errorf("embedding.provider must be \"gateway\" or \"openai\", got %q", c.Embedding.Provider)
	}
	if _, ok := db.ParseDistanceMetric(c.VectorStore.DistanceMetric); !ok {
		return fmt.Errorf("vector_store.distance_metric must be cosine, ip or l2, got %q", c.VectorStore.DistanceMetric)
	}
	for name, collection := range map[string]string{
		"search.dense_collection":  c.Search.DenseCollection,
		"search.sparse_collection": c.Search.SparseCollection,
	} {
		if !db.IsValidIdentifier(collection) {
			return fmt.Errorf("%s must match [a-zA-Z0-9_:-]+, got %q", name, collection)
		}
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Generation.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be at least 1, got %d", c.Generation.MaxAttempts)
	}
	if c.Search.MaxTopK < c.Search.DefaultTopK {
		return fmt.Errorf("search.max_top_k (%d) must be >= search.default_top_k (%d)",
			c.Search.MaxTopK, c.Search.DefaultTopK)
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
