package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Keyword search drivers.
const (
	KeywordDriverNone  = ""
	KeywordDriverAzure = "azure"
	KeywordDriverRedis = "redis"
)

// Config holds the ragrouter configuration.
type Config struct {
	HTTP          HTTPConfig    `yaml:"http"`
	OpenAI        OpenAIConfig  `yaml:"openai"`
	KeywordSearch KeywordConfig `yaml:"keyword_search"`
	Cache         CacheConfig   `yaml:"cache"`
	Router        RouterConfig  `yaml:"router"`
	Auth          AuthConfig    `yaml:"auth"`
	Logging       LoggingConfig `yaml:"logging"`
	SeedFiles     []string      `yaml:"seed_files"`
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
	MaxBodyBytes    int `yaml:"max_body_bytes"`
}

// OpenAIConfig holds the chat and embedding provider settings.
type OpenAIConfig struct {
	Endpoint            string `yaml:"endpoint"`
	APIKey              string `yaml:"api_key"`
	APIVersion          string `yaml:"api_version"`
	Azure               bool   `yaml:"azure"`
	ChatDeployment      string `yaml:"chat_deployment"`
	EmbeddingDeployment string `yaml:"embedding_deployment"`
	Dimensions          int    `yaml:"dimensions"`
	// SendDimensions forwards Dimensions to the embeddings API. Only text-embedding-3 models accept it.
	SendDimensions bool `yaml:"send_dimensions"`
}

// KeywordConfig selects and configures the keyword_search backend.
type KeywordConfig struct {
	Driver       string `yaml:"driver"` // "", azure, redis; empty with endpoint and api_key means azure
	Endpoint     string `yaml:"endpoint"`
	APIKey       string `yaml:"api_key"`
	Index        string `yaml:"index"`
	APIVersion   string `yaml:"api_version"`
	ContentField string `yaml:"content_field"`
	Language     string `yaml:"language"` // redis only
}

// CacheConfig holds the Redis connection used by the embedding cache and the redis keyword driver.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// RouterConfig holds tool parameters and sampling temperatures.
type RouterConfig struct {
	SemanticK   int               `yaml:"semantic_k"`
	KeywordTop  int               `yaml:"keyword_top"`
	ComparisonK int               `yaml:"comparison_k"`
	Temperature TemperatureConfig `yaml:"temperatures"`
}

// TemperatureConfig holds per-call sampling temperatures.
type TemperatureConfig struct {
	Classify  float32 `yaml:"classify"`
	Summarize float32 `yaml:"summarize"`
	Compare   float32 `yaml:"compare"`
	Fuse      float32 `yaml:"fuse"`
}

// NeedsRedis reports whether any component requires a Redis connection.
func (c *Config) NeedsRedis() bool {
	return c.Cache.Enabled || c.KeywordSearch.Driver == KeywordDriverRedis
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, if present, is loaded first.
func Load(env string) (Config, error) {
	_ = godotenv.Load()

	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
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
	if c.HTTP.Port <= 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 120 // a routed query makes up to four sequential model calls
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 10 << 20
	}
	if c.OpenAI.APIVersion == "" {
		c.OpenAI.APIVersion = "2024-02-15-preview"
	}
	if c.OpenAI.ChatDeployment == "" {
		c.OpenAI.ChatDeployment = "gpt-4"
	}
	if c.OpenAI.EmbeddingDeployment == "" {
		c.OpenAI.EmbeddingDeployment = "text-embedding-ada-002"
	}
	if c.OpenAI.Dimensions <= 0 {
		c.OpenAI.Dimensions = 1536
	}
	// Azure Search credentials alone enable the azure driver.
	if c.KeywordSearch.Driver == KeywordDriverNone && c.KeywordSearch.Endpoint != "" && c.KeywordSearch.APIKey != "" {
		c.KeywordSearch.Driver = KeywordDriverAzure
	}
	if c.KeywordSearch.Driver == KeywordDriverAzure && c.KeywordSearch.Index == "" {
		c.KeywordSearch.Index = "gptlike-index"
	}
	if c.KeywordSearch.ContentField == "" {
		c.KeywordSearch.ContentField = "content"
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Router.SemanticK <= 0 {
		c.Router.SemanticK = 3
	}
	if c.Router.KeywordTop <= 0 {
		c.Router.KeywordTop = 3
	}
	if c.Router.ComparisonK <= 0 {
		c.Router.ComparisonK = 5
	}
	t := &c.Router.Temperature
	if t.Classify <= 0 {
		t.Classify = 0.1
	}
	if t.Summarize <= 0 {
		t.Summarize = 0.3
	}
	if t.Compare <= 0 {
		t.Compare = 0.5
	}
	if t.Fuse <= 0 {
		t.Fuse = 0.7
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.OpenAI.Endpoint == "" {
		return fmt.Errorf("openai.endpoint is required")
	}
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("openai.api_key is required")
	}

	switch c.KeywordSearch.Driver {
	case KeywordDriverNone, KeywordDriverRedis:
		// ok
	case KeywordDriverAzure:
		if c.KeywordSearch.Endpoint == "" || c.KeywordSearch.APIKey == "" {
			return fmt.Errorf("keyword_search.endpoint and keyword_search.api_key are required for the azure driver")
		}
	default:
		return fmt.Errorf("keyword_search.driver must be \"\", \"azure\" or \"redis\", got %q", c.KeywordSearch.Driver)
	}

	if c.NeedsRedis() && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when the cache or the redis keyword driver is enabled")
	}

	for name, v := range map[string]float32{
		"classify":  c.Router.Temperature.Classify,
		"summarize": c.Router.Temperature.Summarize,
		"compare":   c.Router.Temperature.Compare,
		"fuse":      c.Router.Temperature.Fuse,
	} {
		if v > 2 {
			return fmt.Errorf("router.temperatures.%s must be <= 2, got %g", name, v)
		}
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
