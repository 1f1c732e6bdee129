package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the pipedex server configuration.
type Config struct {
	MCP       MCPConfig       `yaml:"mcp"`
	HTTP      HTTPConfig      `yaml:"http"`
	Pipedrive PipedriveConfig `yaml:"pipedrive"`
	Throttle  ThrottleConfig  `yaml:"throttle"`
	Database  DatabaseConfig  `yaml:"database"`
	Limits    LimitsConfig    `yaml:"limits"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// MCPConfig holds MCP transport settings.
type MCPConfig struct {
	Transport string `yaml:"transport"` // stdio, http (default: stdio)
	Listen    string `yaml:"listen"`    // streamable HTTP address when transport is http
}

// HTTPConfig holds settings for the operational HTTP server (health,
// usage, metrics). Port 0 disables it.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// PipedriveConfig holds CRM connection settings.
type PipedriveConfig struct {
	BaseURL  string       `yaml:"base_url"`
	APIToken string       `yaml:"api_token"`
	Budget   BudgetConfig `yaml:"budget"`
}

// BudgetConfig holds API call budget settings.
type BudgetConfig struct {
	DailyCallLimit   int64  `yaml:"daily_call_limit"`   // 0 = unlimited
	MonthlyCallLimit int64  `yaml:"monthly_call_limit"` // 0 = unlimited
	Action           string `yaml:"action"`             // "reject" | "warn" (default)
}

// ThrottleConfig holds remote call scheduling settings.
type ThrottleConfig struct {
	MinIntervalMs int `yaml:"min_interval_ms"`
	MaxConcurrent int `yaml:"max_concurrent"`
	CallTimeoutMs int `yaml:"call_timeout_ms"` // -1 disables the per-call timeout
}

// DatabaseConfig holds budget persistence settings. Empty addrs runs
// without persistence (in-memory counters only).
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// LimitsConfig holds read size settings.
type LimitsConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
	FuzzyCap        int `yaml:"fuzzy_cap"`
}

// AuthConfig holds operational API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

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
	if c.MCP.Transport == "" {
		c.MCP.Transport = "stdio"
	}
	if c.MCP.Listen == "" {
		c.MCP.Listen = ":8080"
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Pipedrive.BaseURL == "" {
		c.Pipedrive.BaseURL = "https://api.pipedrive.com/v1"
	}
	if c.Throttle.MinIntervalMs <= 0 {
		c.Throttle.MinIntervalMs = 250
	}
	if c.Throttle.MaxConcurrent <= 0 {
		c.Throttle.MaxConcurrent = 2
	}
	if c.Throttle.CallTimeoutMs == 0 {
		c.Throttle.CallTimeoutMs = 30000
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Limits.DefaultPageSize <= 0 {
		c.Limits.DefaultPageSize = 100
	}
	if c.Limits.MaxPageSize <= 0 {
		c.Limits.MaxPageSize = 500
	}
	if c.Limits.FuzzyCap <= 0 {
		c.Limits.FuzzyCap = 20
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	switch c.MCP.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("mcp.transport must be \"stdio\" or \"http\", got %q", c.MCP.Transport)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 0 and 65535, got %d", c.HTTP.Port)
	}
	if c.Pipedrive.APIToken == "" {
		return fmt.Errorf("pipedrive.api_token is required")
	}
	switch c.Pipedrive.Budget.Action {
	case "", "warn", "reject":
		// ok
	default:
		return fmt.Errorf(
			"pipedrive.budget.action must be \"warn\" or \"reject\", got %q",
			c.Pipedrive.Budget.Action,
		)
	}
	if c.Limits.MaxPageSize < c.Limits.DefaultPageSize {
		return fmt.Errorf("limits.max_page_size %d is below limits.default_page_size %d",
			c.Limits.MaxPageSize, c.Limits.DefaultPageSize)
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
