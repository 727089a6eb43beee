package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultAppName        = "Order Service API"
	defaultEnvironment    = "local"
	defaultLogLevel       = "info"
	defaultMetricsPath    = "/metrics"
	defaultPort           = "8000"
	defaultSecretsTimeout = 10 * time.Second
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultEnvFile        = ".env"
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > Environment variables > dotenv file > YAML config > Defaults
//
// A Config is resolved once at startup and passed by value; nothing mutates it afterwards.
type Config struct {
	AppName       string
	Environment   string
	LogLevel      string
	EnableMetrics bool
	MetricsPath   string

	SecretsEnabled bool
	AWSRegion      string
	AWSSecretName  string
	AWSProfile     string
	SecretsTimeout time.Duration

	Port                 string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int

	OrderLatency       time.Duration
	OrderLatencyJitter time.Duration
}

// ShouldFetchSecrets reports whether the bootstrap has to contact the secret store.
func (c Config) ShouldFetchSecrets() bool {
	return c.SecretsEnabled && strings.TrimSpace(c.AWSSecretName) != ""
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	AppName              string        `yaml:"app_name"`
	Environment          string        `yaml:"environment"`
	LogLevel             string        `yaml:"log_level"`
	EnableMetrics        *bool         `yaml:"enable_metrics"`
	MetricsPath          string        `yaml:"metrics_path"`
	Secrets              yamlSecrets   `yaml:"secrets"`
	Port                 string        `yaml:"port"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
	OrderLatency         string        `yaml:"order_latency"`
	OrderLatencyJitter   string        `yaml:"order_latency_jitter"`
}

// yamlSecrets represents the secrets section in YAML.
type yamlSecrets struct {
	Enabled    *bool  `yaml:"enabled"`
	Region     string `yaml:"region"`
	SecretName string `yaml:"secret_name"`
	Profile    string `yaml:"profile"`
	Timeout    string `yaml:"timeout"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	EnvFile        string
	Port           *string
	LogLevel       *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// lookupFunc resolves a configuration key to its raw value.
type lookupFunc func(key string) (string, bool)

// Load extracts configuration from multiple sources with precedence:
// CLI flags > Environment variables > dotenv file > YAML config > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, err
		}
	}

	envFile := defaultEnvFile
	explicitEnvFile := false
	if overrides != nil && overrides.EnvFile != "" {
		envFile = overrides.EnvFile
		explicitEnvFile = true
	}
	dotenv, err := loadDotenv(envFile, explicitEnvFile)
	if err != nil {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	if err := applyLookup(&cfg, dotenv); err != nil {
		return Config{}, err
	}

	if err := applyLookup(&cfg, processEnv()); err != nil {
		return Config{}, err
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		AppName:              defaultAppName,
		Environment:          defaultEnvironment,
		LogLevel:             defaultLogLevel,
		EnableMetrics:        true,
		MetricsPath:          defaultMetricsPath,
		SecretsTimeout:       defaultSecretsTimeout,
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// loadDotenv reads a dotenv file without touching the process environment.
// A missing default file is not an error; a missing explicit one is.
func loadDotenv(path string, required bool) (lookupFunc, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return func(string) (string, bool) { return "", false }, nil
		}
		return nil, err
	}

	normalized := make(map[string]string, len(values))
	for key, value := range values {
		normalized[strings.ToUpper(key)] = value
	}
	return func(key string) (string, bool) {
		value, ok := normalized[key]
		return value, ok
	}, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	setString(&cfg.AppName, yamlCfg.AppName)
	setString(&cfg.Environment, yamlCfg.Environment)
	setString(&cfg.LogLevel, yamlCfg.LogLevel)
	setString(&cfg.MetricsPath, yamlCfg.MetricsPath)
	setString(&cfg.AWSRegion, yamlCfg.Secrets.Region)
	setString(&cfg.AWSSecretName, yamlCfg.Secrets.SecretName)
	setString(&cfg.AWSProfile, yamlCfg.Secrets.Profile)
	setString(&cfg.Port, yamlCfg.Port)

	if yamlCfg.EnableMetrics != nil {
		cfg.EnableMetrics = *yamlCfg.EnableMetrics
	}
	if yamlCfg.Secrets.Enabled != nil {
		cfg.SecretsEnabled = *yamlCfg.Secrets.Enabled
	}
	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}
	if yamlCfg.RateLimit.RPS != nil {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}
	if yamlCfg.RateLimit.Burst != nil {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	durations := []struct {
		field string
		raw   string
		dst   *time.Duration
	}{
		{"secrets.timeout", yamlCfg.Secrets.Timeout, &cfg.SecretsTimeout},
		{"shutdown_grace_period", yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{"read_header_timeout", yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{"write_timeout", yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{"idle_timeout", yamlCfg.IdleTimeout, &cfg.IdleTimeout},
		{"order_latency", yamlCfg.OrderLatency, &cfg.OrderLatency},
		{"order_latency_jitter", yamlCfg.OrderLatencyJitter, &cfg.OrderLatencyJitter},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		value, err := time.ParseDuration(d.raw)
		if err != nil {
			return newConfigError(d.field, d.raw, err)
		}
		*d.dst = value
	}

	return nil
}

// processEnv looks variables up in the process environment ignoring case. An
// exact upper-case name wins over any other spelling.
func processEnv() lookupFunc {
	folded := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		upper := strings.ToUpper(key)
		if _, seen := folded[upper]; seen && key != upper {
			continue
		}
		folded[upper] = value
	}
	return func(key string) (string, bool) {
		value, ok := folded[strings.ToUpper(key)]
		return value, ok
	}
}

// applyLookup applies values from an environment-like source. A string
// setting that is present but empty still overrides lower layers; typed
// settings ignore empty values.
func applyLookup(cfg *Config, lookup lookupFunc) error {
	present := func(key string) (string, bool) {
		raw, ok := lookup(key)
		return strings.TrimSpace(raw), ok
	}
	get := func(key string) (string, bool) {
		raw, ok := present(key)
		return raw, ok && raw != ""
	}

	strs := []struct {
		key string
		dst *string
	}{
		{"APP_NAME", &cfg.AppName},
		{"ENVIRONMENT", &cfg.Environment},
		{"LOG_LEVEL", &cfg.LogLevel},
		{"METRICS_PATH", &cfg.MetricsPath},
		{"AWS_REGION", &cfg.AWSRegion},
		{"AWS_SECRET_NAME", &cfg.AWSSecretName},
		{"AWS_PROFILE", &cfg.AWSProfile},
		{"PORT", &cfg.Port},
	}
	for _, s := range strs {
		if raw, ok := present(s.key); ok {
			*s.dst = raw
		}
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{"ENABLE_METRICS", &cfg.EnableMetrics},
		{"SECRETS_MANAGER_ENABLED", &cfg.SecretsEnabled},
		{"ENABLE_REQUEST_LOGGING", &cfg.EnableRequestLogging},
	}
	for _, b := range bools {
		raw, ok := get(b.key)
		if !ok {
			continue
		}
		value, err := parseBool(raw)
		if err != nil {
			return newConfigError(b.key, raw, err)
		}
		*b.dst = value
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SECRETS_TIMEOUT", &cfg.SecretsTimeout},
		{"ORDER_LATENCY", &cfg.OrderLatency},
		{"ORDER_LATENCY_JITTER", &cfg.OrderLatencyJitter},
	}
	for _, d := range durations {
		raw, ok := get(d.key)
		if !ok {
			continue
		}
		value, err := time.ParseDuration(raw)
		if err != nil {
			return newConfigError(d.key, raw, err)
		}
		*d.dst = value
	}

	if raw, ok := get("RATE_LIMIT_RPS"); ok {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return newConfigError("RATE_LIMIT_RPS", raw, err)
		}
		cfg.RateLimitRPS = value
	}

	if raw, ok := get("RATE_LIMIT_BURST"); ok {
		value, err := strconv.Atoi(raw)
		if err != nil {
			return newConfigError("RATE_LIMIT_BURST", raw, err)
		}
		cfg.RateLimitBurst = value
	}

	return nil
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Port) == "" {
		return newConfigError("PORT", cfg.Port, errors.New("must not be empty"))
	}
	if _, err := NormalizeLogLevel(cfg.LogLevel); err != nil {
		return newConfigError("LOG_LEVEL", cfg.LogLevel, err)
	}
	if cfg.RateLimitRPS < 0 {
		return newConfigError("RATE_LIMIT_RPS", strconv.FormatFloat(cfg.RateLimitRPS, 'f', -1, 64), errors.New("must be >= 0"))
	}
	if cfg.RateLimitBurst < 0 {
		return newConfigError("RATE_LIMIT_BURST", strconv.Itoa(cfg.RateLimitBurst), errors.New("must be >= 0"))
	}
	if cfg.SecretsTimeout <= 0 {
		return newConfigError("SECRETS_TIMEOUT", cfg.SecretsTimeout.String(), errors.New("must be positive"))
	}
	if cfg.OrderLatency < 0 || cfg.OrderLatencyJitter < 0 {
		return newConfigError("ORDER_LATENCY", cfg.OrderLatency.String(), errors.New("latency must be >= 0"))
	}
	if cfg.EnableMetrics && !strings.HasPrefix(cfg.MetricsPath, "/") {
		return newConfigError("METRICS_PATH", cfg.MetricsPath, errors.New("must start with /"))
	}
	if cfg.EnableMetrics && (cfg.MetricsPath == "/" || cfg.MetricsPath == "/health") {
		return newConfigError("METRICS_PATH", cfg.MetricsPath, errors.New("collides with a service route"))
	}
	return nil
}

// NormalizeLogLevel maps the accepted log level spellings onto zap level names.
func NormalizeLogLevel(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug":
		return "debug", nil
	case "info", "":
		return "info", nil
	case "warn", "warning":
		return "warn", nil
	case "error":
		return "error", nil
	case "critical", "fatal":
		return "fatal", nil
	default:
		return "", fmt.Errorf("unknown log level %q", raw)
	}
}

// parseBool accepts the usual spellings, including yes/no and on/off.
func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	return strconv.ParseBool(raw)
}

func setString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}
