package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

var configEnvKeys = []string{
	"APP_NAME", "ENVIRONMENT", "LOG_LEVEL", "ENABLE_METRICS", "METRICS_PATH",
	"SECRETS_MANAGER_ENABLED", "AWS_REGION", "AWS_SECRET_NAME", "AWS_PROFILE",
	"SECRETS_TIMEOUT", "PORT", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"ENABLE_REQUEST_LOGGING", "ORDER_LATENCY", "ORDER_LATENCY_JITTER",
}

// isolateEnv unsets every key the loader reads, in any spelling, and moves
// into an empty directory so a developer's .env file cannot leak into the test.
func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if slices.Contains(configEnvKeys, strings.ToUpper(key)) {
			unsetenv(t, key)
		}
	}
	for _, key := range configEnvKeys {
		unsetenv(t, key)
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

// unsetenv removes key for the duration of the test; t.Setenv restores it.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unsetenv %s: %v", key, err)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolateEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.AppName != defaultAppName {
		t.Fatalf("unexpected app name %q", cfg.AppName)
	}
	if cfg.Environment != "local" {
		t.Fatalf("unexpected environment %q", cfg.Environment)
	}
	if !cfg.EnableMetrics || cfg.MetricsPath != "/metrics" {
		t.Fatalf("expected metrics enabled on /metrics, got %v %q", cfg.EnableMetrics, cfg.MetricsPath)
	}
	if cfg.SecretsEnabled || cfg.ShouldFetchSecrets() {
		t.Fatalf("secrets must be disabled by default")
	}
	if cfg.SecretsTimeout != 10*time.Second {
		t.Fatalf("unexpected secrets timeout: %s", cfg.SecretsTimeout)
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("ENVIRONMENT", "staging")
	t.Setenv("SECRETS_MANAGER_ENABLED", "true")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("AWS_SECRET_NAME", "order-service/staging")
	t.Setenv("AWS_PROFILE", "ops")
	t.Setenv("SECRETS_TIMEOUT", "3s")
	t.Setenv("ENABLE_METRICS", "off")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" || cfg.Environment != "staging" {
		t.Fatalf("expected overridden port and environment, got %s %s", cfg.Port, cfg.Environment)
	}
	if !cfg.ShouldFetchSecrets() {
		t.Fatalf("expected secrets to be fetched")
	}
	if cfg.AWSRegion != "eu-west-1" || cfg.AWSSecretName != "order-service/staging" || cfg.AWSProfile != "ops" {
		t.Fatalf("unexpected AWS settings: %+v", cfg)
	}
	if cfg.SecretsTimeout != 3*time.Second {
		t.Fatalf("unexpected secrets timeout %s", cfg.SecretsTimeout)
	}
	if cfg.EnableMetrics {
		t.Fatalf("expected metrics to be disabled")
	}
}

func TestShouldFetchSecrets(t *testing.T) {
	testCases := []struct {
		name    string
		enabled bool
		secret  string
		want    bool
	}{
		{"disabled without name", false, "", false},
		{"disabled with name", false, "demo", false},
		{"enabled without name", true, "", false},
		{"enabled with blank name", true, "   ", false},
		{"enabled with name", true, "demo", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{SecretsEnabled: tc.enabled, AWSSecretName: tc.secret}
			if got := cfg.ShouldFetchSecrets(); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolateEnv(t)

	yamlPath := writeFile(t, dir, "config.yaml", `
app_name: From YAML
environment: yaml
port: "7000"
log_level: debug
secrets:
  enabled: true
  region: us-east-1
  secret_name: from-yaml
  timeout: 2s
rate_limit:
  rps: 5
  burst: 10
`)
	envPath := writeFile(t, dir, "custom.env", "environment=dotenv\nAWS_SECRET_NAME=from-dotenv\n")
	t.Setenv("PORT", "7100")

	port := "7200"
	cfg, err := Load(&CLIOverrides{ConfigFile: yamlPath, EnvFile: envPath, Port: &port})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.AppName != "From YAML" {
		t.Fatalf("expected YAML app name, got %q", cfg.AppName)
	}
	if cfg.Environment != "dotenv" {
		t.Fatalf("expected dotenv to override YAML, got %q", cfg.Environment)
	}
	if cfg.AWSSecretName != "from-dotenv" {
		t.Fatalf("expected dotenv secret name, got %q", cfg.AWSSecretName)
	}
	if cfg.Port != "7200" {
		t.Fatalf("expected CLI port to win, got %q", cfg.Port)
	}
	if cfg.SecretsTimeout != 2*time.Second || cfg.RateLimitRPS != 5 || cfg.RateLimitBurst != 10 {
		t.Fatalf("unexpected YAML values: %+v", cfg)
	}
}

func TestLoadEnvironmentBeatsDotenv(t *testing.T) {
	dir := isolateEnv(t)
	writeFile(t, dir, ".env", "AWS_SECRET_NAME=from-dotenv\nLOG_LEVEL=debug\n")
	t.Setenv("AWS_SECRET_NAME", "from-env")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AWSSecretName != "from-env" {
		t.Fatalf("expected environment to win, got %q", cfg.AWSSecretName)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected dotenv to fill unset values, got %q", cfg.LogLevel)
	}
	if _, set := os.LookupEnv("LOG_LEVEL"); set {
		t.Fatalf("dotenv values must not leak into the process environment")
	}
}

func TestLoadEmptyEnvironmentValueBeatsDotenv(t *testing.T) {
	dir := isolateEnv(t)
	writeFile(t, dir, ".env", "SECRETS_MANAGER_ENABLED=true\nAWS_SECRET_NAME=demo\nAWS_PROFILE=ops\n")
	t.Setenv("AWS_SECRET_NAME", "")
	t.Setenv("AWS_PROFILE", "  ")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AWSSecretName != "" || cfg.AWSProfile != "" {
		t.Fatalf("expected empty environment values to win, got %q %q", cfg.AWSSecretName, cfg.AWSProfile)
	}
	if !cfg.SecretsEnabled || cfg.ShouldFetchSecrets() {
		t.Fatalf("expected secrets enabled but not fetched, got %+v", cfg)
	}
}

func TestLoadEmptyTypedValueKeepsLowerLayer(t *testing.T) {
	dir := isolateEnv(t)
	writeFile(t, dir, ".env", "SECRETS_TIMEOUT=4s\nRATE_LIMIT_BURST=7\n")
	t.Setenv("SECRETS_TIMEOUT", "")
	t.Setenv("RATE_LIMIT_BURST", "")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.SecretsTimeout != 4*time.Second || cfg.RateLimitBurst != 7 {
		t.Fatalf("expected dotenv values to survive empty typed overrides, got %s %d", cfg.SecretsTimeout, cfg.RateLimitBurst)
	}
}

func TestLoadMatchesEnvironmentNamesIgnoringCase(t *testing.T) {
	isolateEnv(t)
	t.Setenv("aws_secret_name", "lower")
	t.Setenv("Secrets_Manager_Enabled", "true")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AWSSecretName != "lower" || !cfg.ShouldFetchSecrets() {
		t.Fatalf("expected mixed-case names to be honoured, got %+v", cfg)
	}

	t.Setenv("AWS_SECRET_NAME", "upper")
	cfg, err = Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.AWSSecretName != "upper" {
		t.Fatalf("expected the upper-case name to win, got %q", cfg.AWSSecretName)
	}
}

func TestLoadMissingExplicitEnvFile(t *testing.T) {
	dir := isolateEnv(t)

	_, err := Load(&CLIOverrides{EnvFile: filepath.Join(dir, "missing.env")})
	if err == nil {
		t.Fatalf("expected error for missing explicit env file")
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	testCases := []struct {
		key   string
		value string
	}{
		{"SECRETS_MANAGER_ENABLED", "maybe"},
		{"ENABLE_METRICS", "2"},
		{"SECRETS_TIMEOUT", "soon"},
		{"SECRETS_TIMEOUT", "-1s"},
		{"RATE_LIMIT_RPS", "fast"},
		{"RATE_LIMIT_BURST", "-3"},
		{"LOG_LEVEL", "verbose"},
		{"ORDER_LATENCY", "-5ms"},
		{"METRICS_PATH", "metrics"},
		{"METRICS_PATH", "/health"},
		{"PORT", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			isolateEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load(nil)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
		})
	}
}

func TestNormalizeLogLevel(t *testing.T) {
	testCases := map[string]string{
		"INFO":     "info",
		"warning":  "warn",
		"Debug":    "debug",
		"CRITICAL": "fatal",
		"":         "info",
	}
	for raw, want := range testCases {
		got, err := NormalizeLogLevel(raw)
		if err != nil {
			t.Fatalf("NormalizeLogLevel(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("NormalizeLogLevel(%q) = %q, want %q", raw, got, want)
		}
	}
}
