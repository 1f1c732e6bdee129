package config

import "testing"

func validConfig() Config {
	cfg := Config{
		Pipedrive: PipedriveConfig{APIToken: "test-token"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.MCP.Transport != "stdio" {
		t.Errorf("expected Transport=stdio, got %q", cfg.MCP.Transport)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Pipedrive.BaseURL != "https://api.pipedrive.com/v1" {
		t.Errorf("expected default base URL, got %q", cfg.Pipedrive.BaseURL)
	}
	if cfg.Throttle.MinIntervalMs != 250 {
		t.Errorf("expected MinIntervalMs=250, got %d", cfg.Throttle.MinIntervalMs)
	}
	if cfg.Throttle.MaxConcurrent != 2 {
		t.Errorf("expected MaxConcurrent=2, got %d", cfg.Throttle.MaxConcurrent)
	}
	if cfg.Throttle.CallTimeoutMs != 30000 {
		t.Errorf("expected CallTimeoutMs=30000, got %d", cfg.Throttle.CallTimeoutMs)
	}
	if cfg.Limits.DefaultPageSize != 100 {
		t.Errorf("expected DefaultPageSize=100, got %d", cfg.Limits.DefaultPageSize)
	}
	if cfg.Limits.MaxPageSize != 500 {
		t.Errorf("expected MaxPageSize=500, got %d", cfg.Limits.MaxPageSize)
	}
	if cfg.Limits.FuzzyCap != 20 {
		t.Errorf("expected FuzzyCap=20, got %d", cfg.Limits.FuzzyCap)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		MCP:      MCPConfig{Transport: "http", Listen: ":9999"},
		Throttle: ThrottleConfig{MinIntervalMs: 100, MaxConcurrent: 4, CallTimeoutMs: -1},
		Limits:   LimitsConfig{DefaultPageSize: 50, MaxPageSize: 200, FuzzyCap: 10},
	}
	cfg.ApplyDefaults()

	if cfg.MCP.Transport != "http" {
		t.Errorf("expected Transport=http, got %q", cfg.MCP.Transport)
	}
	if cfg.Throttle.MinIntervalMs != 100 {
		t.Errorf("expected MinIntervalMs=100, got %d", cfg.Throttle.MinIntervalMs)
	}
	// -1 disables the per-call deadline and must survive defaulting.
	if cfg.Throttle.CallTimeoutMs != -1 {
		t.Errorf("expected CallTimeoutMs=-1, got %d", cfg.Throttle.CallTimeoutMs)
	}
	if cfg.Limits.MaxPageSize != 200 {
		t.Errorf("expected MaxPageSize=200, got %d", cfg.Limits.MaxPageSize)
	}
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error for valid config: %v", err)
	}
}

func TestValidate_MissingAPIToken(t *testing.T) {
	cfg := validConfig()
	cfg.Pipedrive.APIToken = ""

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing api token")
	}
}

func TestValidate_InvalidTransport(t *testing.T) {
	cfg := validConfig()
	cfg.MCP.Transport = "websocket"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid mcp transport")
	}
}

func TestValidate_InvalidBudgetAction(t *testing.T) {
	cfg := validConfig()
	cfg.Pipedrive.Budget.Action = "explode"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid budget action")
	}

	expected := `pipedrive.budget.action must be "warn" or "reject", got "explode"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidBudgetActions(t *testing.T) {
	for _, action := range []string{"", "warn", "reject"} {
		t.Run("action="+action, func(t *testing.T) {
			cfg := validConfig()
			cfg.Pipedrive.Budget.Action = action

			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid action %q: %v", action, err)
			}
		})
	}
}

func TestValidate_MaxPageBelowDefault(t *testing.T) {
	cfg := validConfig()
	cfg.Limits.DefaultPageSize = 200
	cfg.Limits.MaxPageSize = 100

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when max page size is below default")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("PIPEDEX_TEST_TOKEN", "secret")

	in := []byte("api_token: ${PIPEDEX_TEST_TOKEN}\nbase_url: ${PIPEDEX_TEST_URL:-https://fallback}\n")
	out := string(expandEnvVars(in))

	if out != "api_token: secret\nbase_url: https://fallback\n" {
		t.Errorf("unexpected expansion:\n%s", out)
	}
}
