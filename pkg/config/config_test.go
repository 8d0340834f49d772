package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.App.Name != "onboarding-console" {
		t.Errorf("expected default app name 'onboarding-console', got %q", cfg.App.Name)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if !cfg.Dispatch.FailFast {
		t.Error("expected fail-fast dispatch by default")
	}
	if cfg.Dispatch.RequestTimeout != 30*time.Second {
		t.Errorf("expected 30s request timeout, got %s", cfg.Dispatch.RequestTimeout)
	}
	if cfg.Client.ReuseTokens {
		t.Error("expected token reuse disabled by default")
	}

	// DEV is selectable but excluded from the default metadata pass.
	want := []Environment{EnvStg, EnvUat, EnvIndiaProd, EnvCanadaProd}
	if len(cfg.Metadata.Environments) != len(want) {
		t.Fatalf("expected %d metadata environments, got %d", len(want), len(cfg.Metadata.Environments))
	}
	for i, env := range want {
		if cfg.Metadata.Environments[i] != env {
			t.Errorf("metadata environment %d: expected %s, got %s", i, env, cfg.Metadata.Environments[i])
		}
	}

	// No environment is configured without base URLs.
	for _, env := range AllEnvironments {
		if _, ok := cfg.EnvironmentFor(env); ok {
			t.Errorf("expected %s to be unconfigured by default", env)
		}
	}
}

func TestLoad_EnvironmentURLs(t *testing.T) {
	t.Setenv("STG_AUTH_BASE_URL", "https://auth.stg.example.com/")
	t.Setenv("STG_META_BASE_URL", "https://meta.stg.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	envCfg, ok := cfg.EnvironmentFor(EnvStg)
	if !ok {
		t.Fatal("expected STG to be configured")
	}
	// Trailing slashes are trimmed so URL joining stays predictable.
	if envCfg.AuthBaseURL != "https://auth.stg.example.com" {
		t.Errorf("unexpected auth base URL: %q", envCfg.AuthBaseURL)
	}
	if envCfg.MetaBaseURL != "https://meta.stg.example.com" {
		t.Errorf("unexpected meta base URL: %q", envCfg.MetaBaseURL)
	}

	// Only one URL set still means unconfigured.
	t.Setenv("UAT_AUTH_BASE_URL", "https://auth.uat.example.com")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	if _, ok := cfg.EnvironmentFor(EnvUat); ok {
		t.Error("expected UAT with only an auth URL to be unconfigured")
	}
}

func TestLoad_InvalidMetadataEnvironment(t *testing.T) {
	t.Setenv("METADATA_ENVIRONMENTS", "STG,NOT_AN_ENV")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown metadata environment")
	}
}

func TestParseEnvironment(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Environment
		wantErr bool
	}{
		{name: "exact", input: "STG", want: EnvStg},
		{name: "lowercase", input: "india_prod", want: EnvIndiaProd},
		{name: "whitespace", input: " UAT ", want: EnvUat},
		{name: "unknown", input: "QA", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEnvironment(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			App:    AppConfig{Name: "onboarding-console"},
			Server: ServerConfig{Port: 8080},
			Metadata: MetadataConfig{
				Environments: []Environment{EnvStg},
			},
			Dispatch: DispatchConfig{FailFast: true, RequestTimeout: time.Second},
		}
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	cfg := base()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for invalid port")
	}

	cfg = base()
	cfg.Metadata.Environments = nil
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for empty metadata environments")
	}

	cfg = base()
	cfg.Metadata.Environments = []Environment{EnvStg, EnvStg}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for duplicate metadata environments")
	}

	cfg = base()
	cfg.Dispatch.RequestTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero request timeout")
	}
}
