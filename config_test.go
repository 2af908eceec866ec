package habitauth

import (
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("HABITCHAIN_AUTH_URL", "https://auth.example.com")
	t.Setenv("HABITCHAIN_AUTH_KEY", "anon-key")
	t.Setenv("HABITCHAIN_HOSTNAME", "habit-chain-tracker.app")
	t.Setenv("HABITCHAIN_PRODUCTION", "true")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.ServiceURL != "https://auth.example.com" {
		t.Errorf("ServiceURL = %v", cfg.ServiceURL)
	}
	if cfg.ServiceKey != "anon-key" {
		t.Errorf("ServiceKey = %v", cfg.ServiceKey)
	}
	if !cfg.Production {
		t.Error("Production = false, want true")
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s default", cfg.RequestTimeout)
	}

	env := cfg.Environment()
	if env.Hostname != "habit-chain-tracker.app" || !env.Production {
		t.Errorf("Environment() = %+v", env)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Hostname != "localhost" {
		t.Errorf("Hostname = %v, want localhost default", cfg.Hostname)
	}
	if cfg.Production {
		t.Error("Production = true, want false default")
	}
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %v, want :8080 default", cfg.ListenAddr)
	}
}
