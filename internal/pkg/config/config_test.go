package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/kulturapass/kulturapass/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("kulturapass-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Routing.DefaultProfile != "foot" {
		t.Errorf("expected foot profile, got %s", cfg.Routing.DefaultProfile)
	}
	if cfg.Routing.Timeout() != 5*time.Second {
		t.Errorf("expected 5s routing timeout, got %s", cfg.Routing.Timeout())
	}
	if cfg.Telemetry.ServiceName != "kulturapass-test" {
		t.Errorf("expected service name from argument, got %s", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("KULTURAPASS_SERVER_PORT", "9090")
	t.Setenv("KULTURAPASS_ROUTING_BASE_URL", "https://osrm.example.org")
	t.Setenv("KULTURAPASS_ROUTING_DEFAULT_PROFILE", "bike")

	cfg, err := config.Load("kulturapass-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Routing.BaseURL != "https://osrm.example.org" {
		t.Errorf("unexpected base url %s", cfg.Routing.BaseURL)
	}
	if cfg.Routing.DefaultProfile != "bike" {
		t.Errorf("expected bike, got %s", cfg.Routing.DefaultProfile)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := &config.Config{
		Server:  config.ServerConfig{Port: 0, ReadTimeout: 10, WriteTimeout: 10},
		Routing: config.RoutingConfig{BaseURL: "osrm:5000", TimeoutSeconds: 5, DefaultProfile: "boat"},
		NATS:    config.NATSConfig{URL: "nats://localhost:4222"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"server.port", "routing.base_url", "routing.default_profile", "valkey.addr"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in error, got: %v", want, err)
		}
	}
}

func TestValidate_EmptyBaseURLAllowed(t *testing.T) {
	cfg := &config.Config{
		Server:  config.ServerConfig{Port: 8080, ReadTimeout: 10, WriteTimeout: 10},
		Routing: config.RoutingConfig{TimeoutSeconds: 5, DefaultProfile: "foot"},
		NATS:    config.NATSConfig{URL: "nats://localhost:4222"},
		Valkey:  config.ValkeyConfig{Addr: "localhost:6379"},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
