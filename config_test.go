package tikrelay

import (
	"reflect"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Errorf("expected 15s timeout, got %v", cfg.RequestTimeout)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"*"}) {
		t.Errorf("expected wildcard origins, got %v", cfg.AllowedOrigins)
	}
	if !reflect.DeepEqual(cfg.Endpoints, DefaultEndpoints) {
		t.Errorf("expected default endpoints, got %v", cfg.Endpoints)
	}
	if cfg.AltEndpoint != DefaultAltEndpoint {
		t.Errorf("expected default alt endpoint, got %q", cfg.AltEndpoint)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("PROXY_URL", "socks5://localhost:1080")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("BRAND_NAME", "TikSave")
	t.Setenv("REQUEST_TIMEOUT", "30s")
	t.Setenv("API_ENDPOINTS", "https://one.example/api/,https://two.example/api/")
	t.Setenv("ALT_API_ENDPOINT", "https://alt.example/details")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Port != "9999" {
		t.Errorf("expected port override, got %q", cfg.Port)
	}
	if cfg.ProxyURL != "socks5://localhost:1080" {
		t.Errorf("expected proxy override, got %q", cfg.ProxyURL)
	}
	if !reflect.DeepEqual(cfg.AllowedOrigins, []string{"https://a.example", "https://b.example"}) {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
	if cfg.Brand != "TikSave" {
		t.Errorf("expected brand override, got %q", cfg.Brand)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.RequestTimeout)
	}
	if !reflect.DeepEqual(cfg.Endpoints, []string{"https://one.example/api/", "https://two.example/api/"}) {
		t.Errorf("unexpected endpoints %v", cfg.Endpoints)
	}
	if cfg.AltEndpoint != "https://alt.example/details" {
		t.Errorf("unexpected alt endpoint %q", cfg.AltEndpoint)
	}
}

func TestLoadConfig_BadTimeout(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "soon")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unparseable timeout")
	}
}

func TestSplitList(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a,b,c", []string{"a", "b", "c"}},
		{" a , b ", []string{"a", "b"}},
		{",,a,,", []string{"a"}},
	}
	for _, tt := range tests {
		if got := splitList(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitList(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
