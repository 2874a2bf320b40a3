package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" || cfg.Server.UpstreamTimeout != 15*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.API.GraphQLPath != "/query" || cfg.Server.TokenCookie != "token" {
		t.Errorf("api = %+v", cfg.API)
	}
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
api:
  url: https://api.example.com
  timeout: 5s
server:
  addr: ":9090"
  rate_burst: 3
storage:
  project_url: https://xyz.supabase.co
  bucket: assets
log:
  format: json
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STORECMS_GRAPHQL_PATH", "/graphql")
	t.Setenv("STORECMS_STORAGE_ACCESS_KEY_ID", "key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	tests := []struct {
		name string
		got  any
		want any
	}{
		{"api url", cfg.API.URL, "https://api.example.com"},
		{"api timeout", cfg.API.Timeout, 5 * time.Second},
		{"graphql path from env", cfg.API.GraphQLPath, "/graphql"},
		{"addr", cfg.Server.Addr, ":9090"},
		{"burst", cfg.Server.RateBurst, 3},
		{"rate keeps default", cfg.Server.RateLimit, 20.0},
		{"bucket", cfg.Storage.Bucket, "assets"},
		{"region keeps default", cfg.Storage.Region, "us-east-1"},
		{"access key from env", cfg.Storage.AccessKeyID, "key"},
		{"log format", cfg.Log.Format, "json"},
		{"log level keeps default", cfg.Log.Level, "info"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	client := cfg.API.Client()
	if client.BaseURL != "https://api.example.com" || client.GraphQLPath != "/graphql" || client.Timeout != 5*time.Second {
		t.Errorf("client config = %+v", client)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("api: [unclosed"), 0o600)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}

	t.Setenv("STORECMS_RATE_LIMIT", "fast")
	if _, err := Load(""); err == nil {
		t.Error("expected env parse error")
	}
}
