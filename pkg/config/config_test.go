package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/svglayers/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestDecode(t *testing.T) {
	data := []byte(`
[ungroup]
max_depth = 3
bake_viewbox = false

[steps]
regroup = false

[remove]
kinds = ["rect", "circle"]

[cache]
backend = "redis"
ttl = "90m"
`)
	got, err := Decode(data, Default())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := Default()
	want.Ungroup.MaxDepth = 3
	want.Ungroup.BakeViewBox = false
	want.Steps.Regroup = false
	want.Remove.Kinds = []string{"rect", "circle"}
	want.Cache.Backend = BackendRedis
	want.Cache.TTL = Duration{90 * time.Minute}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", "[ungroup\nmax_depth = 3"},
		{"unknown key", "[ungroup]\nmax_dept = 3"},
		{"bad duration", "[cache]\nttl = \"soon\""},
		{"wrong type", "[ungroup]\nmax_depth = \"deep\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), Default())
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Decode(%q) error = %v, want INVALID_CONFIG", tt.data, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative keep", func(c *Config) { c.Ungroup.KeepDepth = -1 }, true},
		{"start after max", func(c *Config) { c.Ungroup.StartDepth = 4; c.Ungroup.MaxDepth = 3 }, true},
		{"empty kind", func(c *Config) { c.Remove.Kinds = []string{""} }, true},
		{"no kinds", func(c *Config) { c.Remove.Kinds = nil }, false},
		{"bad prefix", func(c *Config) { c.Regroup.Prefix = "a b" }, true},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "memcached" }, true},
		{"none backend", func(c *Config) { c.Cache.Backend = BackendNone }, false},
		{"negative ttl", func(c *Config) { c.Cache.TTL = Duration{-time.Second} }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() code = %s, want INVALID_CONFIG", errors.GetCode(err))
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	// Missing default file falls back to defaults.
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load default: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}

	path := filepath.Join(dir, AppName, "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[regroup]\nprefix = \"Layer\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Regroup.Prefix != "Layer" {
		t.Errorf("Prefix = %q, want Layer", cfg.Regroup.Prefix)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	data, err := Encode(Default())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data, Config{})
	if err != nil {
		t.Fatalf("Decode: %v\n%s", err, data)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg")

	dir, err := Default().CacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", AppName) {
		t.Errorf("CacheDir() = %q", dir)
	}

	cfg := Default()
	cfg.Cache.Dir = "/srv/cache"
	if dir, _ := cfg.CacheDir(); dir != "/srv/cache" {
		t.Errorf("CacheDir() = %q, want /srv/cache", dir)
	}
}
